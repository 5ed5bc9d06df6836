package tasks

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

// id3Frame builds an ID3v2.3 text frame. Sizes stay below 128 so plain and syncsafe encodings agree.
func id3Frame(id, text string) []byte {
	data := append([]byte{0x00}, []byte(text)...)
	size := len(data)

	frame := []byte(id)
	frame = append(frame, byte(size>>24), byte(size>>16), byte(size>>8), byte(size))
	frame = append(frame, 0x00, 0x00)
	return append(frame, data...)
}

func mp3(title, artist string, audio []byte) []byte {
	frames := append(id3Frame("TIT2", title), id3Frame("TPE1", artist)...)
	size := len(frames)

	var buf bytes.Buffer
	buf.Write([]byte{'I', 'D', '3', 0x03, 0x00, 0x00})
	buf.Write([]byte{byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)})
	buf.Write(frames)
	buf.Write(audio)
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	first := bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 64)
	second := bytes.Repeat([]byte{0xFF, 0xFB, 0x50, 0x01}, 64)

	writeFile(t, filepath.Join(dir, "song1.mp3"), mp3("Alpha", "Ann", first))
	writeFile(t, filepath.Join(dir, "song2.mp3"), mp3("Beta", "Bob", second))
	writeFile(t, filepath.Join(dir, "sub", "retagged.mp3"), mp3("Other", "Someone", first))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not audio"))
	writeFile(t, filepath.Join(dir, "cover.jpg"), []byte("cover"))
	writeFile(t, filepath.Join(dir, ".hidden", "song3.mp3"), mp3("Hidden", "Nobody", second))

	progress := make(chan ProgressUpdate, 100)
	result, err := ScanDirectory(context.Background(), dir, ScanOpts{NumWorkers: 2}, progress)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(result.Descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d: %+v", len(result.Descriptors), result.Descriptors)
	}

	a, b := result.Descriptors[0], result.Descriptors[1]
	if a.Title == nil || *a.Title != "Alpha" || a.Artist == nil || *a.Artist != "Ann" {
		t.Errorf("unexpected first descriptor %+v", a)
	}
	if b.Title == nil || *b.Title != "Beta" {
		t.Errorf("unexpected second descriptor %+v", b)
	}
	if a.SongHash == "" || a.SongHash == b.SongHash {
		t.Errorf("expected distinct non-empty hashes, got %q and %q", a.SongHash, b.SongHash)
	}
	if a.Cover == nil || *a.Cover != filepath.Join(dir, "cover.jpg") {
		t.Errorf("expected sibling cover, got %v", a.Cover)
	}

	if len(result.Skipped) != 1 || result.Skipped[0].Path != filepath.Join(dir, "sub", "retagged.mp3") {
		t.Errorf("expected retagged copy to be skipped as duplicate, got %+v", result.Skipped)
	}

	if len(progress) == 0 {
		t.Error("expected progress updates")
	}
}

func TestAudioSum(t *testing.T) {
	dir := t.TempDir()
	audio := bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 64)
	raw := sha1.Sum(audio)
	want := hex.EncodeToString(raw[:])

	id3v1 := append([]byte("TAG"), make([]byte, 125)...)

	tests := []struct {
		name string
		data []byte
	}{
		{"untagged", audio},
		{"id3v2", mp3("Alpha", "Ann", audio)},
		{"retagged", mp3("Other", "Someone", audio)},
		{"id3v1", append(append([]byte{}, audio...), id3v1...)},
		{"both", append(mp3("Alpha", "Ann", audio), id3v1...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".mp3")
			writeFile(t, path, tt.data)

			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("failed to open: %v", err)
			}
			defer f.Close()

			got, err := audioSum(f)
			if err != nil {
				t.Fatalf("audioSum failed: %v", err)
			}
			if got != want {
				t.Errorf("audioSum() = %s, want %s", got, want)
			}
		})
	}

	t.Run("different audio", func(t *testing.T) {
		path := filepath.Join(dir, "other.mp3")
		writeFile(t, path, mp3("Alpha", "Ann", bytes.Repeat([]byte{0xFF, 0xFB, 0x50, 0x01}, 64)))

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		defer f.Close()

		if got, _ := audioSum(f); got == want {
			t.Error("expected a different hash for different audio")
		}
	})
}

func TestScanDirectoryErrors(t *testing.T) {
	t.Run("MissingDir", func(t *testing.T) {
		if _, err := ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), ScanOpts{}, nil); err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.mp3"), mp3("A", "B", []byte{0xFF, 0xFB, 0x00, 0x00}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := ScanDirectory(ctx, dir, ScanOpts{}, nil); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
