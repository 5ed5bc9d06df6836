package tasks

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/h2non/filetype"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// sniffLen is the header size filetype needs to identify a format.
const sniffLen = 262

// coverNames are sibling files reported as a song's cover, in preference order.
var coverNames = []string{"cover.jpg", "cover.png", "folder.jpg", "folder.png", "front.jpg", "front.png"}

// ReadDescriptors reads a JSON file holding either an array of descriptors or a `{"songs": [...]}` object.
func ReadDescriptors(path string, progress chan<- ProgressUpdate) ([]models.SongDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	descriptors, err := ParseDescriptors(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sendProgress(progress, sourceReadUpdate(path, len(descriptors)))
	return descriptors, nil
}

// ParseDescriptors decodes descriptor JSON in either accepted shape.
func ParseDescriptors(data []byte) ([]models.SongDescriptor, error) {
	trimmed := bytes.TrimSpace(data)

	var descriptors []models.SongDescriptor
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &descriptors); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return descriptors, nil
	}

	var envelope struct {
		Songs []models.SongDescriptor `json:"songs"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if envelope.Songs == nil {
		return nil, fmt.Errorf("%w: expected an array or an object with \"songs\"", shared.ErrInvalidInput)
	}
	return envelope.Songs, nil
}

// ScanOpts configures a directory scan.
type ScanOpts struct {
	NumWorkers  int    // Concurrent file readers (default: 4)
	CoversDir   string // When set, embedded artwork is written here as <hash>.<ext>
	CoverPrefix string // URL prefix for extracted artwork (default: /images/songs/)
}

// ScanSkip is a file the scan could not turn into a descriptor.
type ScanSkip struct {
	Path   string
	Reason string
}

// ScanResult holds the descriptors found under a directory, in path order.
type ScanResult struct {
	Descriptors []models.SongDescriptor
	Skipped     []ScanSkip
}

type scanJob struct {
	index int
	path  string
}

type scanOutcome struct {
	index      int
	descriptor *models.SongDescriptor
	skip       *ScanSkip
}

// ScanDirectory walks dir and builds a descriptor for every audio file.
//
// The song hash is the digest of the audio payload with tags excluded, so retagging a
// file does not change its identity. Non-audio files are ignored silently; audio files
// that cannot be hashed are reported in [ScanResult.Skipped].
func ScanDirectory(ctx context.Context, dir string, opts ScanOpts, progress chan<- ProgressUpdate) (*ScanResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.CoverPrefix == "" {
		opts.CoverPrefix = "/images/songs/"
	}
	if opts.CoversDir != "" {
		if err := os.MkdirAll(opts.CoversDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create covers directory: %w", err)
		}
	}

	sendProgress(progress, scanStartedUpdate(dir))

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	jobs := make(chan scanJob, len(paths))
	outcomes := make(chan scanOutcome, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go scanWorker(ctx, &wg, jobs, outcomes, opts)
	}

	for i, p := range paths {
		jobs <- scanJob{index: i, path: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make([]scanOutcome, 0, len(paths))
	done := 0
	for o := range outcomes {
		done++
		if o.descriptor != nil {
			sendProgress(progress, scannedFileUpdate(done, paths[o.index]))
		}
		collected = append(collected, o)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	result := &ScanResult{}
	seen := map[string]bool{}
	for _, o := range collected {
		switch {
		case o.skip != nil:
			result.Skipped = append(result.Skipped, *o.skip)
		case o.descriptor != nil:
			if seen[o.descriptor.SongHash] {
				result.Skipped = append(result.Skipped, ScanSkip{Path: paths[o.index], Reason: "duplicate audio"})
				continue
			}
			seen[o.descriptor.SongHash] = true
			result.Descriptors = append(result.Descriptors, *o.descriptor)
		}
	}

	return result, nil
}

func scanWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan scanJob, outcomes chan<- scanOutcome, opts ScanOpts) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			outcomes <- scanOutcome{index: job.index}
			continue
		}

		d, err := describeFile(job.path, opts)
		switch {
		case err != nil:
			outcomes <- scanOutcome{index: job.index, skip: &ScanSkip{Path: job.path, Reason: err.Error()}}
		default:
			outcomes <- scanOutcome{index: job.index, descriptor: d}
		}
	}
}

// describeFile returns nil, nil for files that are not audio.
func describeFile(path string, opts ScanOpts) (*models.SongDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	if !filetype.IsAudio(head[:n]) {
		return nil, nil
	}

	hash, err := audioSum(f)
	if err != nil {
		return nil, fmt.Errorf("failed to hash audio: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d := &models.SongDescriptor{SongHash: hash, Title: models.Field(title)}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if m, err := tag.ReadFrom(f); err == nil {
		applyMetadata(d, m, opts)
	}

	if d.Cover == nil {
		if cover := siblingCover(filepath.Dir(path)); cover != "" {
			d.Cover = models.Field(cover)
		}
	}

	return d, nil
}

// audioSum returns the hex SHA-1 of the audio in f, excluding a leading ID3v2 tag and a trailing ID3v1 tag,
// so retagged copies of the same recording share a hash.
func audioSum(f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	start, end := int64(0), info.Size()

	header := make([]byte, 10)
	if n, _ := f.ReadAt(header, 0); n == len(header) && string(header[:3]) == "ID3" {
		size := int64(header[6]&0x7f)<<21 | int64(header[7]&0x7f)<<14 | int64(header[8]&0x7f)<<7 | int64(header[9]&0x7f)
		start = 10 + size
		if header[5]&0x10 != 0 {
			start += 10
		}
	}

	if end-start >= 128 {
		trailer := make([]byte, 3)
		if _, err := f.ReadAt(trailer, end-128); err == nil && string(trailer) == "TAG" {
			end -= 128
		}
	}
	if start > end {
		return "", fmt.Errorf("tag size %d exceeds file size %d", start, info.Size())
	}

	h := sha1.New()
	if _, err := io.Copy(h, io.NewSectionReader(f, start, end-start)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func applyMetadata(d *models.SongDescriptor, m tag.Metadata, opts ScanOpts) {
	if title := strings.TrimSpace(m.Title()); title != "" {
		d.Title = models.Field(title)
	}

	artist := strings.TrimSpace(m.Artist())
	if artist == "" {
		artist = strings.TrimSpace(m.AlbumArtist())
	}
	if artist != "" {
		d.Artist = models.Field(artist)
	}

	if genre := strings.TrimSpace(m.Genre()); genre != "" {
		d.Genre = models.Field(genre)
	}

	if opts.CoversDir == "" {
		return
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		ext := pic.Ext
		if ext == "" {
			ext = "jpg"
		}
		name := d.SongHash + "." + ext
		if err := os.WriteFile(filepath.Join(opts.CoversDir, name), pic.Data, 0644); err == nil {
			d.Cover = models.Field(opts.CoverPrefix + name)
		}
	}
}

func siblingCover(dir string) string {
	for _, name := range coverNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
