package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
	tu "github.com/desertthunder/songbook/internal/testing"
)

type mockClient struct {
	songs     []*models.Song
	batches   [][]models.SongDescriptor
	healthErr error
	lists     map[string][]string
}

func (m *mockClient) FetchSongs(ctx context.Context) ([]*models.Song, error) {
	return m.songs, nil
}

func (m *mockClient) PostBatch(ctx context.Context, descriptors []models.SongDescriptor) (*services.BatchResponse, error) {
	m.batches = append(m.batches, descriptors)
	songs := make([]*models.Song, len(descriptors))
	for i, d := range descriptors {
		songs[i] = models.NewSong(i+1, d.SongHash)
	}
	return &services.BatchResponse{StatusCode: http.StatusCreated, Songs: songs}, nil
}

func (m *mockClient) Health(ctx context.Context) error { return m.healthErr }

func (m *mockClient) FetchLists(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.lists))
	for name := range m.lists {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *mockClient) FetchList(ctx context.Context, name string) ([]string, error) {
	hashes, ok := m.lists[name]
	if !ok {
		return nil, shared.ErrListNotFound
	}
	return hashes, nil
}

// run executes args against a fresh command tree built from runner.
func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:     "songbook",
		Writer:   &bytes.Buffer{},
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"songbook"}, args...))
}

// writeConfig writes a config file pointing the database into a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[database]\npath = \"" + filepath.ToSlash(filepath.Join(dir, "test.db")) + "\"\n" +
		"[server]\ncovers_dir = \"" + filepath.ToSlash(filepath.Join(dir, "covers")) + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			client := &mockClient{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Client:     client,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"serve", "setup", "token", "ingest", "songs", "browse"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("songService", func(t *testing.T) {
		t.Run("missing server URL", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Client.ServerURL = ""
			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})

			err := run(t, runner, "songs", "health")
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("talks to the configured server", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{"status":"ok"}`))
			}))
			defer srv.Close()

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := run(t, runner, "songs", "health", "--server", srv.URL); err != nil {
				t.Fatalf("health failed: %v", err)
			}
			if output.String() != "ok\n" {
				t.Errorf("expected ok, got %q", output.String())
			}
		})
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("missing explicit file", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Client: &mockClient{}})
			err := run(t, runner, "songs", "list", "--config", filepath.Join(t.TempDir(), "nope.toml"))
			if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
				t.Errorf("expected read error, got %v", err)
			}
		})
	})
}

func TestSetupAndTokens(t *testing.T) {
	t.Run("setup database creates config and schema", func(t *testing.T) {
		dir := t.TempDir()
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		defer tu.MustChdir(t, wd)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := run(t, runner, "setup", "database", "--config", "config.toml"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(dir, "songbook.db"))
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("setup status and rollback", func(t *testing.T) {
		configPath := writeConfig(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := run(t, runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if !strings.Contains(output.String(), "applied 0000_create_songs") {
			t.Errorf("expected applied migrations to be listed, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "setup", "rollback", "--config", configPath, "--to", "0"); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if strings.Contains(output.String(), "0000_create_songs") || !strings.Contains(output.String(), "reverted 0001_create_api_keys") {
			t.Errorf("unexpected rollback output %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "setup", "status", "--config", configPath); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if !strings.Contains(lines[0], "applied") {
			t.Errorf("expected the first migration to stay applied, got %q", lines[0])
		}
		for _, line := range lines[1:] {
			if !strings.HasSuffix(line, "pending") {
				t.Errorf("expected %q to be pending", line)
			}
		}
	})

	t.Run("token lifecycle", func(t *testing.T) {
		configPath := writeConfig(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := run(t, runner, "token", "create", "--config", configPath, "importer"); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !strings.Contains(output.String(), "Token for importer") {
			t.Errorf("unexpected create output %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "token", "list", "--config", configPath); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 2 || !strings.Contains(lines[1], "importer") {
			t.Fatalf("expected header and one token, got %q", output.String())
		}
		id := strings.Fields(lines[1])[0]

		output.Reset()
		if err := run(t, runner, "token", "revoke", "--config", configPath, id); err != nil {
			t.Fatalf("revoke failed: %v", err)
		}

		output.Reset()
		run(t, runner, "token", "list", "--config", configPath)
		if !strings.Contains(output.String(), "No tokens issued") {
			t.Errorf("expected empty list, got %q", output.String())
		}

		err := run(t, runner, "token", "revoke", "--config", configPath, id)
		if !errors.Is(err, shared.ErrAPIKeyNotFound) {
			t.Errorf("expected ErrAPIKeyNotFound, got %v", err)
		}
	})

	t.Run("token create requires a name", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		err := run(t, runner, "token", "create", "--config", writeConfig(t))
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestIngest(t *testing.T) {
	descriptorFile := func(t *testing.T) string {
		path := filepath.Join(t.TempDir(), "songs.json")
		data := `{"songs":[{"song_hash":"h1","title":"One","artist":"A"},{"song_hash":"h2","title":"Two","artist":"B"}]}`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("submits descriptors", func(t *testing.T) {
		client := &mockClient{}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Client: client})

		if err := run(t, runner, "ingest", "--batch-size", "1", "--rate", "1000", descriptorFile(t)); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}

		if len(client.batches) != 2 {
			t.Errorf("expected 2 batches, got %d", len(client.batches))
		}
		if !strings.Contains(output.String(), "Stored:      2") {
			t.Errorf("unexpected summary %q", output.String())
		}
	})

	t.Run("dry run prints descriptors", func(t *testing.T) {
		client := &mockClient{}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Client: client})

		if err := run(t, runner, "ingest", "--dry-run", descriptorFile(t)); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}

		var got []map[string]any
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("expected JSON output: %v\n%s", err, output.String())
		}
		if len(got) != 2 || got[0]["song_hash"] != "h1" {
			t.Errorf("unexpected descriptors %v", got)
		}
		if len(client.batches) != 0 {
			t.Error("dry run should not submit")
		}
	})

	t.Run("requires a source", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Client: &mockClient{}})
		if err := run(t, runner, "ingest"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(t, runner, "ingest", "--dir", t.TempDir(), "songs.json"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSongsList(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client := &mockClient{songs: []*models.Song{tu.NewSong("s1", "Yesterday", "The Beatles", created)}}

	t.Run("csv to stdout", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Client: client})

		if err := run(t, runner, "songs", "list", "--format", "csv"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "s1,hash-s1,Yesterday,The Beatles") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.md")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Client: client})

		if err := run(t, runner, "songs", "list", "-f", "md", "-o", path); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, path), "1. The Beatles - Yesterday") {
			t.Errorf("unexpected file contents")
		}
	})

	t.Run("custom lists", func(t *testing.T) {
		lists := &mockClient{lists: map[string][]string{"bob": {"h9"}, "alice": {"h1", "h2"}}}

		output := &bytes.Buffer{}
		if err := run(t, NewRunner(RunnerOpts{Output: output, Client: lists}), "songs", "lists"); err != nil {
			t.Fatalf("lists failed: %v", err)
		}
		if output.String() != "alice\nbob\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := run(t, NewRunner(RunnerOpts{Output: output, Client: lists}), "songs", "lists", "--json", "alice"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		var hashes []string
		if err := json.Unmarshal(output.Bytes(), &hashes); err != nil || !slices.Equal(hashes, []string{"h1", "h2"}) {
			t.Errorf("unexpected output %q", output.String())
		}

		err := run(t, NewRunner(RunnerOpts{Output: output, Client: lists}), "songs", "lists", "ghost")
		if !errors.Is(err, shared.ErrListNotFound) {
			t.Errorf("expected ErrListNotFound, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Client: client})
		if err := run(t, runner, "songs", "list", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestBuildServer(t *testing.T) {
	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	config.Cache.Driver = "memory"
	config.Server.CoversDir = filepath.Join(t.TempDir(), "covers")

	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
	app, err := runner.buildServer(config)
	if err != nil {
		t.Fatalf("buildServer failed: %v", err)
	}
	defer app.Close()

	tu.AssertDirExists(t, config.Server.CoversDir)

	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/songs.json", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty list, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"songs":[{"song_hash":"abc"}]}`)
	app.server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/songs/batch.json", body))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/custom/lists.json", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected no custom lists, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	app.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("login should be off without a client id, got %d", rec.Code)
	}

	t.Run("unknown cache driver", func(t *testing.T) {
		bad := shared.DefaultConfig()
		bad.Database.Path = ":memory:"
		bad.Cache.Driver = "memcached"
		if _, err := runner.buildServer(bad); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
