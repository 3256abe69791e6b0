package retriever

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/retrieverlabs/goretriever/pkg/cache"
	"github.com/retrieverlabs/goretriever/pkg/engine"
	"github.com/retrieverlabs/goretriever/pkg/runner"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// fakeRunner records invocations instead of spawning the retriever
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	result *runner.Result
	err    error
	onRun  func(args []string, opts runner.RunOptions)
}

func (f *fakeRunner) Run(ctx context.Context, args []string, opts runner.RunOptions) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun(args, opts)
	}
	if f.err != nil {
		return &runner.Result{}, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &runner.Result{}, nil
}

func (f *fakeRunner) Binary() string {
	return "/usr/local/bin/retriever"
}

func (f *fakeRunner) lastCall(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func TestInstall(t *testing.T) {
	t.Run("builds_engine_argv", func(t *testing.T) {
		fake := &fakeRunner{}
		client := NewWithRunner(fake)

		conn := engine.Connection{Host: "localhost", User: "root", Password: "pw"}
		err := client.Install(context.Background(), "portal", engine.MySQL, conn, InstallOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{
			"install", "mysql", "portal",
			"--user", "root",
			"--host", "localhost",
			"--port", "3306",
			"--password", "pw",
			"--table_name", "{db}_{table}",
		}, fake.lastCall(t))
	})

	t.Run("global_flags_appended", func(t *testing.T) {
		fake := &fakeRunner{}
		client := NewWithRunner(fake)

		err := client.Install(context.Background(), "iris", engine.CSV, engine.Connection{}, InstallOptions{Debug: true, NotCached: true})
		require.NoError(t, err)

		call := fake.lastCall(t)
		assert.Contains(t, call, "--debug")
		assert.Contains(t, call, "--not-cached")
	})

	t.Run("subprocess_failure_propagates", func(t *testing.T) {
		fake := &fakeRunner{err: errors.New("exit status 1")}
		client := NewWithRunner(fake)

		err := client.Install(context.Background(), "iris", engine.CSV, engine.Connection{}, InstallOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "installing iris")
	})

	t.Run("invalid_connection_never_spawns", func(t *testing.T) {
		fake := &fakeRunner{}
		client := NewWithRunner(fake)

		err := client.Install(context.Background(), "iris", engine.Postgres, engine.Connection{}, InstallOptions{})
		require.Error(t, err)
		assert.Empty(t, fake.calls)
	})
}

func TestInstallMany(t *testing.T) {
	t.Run("installs_each_dataset", func(t *testing.T) {
		fake := &fakeRunner{}
		client := NewWithRunner(fake)

		err := client.InstallMany(context.Background(), []string{"iris", "portal", "bird-size"}, engine.CSV, engine.Connection{}, InstallOptions{}, 2)
		require.NoError(t, err)
		assert.Len(t, fake.calls, 3)
	})

	t.Run("failure_surfaces", func(t *testing.T) {
		fake := &fakeRunner{err: errors.New("boom")}
		client := NewWithRunner(fake)

		err := client.InstallMany(context.Background(), []string{"iris", "portal"}, engine.CSV, engine.Connection{}, InstallOptions{}, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch install")
	})

	t.Run("parallelism_bounded", func(t *testing.T) {
		var mu sync.Mutex
		current, peak := 0, 0
		fake := &fakeRunner{
			onRun: func(args []string, opts runner.RunOptions) {
				mu.Lock()
				current++
				if current > peak {
					peak = current
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				current--
				mu.Unlock()
			},
		}
		client := NewWithRunner(fake)

		datasets := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
		err := client.InstallMany(context.Background(), datasets, engine.CSV, engine.Connection{}, InstallOptions{}, 2)
		require.NoError(t, err)
		assert.Len(t, fake.calls, len(datasets))
		assert.LessOrEqual(t, peak, 2)
	})
}

func TestDownload(t *testing.T) {
	t.Run("reports_written_files", func(t *testing.T) {
		dir := t.TempDir()
		fake := &fakeRunner{
			onRun: func(args []string, opts runner.RunOptions) {
				// Simulate the retriever writing raw files into --path.
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "bird_size"), 0755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "bird_size", "bird_size.csv"), []byte("id\n"), 0644))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "bird_size", "citation.txt"), []byte("x"), 0644))
			},
		}
		client := NewWithRunner(fake)

		files, err := client.Download(context.Background(), "bird-size", DownloadOptions{Path: dir, SubDir: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"bird_size.csv", "citation.txt"}, files)

		assert.Equal(t, []string{"download", "bird-size", "--path", dir, "--sub_dir"}, fake.lastCall(t))
	})

	t.Run("preexisting_files_not_reported", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644))

		fake := &fakeRunner{
			onRun: func(args []string, opts runner.RunOptions) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "portal.csv"), []byte("id\n"), 0644))
			},
		}
		client := NewWithRunner(fake)

		files, err := client.Download(context.Background(), "portal", DownloadOptions{Path: dir})
		require.NoError(t, err)
		assert.Equal(t, []string{"portal.csv"}, files)
	})

	t.Run("nothing_downloaded_reports_nothing", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644))

		client := NewWithRunner(&fakeRunner{})
		files, err := client.Download(context.Background(), "portal", DownloadOptions{Path: dir})
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("target_dir_created_by_retriever", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "raw")
		fake := &fakeRunner{
			onRun: func(args []string, opts runner.RunOptions) {
				require.NoError(t, os.MkdirAll(dir, 0755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "portal.csv"), []byte("id\n"), 0644))
			},
		}
		client := NewWithRunner(fake)

		files, err := client.Download(context.Background(), "portal", DownloadOptions{Path: dir})
		require.NoError(t, err)
		assert.Equal(t, []string{"portal.csv"}, files)
	})

	t.Run("glob_filter", func(t *testing.T) {
		dir := t.TempDir()
		fake := &fakeRunner{
			onRun: func(args []string, opts runner.RunOptions) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("id\n"), 0644))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
			},
		}
		client := NewWithRunner(fake)

		files, err := client.Download(context.Background(), "portal", DownloadOptions{Path: dir, Globs: []string{"*.csv"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"data.csv"}, files)
	})
}

func TestFetch(t *testing.T) {
	t.Run("loads_produced_csvs", func(t *testing.T) {
		dir := t.TempDir()
		fake := &fakeRunner{
			onRun: func(args []string, opts runner.RunOptions) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "iris_main.csv"), []byte("species,petal\nsetosa,1.4\n"), 0644))
			},
		}
		client := NewWithRunner(fake)

		tables, err := client.Fetch(context.Background(), "iris", FetchOptions{DataDir: dir})
		require.NoError(t, err)
		require.Contains(t, tables, "main")
		assert.Equal(t, 1, tables["main"].NumRows())

		call := fake.lastCall(t)
		assert.Equal(t, "install", call[0])
		assert.Equal(t, "csv", call[1])
		assert.Contains(t, call, "--table_name")
	})

	t.Run("keep_data_logs_scratch_dir", func(t *testing.T) {
		var scratch string
		fake := &fakeRunner{
			onRun: func(args []string, opts runner.RunOptions) {
				// The scratch dir only shows up in the table_name argument.
				scratch = filepath.Dir(args[len(args)-1])
				require.NoError(t, os.WriteFile(filepath.Join(scratch, "iris_main.csv"), []byte("species\nsetosa\n"), 0644))
			},
		}
		client := NewWithRunner(fake)

		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		ctx := logger.WithContext(context.Background())

		_, err := client.Fetch(ctx, "iris", FetchOptions{KeepData: true})
		require.NoError(t, err)
		require.NotEmpty(t, scratch)
		t.Cleanup(func() { os.RemoveAll(scratch) })

		assert.DirExists(t, scratch)
		assert.Contains(t, buf.String(), "keeping fetched csv files")
		assert.Contains(t, buf.String(), scratch)
	})

	t.Run("install_failure_short_circuits", func(t *testing.T) {
		fake := &fakeRunner{err: errors.New("no such dataset")}
		client := NewWithRunner(fake)

		_, err := client.Fetch(context.Background(), "nope", FetchOptions{DataDir: t.TempDir()})
		require.Error(t, err)
	})
}

func TestDatasets(t *testing.T) {
	t.Run("parses_listing", func(t *testing.T) {
		fake := &fakeRunner{result: &runner.Result{Stdout: `Available datasets : 4

iris, portal
bird-size
mammal_masses
`}}
		client := NewWithRunner(fake)

		names, err := client.Datasets(context.Background(), DatasetOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"bird-size", "iris", "mammal_masses", "portal"}, names)
		assert.Equal(t, []string{"ls"}, fake.lastCall(t))
	})

	t.Run("filter_flags_pass_through", func(t *testing.T) {
		fake := &fakeRunner{result: &runner.Result{Stdout: "iris\n"}}
		client := NewWithRunner(fake)

		_, err := client.Datasets(context.Background(), DatasetOptions{Keywords: []string{"birds"}, Licenses: []string{"cc0"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"ls", "-k", "birds", "-l", "cc0"}, fake.lastCall(t))
	})
}

func TestUpdateScripts(t *testing.T) {
	fake := &fakeRunner{result: &runner.Result{Stdout: "Downloading script: portal.json\nDownloading script: iris.json\n"}}
	client := NewWithRunner(fake)

	report, err := client.UpdateScripts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"iris", "portal"}, report.Scripts)
	assert.Equal(t, []string{"update"}, fake.lastCall(t))
}

func TestCheckForUpdates(t *testing.T) {
	t.Run("issues_update", func(t *testing.T) {
		fake := &fakeRunner{}
		client := NewWithRunner(fake)

		require.NoError(t, client.CheckForUpdates(context.Background()))
		assert.Equal(t, []string{"update"}, fake.lastCall(t))
	})

	t.Run("failure_propagates", func(t *testing.T) {
		fake := &fakeRunner{err: errors.New("offline")}
		client := NewWithRunner(fake)

		err := client.CheckForUpdates(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checking for updates")
	})
}

func TestAvailable(t *testing.T) {
	t.Run("found_via_env_override", func(t *testing.T) {
		fakeBinary := filepath.Join(t.TempDir(), "retriever")
		require.NoError(t, os.WriteFile(fakeBinary, []byte("#!/bin/sh\n"), 0755))
		t.Setenv(runner.EnvPath, fakeBinary)

		assert.True(t, Available(context.Background()))
	})

	t.Run("missing_binary", func(t *testing.T) {
		t.Setenv(runner.EnvPath, filepath.Join(t.TempDir(), "does-not-exist"))

		assert.False(t, Available(context.Background()))
	})
}

func TestVersion(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		fake := &fakeRunner{result: &runner.Result{Stdout: "retriever v3.1.0\n"}}
		client := NewWithRunner(fake)

		v, err := client.Version(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "retriever v3.1.0", v)
	})

	t.Run("stderr_fallback", func(t *testing.T) {
		fake := &fakeRunner{result: &runner.Result{Stderr: "retriever v3.0.0\n"}}
		client := NewWithRunner(fake)

		v, err := client.Version(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "retriever v3.0.0", v)
	})
}

func TestReset(t *testing.T) {
	home := t.TempDir()
	t.Setenv(cache.EnvHome, home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "scripts"), 0755))

	fake := &fakeRunner{}
	client := NewWithRunner(fake)
	removed, err := client.Reset(context.Background(), cache.ScopeScripts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "scripts")}, removed)
	assert.Empty(t, fake.calls)
}

func TestParseDatasetList(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{
			name:   "banner_skipped",
			stdout: "Available datasets : 2\n\niris\nportal\n",
			want:   []string{"iris", "portal"},
		},
		{
			name:   "comma_separated",
			stdout: "iris, portal, bird-size\n",
			want:   []string{"bird-size", "iris", "portal"},
		},
		{
			name:   "mixed_case_rejected",
			stdout: "iris\nNotADataset!\n",
			want:   []string{"iris"},
		},
		{
			name:   "empty",
			stdout: "",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDatasetList(tt.stdout))
		})
	}
}
