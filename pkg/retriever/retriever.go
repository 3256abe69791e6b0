// Copyright 2025 retrieverlabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retriever is the binding surface around the external retriever
// binary. Every method builds an argument list, spawns the binary through a
// Runner and post-processes whatever it left behind; none of the actual
// dataset logic lives here.
package retriever

import (
	"context"
	"os"
	"strings"

	"github.com/retrieverlabs/goretriever/pkg/cache"
	"github.com/retrieverlabs/goretriever/pkg/engine"
	"github.com/retrieverlabs/goretriever/pkg/runner"
	"github.com/retrieverlabs/goretriever/pkg/table"
	"github.com/retrieverlabs/goretriever/pkg/updatelog"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🎯 Client wraps one retriever executable
type Client struct {
	runner runner.Runner
}

// 🏭 New locates the retriever binary and returns a client for it
func New(ctx context.Context) (*Client, error) {
	r, err := runner.New(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{runner: r}, nil
}

// NewWithRunner returns a client over an explicit runner, for tests
func NewWithRunner(r runner.Runner) *Client {
	return &Client{runner: r}
}

// Binary returns the path of the wrapped executable
func (c *Client) Binary() string {
	return c.runner.Binary()
}

// Available reports whether a retriever binary can be found on this system
func Available(ctx context.Context) bool {
	_, err := runner.Locate(ctx)
	return err == nil
}

// 🔧 InstallOptions tunes an install run
type InstallOptions struct {
	LogFile   string // redirect combined subprocess output here
	Debug     bool   // pass --debug through to the retriever
	NotCached bool   // force a fresh download instead of cached raw data
}

func (o InstallOptions) globalArgs() []string {
	var args []string
	if o.Debug {
		args = append(args, "--debug")
	}
	if o.NotCached {
		args = append(args, "--not-cached")
	}
	return args
}

// 📦 Install loads a dataset into the given engine target
func (c *Client) Install(ctx context.Context, dataset string, eng engine.Engine, conn engine.Connection, opts InstallOptions) error {
	logger := zerolog.Ctx(ctx)

	args, err := eng.InstallArgs(dataset, conn)
	if err != nil {
		return errors.Errorf("building install arguments: %w", err)
	}
	args = append(args, opts.globalArgs()...)

	logger.Info().Str("dataset", dataset).Str("target", conn.DSN(eng)).Msg("installing dataset")

	if _, err := c.runner.Run(ctx, args, runner.RunOptions{LogFile: opts.LogFile}); err != nil {
		return errors.Errorf("installing %s: %w", dataset, err)
	}
	return nil
}

// 📦 InstallMany installs several datasets into the same target, at most
// parallelism at a time. The first failure cancels the remaining installs.
func (c *Client) InstallMany(ctx context.Context, datasets []string, eng engine.Engine, conn engine.Connection, opts InstallOptions, parallelism int) error {
	if parallelism < 1 {
		parallelism = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, dataset := range datasets {
		dataset := dataset
		g.Go(func() error {
			return c.Install(ctx, dataset, eng, conn, opts)
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Errorf("batch install: %w", err)
	}
	return nil
}

// 🔧 DownloadOptions tunes a raw-file download
type DownloadOptions struct {
	Path    string   // target directory, default "."
	SubDir  bool     // keep the retriever's subdirectory layout
	Globs   []string // optional doublestar patterns filtering the reported files
	LogFile string
}

// 📥 Download fetches a dataset's raw files into a directory and returns the
// dataset-relative names of what arrived, filtered by opts.Globs.
func (c *Client) Download(ctx context.Context, dataset string, opts DownloadOptions) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	if opts.Path == "" {
		opts.Path = "."
	}

	args := []string{"download", dataset, "--path", opts.Path}
	if opts.SubDir {
		args = append(args, "--sub_dir")
	}

	// The target directory may already hold unrelated files; only what
	// appears after the run counts as downloaded.
	before, err := snapshotFiles(opts.Path)
	if err != nil {
		return nil, errors.Errorf("inspecting target directory: %w", err)
	}

	logger.Info().Str("dataset", dataset).Str("path", opts.Path).Msg("downloading raw files")

	if _, err := c.runner.Run(ctx, args, runner.RunOptions{LogFile: opts.LogFile}); err != nil {
		return nil, errors.Errorf("downloading %s: %w", dataset, err)
	}

	after, err := listFiles(opts.Path)
	if err != nil {
		return nil, errors.Errorf("listing downloaded files: %w", err)
	}

	var written []string
	for _, path := range after {
		if _, existed := before[path]; !existed {
			written = append(written, path)
		}
	}

	names, err := updatelog.NormalizeDownloaded(written, dataset, opts.Globs)
	if err != nil {
		return nil, errors.Errorf("normalizing downloaded files: %w", err)
	}
	return names, nil
}

// 🔧 FetchOptions tunes an in-memory fetch
type FetchOptions struct {
	DataDir  string // reuse this directory instead of a fresh temp dir
	KeepData bool   // keep the produced CSVs on disk after loading
	LogFile  string
}

// 📊 Fetch installs a dataset to CSV in a scratch directory and loads the
// produced files into in-memory tables keyed by table name.
func (c *Client) Fetch(ctx context.Context, dataset string, opts FetchOptions) (map[string]*table.Table, error) {
	logger := zerolog.Ctx(ctx)

	dataDir := opts.DataDir
	if dataDir == "" {
		dir, err := os.MkdirTemp("", "goretriever-fetch-*")
		if err != nil {
			return nil, errors.Errorf("creating scratch directory: %w", err)
		}
		dataDir = dir
		if opts.KeepData {
			logger.Info().Str("data_dir", dataDir).Msg("keeping fetched csv files")
		} else {
			defer os.RemoveAll(dataDir)
		}
	}

	conn := engine.Connection{DataDir: dataDir}
	if err := c.Install(ctx, dataset, engine.CSV, conn, InstallOptions{LogFile: opts.LogFile}); err != nil {
		return nil, err
	}

	tables, err := table.LoadDir(ctx, dataDir, dataset)
	if err != nil {
		return nil, errors.Errorf("loading fetched tables: %w", err)
	}

	logger.Info().Str("dataset", dataset).Strs("tables", table.Keys(tables)).Msg("fetched dataset")
	return tables, nil
}

// 🔧 DatasetOptions filters the dataset listing
type DatasetOptions struct {
	Keywords []string // passed through as repeated -k flags
	Licenses []string // passed through as repeated -l flags
}

// 📋 Datasets lists the dataset scripts the retriever knows about
func (c *Client) Datasets(ctx context.Context, opts DatasetOptions) ([]string, error) {
	args := []string{"ls"}
	for _, k := range opts.Keywords {
		args = append(args, "-k", k)
	}
	for _, l := range opts.Licenses {
		args = append(args, "-l", l)
	}

	result, err := c.runner.Run(ctx, args, runner.RunOptions{})
	if err != nil {
		return nil, errors.Errorf("listing datasets: %w", err)
	}

	return parseDatasetList(result.Stdout), nil
}

// 🔄 UpdateScripts refreshes the retriever's dataset-script catalog and
// digests its log output into a report of what changed.
func (c *Client) UpdateScripts(ctx context.Context, logFile string) (*updatelog.Report, error) {
	result, err := c.runner.Run(ctx, []string{"update"}, runner.RunOptions{LogFile: logFile})
	if err != nil {
		return nil, errors.Errorf("updating dataset scripts: %w", err)
	}

	report, err := updatelog.Parse(strings.NewReader(result.Stdout + result.Stderr))
	if err != nil {
		return nil, errors.Errorf("parsing update log: %w", err)
	}
	return report, nil
}

// 🔄 CheckForUpdates refreshes the script catalog, discarding the log
func (c *Client) CheckForUpdates(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, []string{"update"}, runner.RunOptions{}); err != nil {
		return errors.Errorf("checking for updates: %w", err)
	}
	return nil
}

// 🗑️ Reset deletes cached retriever state for the scope and returns the
// removed paths. This acts on the home directory, not on the subprocess.
func (c *Client) Reset(ctx context.Context, scope cache.Scope) ([]string, error) {
	return cache.Reset(ctx, scope)
}

// 📝 Version reports the wrapped binary's version string
func (c *Client) Version(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, []string{"--version"}, runner.RunOptions{})
	if err != nil {
		return "", errors.Errorf("querying retriever version: %w", err)
	}
	version := strings.TrimSpace(result.Stdout)
	if version == "" {
		version = strings.TrimSpace(result.Stderr)
	}
	return version, nil
}
