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

package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// EnvPath overrides binary discovery when set
const EnvPath = "RETRIEVER_PATH"

// binaryName is the executable we wrap
const binaryName = "retriever"

// 🏃 Runner executes the retriever binary. The exec implementation spawns a
// blocking subprocess; tests substitute a recording fake.
type Runner interface {
	// Run invokes the binary with args and blocks until it exits
	Run(ctx context.Context, args []string, opts RunOptions) (*Result, error)

	// Binary returns the path of the executable this runner invokes
	Binary() string
}

// 🔧 RunOptions tunes a single invocation
type RunOptions struct {
	LogFile string   // When set, combined output is also appended here
	Dir     string   // Working directory, empty for inherited
	Env     []string // Extra environment entries appended to os.Environ()
}

// 📦 Result captures what the subprocess produced
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// 🔍 Locate finds the retriever executable. Order: RETRIEVER_PATH, the
// system PATH, then conventional per-OS install locations.
func Locate(ctx context.Context) (string, error) {
	logger := zerolog.Ctx(ctx)

	if override := os.Getenv(EnvPath); override != "" {
		info, err := os.Stat(override)
		if err != nil {
			return "", errors.Errorf("%s points to %q: %w", EnvPath, override, err)
		}
		if info.IsDir() {
			return "", errors.Errorf("%s points to a directory: %q", EnvPath, override)
		}
		logger.Debug().Str("path", override).Msg("using retriever from RETRIEVER_PATH")
		return override, nil
	}

	if path, err := exec.LookPath(binaryName); err == nil {
		logger.Debug().Str("path", path).Msg("found retriever on PATH")
		return path, nil
	}

	for _, candidate := range conventionalPaths() {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			logger.Debug().Str("path", candidate).Msg("found retriever in conventional location")
			return candidate, nil
		}
	}

	return "", errors.Errorf("retriever executable not found; install it or set %s", EnvPath)
}

// conventionalPaths lists per-OS locations the installer is known to use
func conventionalPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	if runtime.GOOS == "windows" {
		name := binaryName + ".exe"
		var paths []string
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			paths = append(paths, filepath.Join(local, "Programs", "retriever", name))
		}
		if programs := os.Getenv("ProgramFiles"); programs != "" {
			paths = append(paths, filepath.Join(programs, "retriever", name))
		}
		return paths
	}

	paths := []string{
		"/usr/local/bin/" + binaryName,
		"/opt/retriever/bin/" + binaryName,
	}
	if home != "" {
		paths = append([]string{filepath.Join(home, ".local", "bin", binaryName)}, paths...)
	}
	return paths
}

// 🔧 ExecRunner is the production Runner backed by os/exec
type ExecRunner struct {
	binary string
}

// 🏭 New locates the retriever binary and returns an ExecRunner for it
func New(ctx context.Context) (*ExecRunner, error) {
	binary, err := Locate(ctx)
	if err != nil {
		return nil, errors.Errorf("locating retriever: %w", err)
	}
	return &ExecRunner{binary: binary}, nil
}

// NewWithBinary returns an ExecRunner for an explicit executable path
func NewWithBinary(binary string) *ExecRunner {
	return &ExecRunner{binary: binary}
}

// Binary returns the path of the wrapped executable
func (r *ExecRunner) Binary() string {
	return r.binary
}

// Run spawns the retriever and blocks until it exits. Stdout and stderr are
// captured separately; when opts.LogFile is set the combined stream is also
// appended there. A non-zero exit propagates as an error carrying the stderr
// tail, there is no retry.
func (r *ExecRunner) Run(ctx context.Context, args []string, opts RunOptions) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("binary", r.binary).Strs("args", args).Msg("running retriever")

	cmd := exec.CommandContext(ctx, r.binary, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	var logFile *os.File
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, errors.Errorf("opening log file: %w", err)
		}
		logFile = f
		defer logFile.Close()
		cmd.Stdout = io.MultiWriter(&stdout, logFile)
		cmd.Stderr = io.MultiWriter(&stderr, logFile)
	}

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, errors.Errorf("retriever interrupted: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, errors.Errorf("retriever exited with status %d: %s", result.ExitCode, stderrTail(result.Stderr))
		}
		return result, errors.Errorf("running retriever: %w", err)
	}

	return result, nil
}

// stderrTail keeps error messages readable when the subprocess is chatty
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	const keep = 5
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return strings.Join(lines, "\n")
}
