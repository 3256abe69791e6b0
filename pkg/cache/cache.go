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

package cache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// EnvHome overrides the retriever home directory when set
const EnvHome = "RETRIEVER_HOME"

// 🎯 Scope selects which cached state Reset removes
type Scope string

const (
	ScopeScripts     Scope = "scripts"     // downloaded dataset scripts
	ScopeData        Scope = "raw_data"    // raw downloaded data files
	ScopeConnections Scope = "connections" // saved connection profiles
	ScopeAll         Scope = "all"
)

// ParseScope resolves a user-supplied scope name
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "scripts":
		return ScopeScripts, nil
	case "data", "raw_data":
		return ScopeData, nil
	case "connections":
		return ScopeConnections, nil
	case "all":
		return ScopeAll, nil
	default:
		return "", errors.Errorf("unknown reset scope %q (expected scripts, data, connections or all)", name)
	}
}

// dirs returns the home subdirectories the scope covers
func (s Scope) dirs() []string {
	if s == ScopeAll {
		return []string{string(ScopeScripts), string(ScopeData), string(ScopeConnections)}
	}
	return []string{string(s)}
}

// 🏠 Home resolves the retriever home directory: RETRIEVER_HOME when set,
// otherwise ~/.retriever.
func Home() (string, error) {
	if override := os.Getenv(EnvHome); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".retriever"), nil
}

// 📊 DirInfo describes one cache subdirectory found under the home
type DirInfo struct {
	Name  string // Subdirectory name (scripts, raw_data, connections)
	Path  string // Absolute path
	Files int    // Regular files underneath, recursively
	Bytes int64  // Total size of those files
}

// 🔍 Scan inspects the retriever home and reports the cache directories that
// exist. A missing home is not an error, it just means nothing is cached.
func Scan(ctx context.Context) ([]DirInfo, error) {
	logger := zerolog.Ctx(ctx)

	home, err := Home()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(home); os.IsNotExist(err) {
		logger.Debug().Str("home", home).Msg("retriever home does not exist")
		return nil, nil
	} else if err != nil {
		return nil, errors.Errorf("inspecting retriever home: %w", err)
	}

	var infos []DirInfo
	for _, name := range ScopeAll.dirs() {
		path := filepath.Join(home, name)
		info, err := measure(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Errorf("measuring %s: %w", path, err)
		}
		info.Name = name
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// measure walks one cache directory and totals its files
func measure(path string) (DirInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return DirInfo{}, err
	}

	info := DirInfo{Path: path}
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		info.Files++
		info.Bytes += fi.Size()
		return nil
	})
	if err != nil {
		return DirInfo{}, err
	}
	return info, nil
}

// 🗑️ Reset deletes the cached state the scope covers and returns the paths
// it removed. Directories that are already absent are skipped silently.
func Reset(ctx context.Context, scope Scope) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	home, err := Home()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range scope.dirs() {
		path := filepath.Join(home, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		} else if err != nil {
			return removed, errors.Errorf("inspecting %s: %w", path, err)
		}

		if err := os.RemoveAll(path); err != nil {
			return removed, errors.Errorf("removing %s: %w", path, err)
		}
		logger.Info().Str("path", path).Msg("removed cache directory")
		removed = append(removed, path)
	}

	return removed, nil
}
