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

package updatelog

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// downloadPrefixes are the line shapes the retriever prints while updating
// its script catalog. Everything else in the stream is progress noise.
var downloadPrefixes = []string{
	"Downloading script: ",
	"Updating script: ",
	"Downloading scripts: ",
}

// 📋 Report is the digested outcome of a `retriever update` run
type Report struct {
	Scripts []string // Sorted unique script names, extension stripped
	Raw     string   // The full untouched log, for --debug output
}

// 📝 Parse digests the raw update log into a Report
func Parse(r io.Reader) (*Report, error) {
	var raw strings.Builder
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		raw.WriteString(line)
		raw.WriteByte('\n')

		name, ok := scriptName(line)
		if !ok {
			continue
		}
		seen[name] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("scanning update log: %w", err)
	}

	scripts := make([]string, 0, len(seen))
	for name := range seen {
		scripts = append(scripts, name)
	}
	sort.Strings(scripts)

	return &Report{Scripts: scripts, Raw: raw.String()}, nil
}

// scriptName extracts the script name from one log line, if it carries one
func scriptName(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, prefix := range downloadPrefixes {
		rest, found := strings.CutPrefix(line, prefix)
		if !found {
			continue
		}
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return "", false
		}
		// Progress bars sometimes glue a percentage after the name.
		rest = strings.Fields(rest)[0]
		rest = strings.TrimSuffix(rest, ".json")
		rest = strings.TrimSuffix(rest, ".py")
		return rest, true
	}
	return "", false
}

// 📝 Summary renders a one-line human description of the update run
func (r *Report) Summary() string {
	switch len(r.Scripts) {
	case 0:
		return "all dataset scripts are up to date"
	case 1:
		return fmt.Sprintf("updated 1 dataset script: %s", r.Scripts[0])
	default:
		return fmt.Sprintf("updated %d dataset scripts: %s", len(r.Scripts), strings.Join(r.Scripts, ", "))
	}
}

// 📦 NormalizeDownloaded maps raw downloaded file paths to names relative to
// the dataset, filtered by optional doublestar glob patterns. With no
// patterns every file is kept.
func NormalizeDownloaded(paths []string, dataset string, patterns []string) ([]string, error) {
	prefix := strings.ReplaceAll(strings.TrimSpace(dataset), "-", "_")

	var out []string
	for _, p := range paths {
		name := filepath.ToSlash(p)
		if i := strings.Index(name, prefix+"/"); prefix != "" && i >= 0 {
			name = name[i+len(prefix)+1:]
		} else {
			name = filepath.Base(name)
		}

		keep := len(patterns) == 0
		for _, pattern := range patterns {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				return nil, errors.Errorf("invalid pattern %q: %w", pattern, err)
			}
			if ok {
				keep = true
				break
			}
		}
		if keep {
			out = append(out, name)
		}
	}

	sort.Strings(out)
	return out, nil
}
