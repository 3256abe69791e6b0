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

package conn

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔧 ConnFileParser implements the Parser interface for the legacy conn_file
// format: one "key value" pair per line, '#' starts a comment, blank lines
// are ignored. Duplicate keys keep the last value.
type ConnFileParser struct{}

func init() {
	Register(&ConnFileParser{})
}

func (p *ConnFileParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".conn") || strings.HasSuffix(filename, "conn_file") || strings.HasSuffix(filename, ".txt")
}

func (p *ConnFileParser) Parse(ctx context.Context, data []byte) (*Profile, error) {
	profile := &Profile{}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.Errorf("line %d: expected \"key value\", got %q", lineNo, line)
		}
		key := strings.ToLower(fields[0])
		value := strings.Join(fields[1:], " ")

		switch key {
		case "engine":
			profile.Engine = value
		case "host":
			profile.Connection.Host = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil {
				return nil, errors.Errorf("line %d: invalid port %q: %w", lineNo, value, err)
			}
			profile.Connection.Port = port
		case "user":
			profile.Connection.User = value
		case "password":
			profile.Connection.Password = value
		case "database", "database_name":
			profile.Connection.Database = value
		case "file":
			profile.Connection.File = value
		case "table_name":
			profile.Connection.TableName = value
		case "data_dir":
			profile.Connection.DataDir = value
		default:
			return nil, errors.Errorf("line %d: unknown key %q", lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("scanning conn file: %w", err)
	}

	return profile, nil
}
