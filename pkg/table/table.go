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

package table

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Table is one CSV file loaded into memory: a header plus its rows
type Table struct {
	Name    string     // Table key, dataset prefix stripped
	Columns []string   // Header row
	Rows    [][]string // Data rows, each len(Columns) wide
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Column returns the values of the named column, false if it does not exist
func (t *Table) Column(name string) ([]string, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values, true
}

// 📝 Load reads one CSV file into a Table. An empty file yields a table with
// headers only; a row whose width differs from the header is an error naming
// the file and line.
func Load(ctx context.Context, path string) (*Table, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading csv table")

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 0 // enforce uniform width against the header

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{Name: tableKey(filepath.Base(path), "")}, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading csv header from %s: %w", path, err)
	}

	t := &Table{
		Name:    tableKey(filepath.Base(path), ""),
		Columns: header,
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Errorf("reading %s line %d: %w", path, line, err)
		}
		t.Rows = append(t.Rows, record)
	}

	return t, nil
}

// 📦 LoadDir loads every CSV the retriever produced for a dataset into a map
// keyed by table name. Files that do not belong to the dataset are skipped.
func LoadDir(ctx context.Context, dir, dataset string) (map[string]*Table, error) {
	logger := zerolog.Ctx(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading data directory: %w", err)
	}

	prefix := datasetPrefix(dataset)
	tables := make(map[string]*Table)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			logger.Debug().Str("file", name).Msg("skipping file outside dataset")
			continue
		}

		t, err := Load(ctx, filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Errorf("loading table %s: %w", name, err)
		}
		t.Name = tableKey(name, prefix)
		tables[t.Name] = t
	}

	if len(tables) == 0 {
		return nil, errors.Errorf("no csv files for dataset %q in %s", dataset, dir)
	}

	logger.Debug().Int("tables", len(tables)).Str("dataset", dataset).Msg("loaded dataset tables")
	return tables, nil
}

// Keys returns the sorted table names of a loaded dataset
func Keys(tables map[string]*Table) []string {
	keys := make([]string, 0, len(tables))
	for k := range tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// datasetPrefix converts a dataset name to the file prefix the retriever
// uses when writing CSVs: dashes become underscores, one trailing underscore.
func datasetPrefix(dataset string) string {
	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		return ""
	}
	return strings.ReplaceAll(dataset, "-", "_") + "_"
}

// tableKey strips the dataset prefix and extension from a produced file name
func tableKey(file, prefix string) string {
	key := strings.TrimSuffix(file, ".csv")
	if prefix != "" {
		key = strings.TrimPrefix(key, prefix)
	}
	return key
}
