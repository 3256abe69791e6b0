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

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🎯 Engine identifies one of the install targets the retriever binary supports
type Engine string

const (
	CSV      Engine = "csv"
	JSON     Engine = "json"
	XML      Engine = "xml"
	SQLite   Engine = "sqlite"
	MSAccess Engine = "msaccess"
	MySQL    Engine = "mysql"
	Postgres Engine = "postgres"
)

// 🗺️ aliases maps the spellings users type to canonical engine names
var aliases = map[string]Engine{
	"csv":        CSV,
	"json":       JSON,
	"xml":        XML,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"msaccess":   MSAccess,
	"access":     MSAccess,
	"mysql":      MySQL,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pgsql":      Postgres,
}

// 📝 Parse resolves a user-supplied engine name to a canonical Engine
func Parse(name string) (Engine, error) {
	e, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", errors.Errorf("unknown engine %q (expected one of: csv, json, xml, sqlite, msaccess, mysql, postgres)", name)
	}
	return e, nil
}

// String returns the canonical engine name as passed to the retriever binary
func (e Engine) String() string {
	return string(e)
}

// IsServer reports whether the engine connects to a database server
func (e Engine) IsServer() bool {
	return e == MySQL || e == Postgres
}

// IsFile reports whether the engine writes flat files or a file-backed database
func (e Engine) IsFile() bool {
	return !e.IsServer()
}

// defaultPort returns the conventional server port for the engine, 0 for file engines
func (e Engine) defaultPort() int {
	switch e {
	case MySQL:
		return 3306
	case Postgres:
		return 5432
	default:
		return 0
	}
}

// 🔌 Connection holds everything needed to point the retriever at an install target.
// Server engines use Host/Port/User/Password/Database; file engines use File and
// DataDir. TableName is the retriever's table-name template and applies to both.
type Connection struct {
	Host      string `yaml:"host,omitempty" hcl:"host,optional" json:"host,omitempty"`
	Port      int    `yaml:"port,omitempty" hcl:"port,optional" json:"port,omitempty"`
	User      string `yaml:"user,omitempty" hcl:"user,optional" json:"user,omitempty"`
	Password  string `yaml:"password,omitempty" hcl:"password,optional" json:"password,omitempty"`
	Database  string `yaml:"database,omitempty" hcl:"database,optional" json:"database,omitempty"`
	File      string `yaml:"file,omitempty" hcl:"file,optional" json:"file,omitempty"`
	TableName string `yaml:"table_name,omitempty" hcl:"table_name,optional" json:"table_name,omitempty"`
	DataDir   string `yaml:"data_dir,omitempty" hcl:"data_dir,optional" json:"data_dir,omitempty"`
}

// 🔍 Validate checks that the connection carries what the engine needs
func (c *Connection) Validate(e Engine) error {
	if e.IsServer() {
		if c.User == "" {
			return errors.Errorf("engine %s requires a user", e)
		}
		if c.Host == "" {
			return errors.Errorf("engine %s requires a host", e)
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// applyDefaults fills engine-dependent defaults on a copy of the connection
func (c Connection) applyDefaults(e Engine) Connection {
	if c.Port == 0 {
		c.Port = e.defaultPort()
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.File == "" {
		switch e {
		case SQLite:
			c.File = "sqlite.db"
		case MSAccess:
			c.File = "access.mdb"
		}
	}
	if c.TableName == "" {
		switch e {
		case CSV:
			c.TableName = "{db}_{table}.csv"
		case JSON:
			c.TableName = "{db}_{table}.json"
		case XML:
			c.TableName = "{db}_{table}.xml"
		default:
			c.TableName = "{db}_{table}"
		}
	}
	return c
}

// 📦 InstallArgs builds the argument list for `retriever install <engine> <dataset>`.
// The returned slice starts after the binary name and is passed verbatim to the
// subprocess runner.
func (e Engine) InstallArgs(dataset string, conn Connection) ([]string, error) {
	if strings.TrimSpace(dataset) == "" {
		return nil, errors.Errorf("empty dataset name")
	}
	if err := conn.Validate(e); err != nil {
		return nil, errors.Errorf("validating connection: %w", err)
	}
	conn = conn.applyDefaults(e)

	args := []string{"install", e.String(), dataset}

	if e.IsServer() {
		args = append(args,
			"--user", conn.User,
			"--host", conn.Host,
			"--port", strconv.Itoa(conn.Port),
		)
		// Empty password stays off the command line entirely.
		if conn.Password != "" {
			args = append(args, "--password", conn.Password)
		}
		if conn.Database != "" {
			args = append(args, "--database_name", conn.Database)
		}
		args = append(args, "--table_name", conn.TableName)
		return args, nil
	}

	switch e {
	case SQLite, MSAccess:
		args = append(args, "--file", joinDataPath(conn.DataDir, conn.File))
		args = append(args, "--table_name", conn.TableName)
	default:
		args = append(args, "--table_name", joinDataPath(conn.DataDir, conn.TableName))
	}
	return args, nil
}

// joinDataPath joins a data dir and name without cleaning template placeholders
func joinDataPath(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

// 📝 DSN renders a human-readable summary of the target, never the password
func (c Connection) DSN(e Engine) string {
	if e.IsServer() {
		host := c.Host
		if c.Port != 0 {
			host = fmt.Sprintf("%s:%d", c.Host, c.Port)
		}
		return fmt.Sprintf("%s://%s@%s/%s", e, c.User, host, c.Database)
	}
	return fmt.Sprintf("%s:%s", e, joinDataPath(c.DataDir, c.File))
}
