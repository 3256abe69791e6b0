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
	"context"
	"os"
	"strings"

	"github.com/retrieverlabs/goretriever/pkg/engine"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for connection-profile parsers
type Parser interface {
	// 📝 Parse parses the profile from bytes
	Parse(ctx context.Context, data []byte) (*Profile, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Profile is a named connection target: an engine plus its credentials
type Profile struct {
	Engine     string            `yaml:"engine,omitempty" hcl:"engine,optional" json:"engine,omitempty"`
	Connection engine.Connection `yaml:"connection" hcl:"connection,block" json:"connection"`
}

// 🎯 Load loads a connection profile from a file
func Load(ctx context.Context, path string) (*Profile, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading connection profile")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading connection file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	profile, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing connection file: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return nil, errors.Errorf("validating connection profile: %w", err)
	}

	return profile, nil
}

// 🔍 Validate checks that the profile is internally consistent
func (p *Profile) Validate() error {
	if p.Engine != "" {
		if _, err := engine.Parse(p.Engine); err != nil {
			return err
		}
	}
	if strings.ContainsAny(p.Connection.Host, " \t") {
		return errors.Errorf("host must not contain whitespace: %q", p.Connection.Host)
	}
	return nil
}

// ResolveEngine returns the profile's engine, or the fallback when unset
func (p *Profile) ResolveEngine(fallback engine.Engine) (engine.Engine, error) {
	if p.Engine == "" {
		return fallback, nil
	}
	return engine.Parse(p.Engine)
}
