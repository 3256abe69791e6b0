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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/retrieverlabs/goretriever/pkg/engine"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// 🔧 HCLParser implements the Parser interface for HCL profiles
type HCLParser struct{}

// hclProfile makes the connection block optional, matching the conn_file
// and YAML parsers which accept engine-only profiles
type hclProfile struct {
	Engine     string             `hcl:"engine,optional"`
	Connection *engine.Connection `hcl:"connection,block"`
}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Profile, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "connection.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var decoded hclProfile
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &decoded)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	profile := &Profile{Engine: decoded.Engine}
	if decoded.Connection != nil {
		profile.Connection = *decoded.Connection
	}
	return profile, nil
}
