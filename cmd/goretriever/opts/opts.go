package opts

import (
	"context"

	"github.com/retrieverlabs/goretriever/pkg/conn"
	"github.com/retrieverlabs/goretriever/pkg/engine"
	"github.com/retrieverlabs/goretriever/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConnFile string // connection profile path, empty for no profile
	Engine   string // engine name from the --engine flag
	LogFile  string // subprocess log redirect, empty for none
	Debug    bool

	Console *log.Logger
}

// LoadProfile loads the connection profile named by the --conn flag.
// Without the flag an empty profile is returned.
func (o *RootOpts) LoadProfile(ctx context.Context) (*conn.Profile, error) {
	if o.ConnFile == "" {
		return &conn.Profile{}, nil
	}
	profile, err := conn.Load(ctx, o.ConnFile)
	if err != nil {
		return nil, errors.Errorf("loading connection profile: %w", err)
	}
	return profile, nil
}

// ResolveEngine combines the --engine flag with the profile's engine,
// the flag winning when both are set. The default target is csv.
func (o *RootOpts) ResolveEngine(profile *conn.Profile) (engine.Engine, error) {
	if o.Engine != "" {
		return engine.Parse(o.Engine)
	}
	return profile.ResolveEngine(engine.CSV)
}
