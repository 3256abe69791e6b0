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

package release

import (
	"context"
	"os"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Upstream repository of the wrapped retriever binary
const (
	defaultOwner = "weecology"
	defaultRepo  = "retriever"
)

// GitHubClient defines the slice of the GitHub API this package needs
type GitHubClient interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

// 🔭 Checker queries the retriever's upstream repository so callers can tell
// whether the installed binary is stale
type Checker struct {
	client GitHubClient
	owner  string
	repo   string
}

// githubClientWrapper wraps the GitHub client to implement our interface
type githubClientWrapper struct {
	client *github.Client
}

func (w *githubClientWrapper) GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error) {
	return w.client.Repositories.GetLatestRelease(ctx, owner, repo)
}

// 🏭 NewChecker creates a checker against the default upstream repository.
// GITHUB_TOKEN is honored for rate limits when present.
func NewChecker() *Checker {
	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}
	return &Checker{
		client: &githubClientWrapper{client: client},
		owner:  defaultOwner,
		repo:   defaultRepo,
	}
}

// NewCheckerWithClient creates a checker with an explicit client, for tests
func NewCheckerWithClient(client GitHubClient, owner, repo string) *Checker {
	return &Checker{client: client, owner: owner, repo: repo}
}

// 📋 Staleness compares the installed version against the newest release
type Staleness struct {
	Installed string // normalized installed version, e.g. "3.1.0"
	Latest    string // normalized newest release tag
	Outdated  bool
}

// 🔍 Check fetches the latest upstream release and compares it with the
// installed version string.
func (c *Checker) Check(ctx context.Context, installed string) (*Staleness, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("repo", c.owner+"/"+c.repo).Msg("checking latest retriever release")

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("context error: %w", err)
	}

	release, resp, err := c.client.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Errorf("context error: %w", ctx.Err())
		}
		if resp != nil && resp.StatusCode == 403 {
			if _, ok := err.(*github.RateLimitError); ok {
				return nil, errors.Errorf("rate limit exceeded: %w", err)
			}
		}
		return nil, errors.Errorf("getting latest release from GitHub: %w", err)
	}

	latest := normalizeVersion(release.GetTagName())
	current := normalizeVersion(installed)

	return &Staleness{
		Installed: current,
		Latest:    latest,
		Outdated:  current != "" && latest != "" && current != latest,
	}, nil
}

// normalizeVersion strips tag decorations so versions compare textually
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "retriever")
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "v")
	return v
}
