// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/domreg/domreg.go/core"
	gogithub "github.com/google/go-github/v69/github"
	"github.com/pkg/errors"
)

const (
	defaultScreenshotRepo = "domain-screenshots"

	// A freshly created repository needs a moment before its first commit.
	repoSettleDelay = 3 * time.Second
)

// Screenshots stores website previews in a repository owned by the submitting
// user and serves them through the raw content host.
type Screenshots struct {
	Client *gogithub.Client

	RepoName    string
	Description string
	Branch      string
}

// NewScreenshots returns a screenshot store sharing the hosting adapter's
// authenticated client.
func NewScreenshots(h *Hosting, parentDomain string) *Screenshots {
	return &Screenshots{
		Client:      h.Client,
		RepoName:    defaultScreenshotRepo,
		Description: fmt.Sprintf("Screenshots for my %s domains", parentDomain),
		Branch:      "main",
	}
}

// Ensure creates the screenshot repository on first use. An existing
// repository is success.
func (s *Screenshots) Ensure(ctx context.Context, owner string) error {
	_, _, err := s.Client.Repositories.Get(ctx, owner, s.RepoName)
	if err == nil {
		return nil
	}
	if status(err) != http.StatusNotFound {
		return errors.Wrap(err, "github: checking screenshot repository")
	}

	_, _, err = s.Client.Repositories.Create(ctx, "", &gogithub.Repository{
		Name:        gogithub.Ptr(s.RepoName),
		Description: gogithub.Ptr(s.Description),
		AutoInit:    gogithub.Ptr(true),
		Private:     gogithub.Ptr(false),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return errors.Wrap(err, "github: creating screenshot repository")
	}

	select {
	case <-time.After(repoSettleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Upload commits the screenshot and returns its raw content URL.
func (s *Screenshots) Upload(ctx context.Context, owner, filename string, data []byte) (string, error) {
	_, _, err := s.Client.Repositories.CreateFile(ctx, owner, s.RepoName, filename, &gogithub.RepositoryContentFileOptions{
		Message: gogithub.Ptr(fmt.Sprintf("Add screenshot %s", filename)),
		Content: data,
	})
	if err != nil {
		return "", errors.Wrap(err, "github: uploading screenshot")
	}

	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", owner, s.RepoName, s.Branch, filename), nil
}

var _ core.ArtifactStore = (*Screenshots)(nil)
