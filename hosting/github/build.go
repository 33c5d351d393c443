// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/domreg/domreg.go/core"
	gogithub "github.com/google/go-github/v69/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Hosting adapts the GitHub REST API to the core hosting contract. It maps
// GitHub's structured error responses onto the core sentinels so the engine
// never has to sniff message text.
type Hosting struct {
	Client *gogithub.Client
}

func (h *Hosting) AuthenticatedLogin(ctx context.Context) (string, error) {
	user, _, err := h.Client.Users.Get(ctx, "")
	if err != nil {
		if status(err) == http.StatusUnauthorized {
			return "", core.ErrAuthenticationRequired
		}
		return "", errors.Wrap(err, "github: fetching authenticated user")
	}
	if user.GetLogin() == "" {
		return "", core.ErrIdentityUnresolved
	}
	return user.GetLogin(), nil
}

func (h *Hosting) GetFileContent(ctx context.Context, owner, repo, path, ref string) (*core.FileContent, error) {
	opts := &gogithub.RepositoryContentGetOptions{Ref: ref}
	file, _, _, err := h.Client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if status(err) == http.StatusNotFound {
			return nil, core.ErrNotFound
		}
		return nil, errors.Wrapf(err, "github: fetching %s/%s:%s", owner, repo, path)
	}
	if file == nil {
		// The path resolved to a directory.
		return nil, core.ErrNotFound
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, errors.Wrapf(err, "github: decoding %s/%s:%s", owner, repo, path)
	}
	return &core.FileContent{Content: []byte(content), SHA: file.GetSHA()}, nil
}

func (h *Hosting) CreateOrUpdateFile(ctx context.Context, owner, repo, path, branch, message string, content []byte, sha string) error {
	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.Ptr(message),
		Content: content,
		Branch:  gogithub.Ptr(branch),
	}

	var err error
	if sha == "" {
		_, _, err = h.Client.Repositories.CreateFile(ctx, owner, repo, path, opts)
	} else {
		opts.SHA = gogithub.Ptr(sha)
		_, _, err = h.Client.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	}
	return errors.Wrapf(err, "github: writing %s/%s:%s", owner, repo, path)
}

func (h *Hosting) ListDirectory(ctx context.Context, owner, repo, path string) ([]string, error) {
	_, entries, _, err := h.Client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if status(err) == http.StatusNotFound {
			return nil, core.ErrNotFound
		}
		return nil, errors.Wrapf(err, "github: listing %s/%s:%s", owner, repo, path)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.GetName())
	}
	return names, nil
}

func (h *Hosting) ForkRepository(ctx context.Context, owner, repo string) (core.Outcome, *core.Repository, error) {
	fork, _, err := h.Client.Repositories.CreateFork(ctx, owner, repo, &gogithub.RepositoryCreateForkOptions{})
	if err != nil {
		// GitHub forks asynchronously and answers 202; go-github surfaces
		// that as AcceptedError with the fork still materializing.
		var accepted *gogithub.AcceptedError
		if errors.As(err, &accepted) {
			return core.OutcomeCreated, repository(fork), nil
		}
		if isAlreadyExists(err) {
			return core.OutcomeAlreadyExists, repository(fork), nil
		}
		return 0, nil, errors.Wrapf(err, "github: forking %s/%s", owner, repo)
	}
	return core.OutcomeCreated, repository(fork), nil
}

func (h *Hosting) GetRepository(ctx context.Context, owner, repo string) (*core.Repository, error) {
	r, _, err := h.Client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if status(err) == http.StatusNotFound {
			return nil, core.ErrNotFound
		}
		return nil, errors.Wrapf(err, "github: fetching repository %s/%s", owner, repo)
	}
	return repository(r), nil
}

func (h *Hosting) GetHeadCommit(ctx context.Context, owner, repo, branch string) (string, error) {
	ref, _, err := h.Client.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		if status(err) == http.StatusNotFound {
			return "", core.ErrNotFound
		}
		return "", errors.Wrapf(err, "github: resolving heads/%s in %s/%s", branch, owner, repo)
	}
	return ref.GetObject().GetSHA(), nil
}

func (h *Hosting) CreateBranch(ctx context.Context, owner, repo, branch, sha string) (core.Outcome, error) {
	_, _, err := h.Client.Git.CreateRef(ctx, owner, repo, &gogithub.Reference{
		Ref:    gogithub.Ptr("refs/heads/" + branch),
		Object: &gogithub.GitObject{SHA: gogithub.Ptr(sha)},
	})
	if err != nil {
		if isAlreadyExists(err) {
			return core.OutcomeAlreadyExists, nil
		}
		return 0, errors.Wrapf(err, "github: creating branch %s in %s/%s", branch, owner, repo)
	}
	return core.OutcomeCreated, nil
}

func (h *Hosting) CreatePullRequest(ctx context.Context, owner, repo, title, head, base, body string) (*core.PullRequest, error) {
	pr, _, err := h.Client.PullRequests.Create(ctx, owner, repo, &gogithub.NewPullRequest{
		Title: gogithub.Ptr(title),
		Head:  gogithub.Ptr(head),
		Base:  gogithub.Ptr(base),
		Body:  gogithub.Ptr(body),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "github: creating pull request in %s/%s", owner, repo)
	}
	return &core.PullRequest{Number: pr.GetNumber(), URL: pr.GetHTMLURL()}, nil
}

func repository(r *gogithub.Repository) *core.Repository {
	if r == nil {
		return nil
	}
	return &core.Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}

func status(err error) int {
	var er *gogithub.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode
	}
	return 0
}

// isAlreadyExists recognizes GitHub's 422 conflict for refs and forks that
// already exist. The structured error code is checked first; message text is
// only a fallback.
func isAlreadyExists(err error) bool {
	var er *gogithub.ErrorResponse
	if !errors.As(err, &er) {
		return false
	}
	if er.Response == nil || er.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, e := range er.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(er.Message), "already exists")
}

// Build creates a GitHub hosting adapter from config. The token must be a
// user-scoped credential for workflow use; read-only checker queries may run
// with a shared token or, against public registries, with none at all.
func Build(config map[string]string) (core.Hosting, error) {
	token := config["token"]
	if token == "" {
		if config["anonymous"] != "true" {
			return nil, fmt.Errorf("github: require [token] (or anonymous=true for read-only access)")
		}
		return &Hosting{Client: gogithub.NewClient(nil)}, nil
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gogithub.NewClient(oauth2.NewClient(context.Background(), ts))

	return &Hosting{Client: client}, nil
}

func init() {
	core.HostingBuilders["github"] = Build
}
