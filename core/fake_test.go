// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var errTransient = errors.New("transient remote failure")

type prRecord struct {
	Owner, Repo, Title, Head, Base, Body string
}

type fileWrite struct {
	Owner, Repo, Path, Branch, Message, SHA string
	Content                                 []byte
}

// fakeHosting is a scripted in-memory hosting platform. Files are keyed
// owner/repo/path@ref; ref "" is the default branch.
type fakeHosting struct {
	login    string
	loginErr error

	files map[string][]byte
	dirs  map[string][]string

	getErr error

	forkOutcome       Outcome
	forkErr           error
	forkCalls         int
	loginRepoFailures int

	branchErr       error
	createdBranches []string

	prErr error
	prs   []prRecord

	writes []fileWrite
}

func newFakeHosting(login string) *fakeHosting {
	return &fakeHosting{
		login: login,
		files: map[string][]byte{},
		dirs:  map[string][]string{},
	}
}

func fileKey(owner, repo, path, ref string) string {
	return fmt.Sprintf("%s/%s/%s@%s", owner, repo, path, ref)
}

func (f *fakeHosting) AuthenticatedLogin(context.Context) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.login, nil
}

func (f *fakeHosting) GetFileContent(_ context.Context, owner, repo, path, ref string) (*FileContent, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	content, ok := f.files[fileKey(owner, repo, path, ref)]
	if !ok {
		return nil, ErrNotFound
	}
	return &FileContent{Content: content, SHA: "sha-" + path}, nil
}

func (f *fakeHosting) CreateOrUpdateFile(_ context.Context, owner, repo, path, branch, message string, content []byte, sha string) error {
	f.writes = append(f.writes, fileWrite{Owner: owner, Repo: repo, Path: path, Branch: branch, Message: message, SHA: sha, Content: content})
	f.files[fileKey(owner, repo, path, branch)] = content
	return nil
}

func (f *fakeHosting) ListDirectory(_ context.Context, owner, repo, path string) ([]string, error) {
	names, ok := f.dirs[fmt.Sprintf("%s/%s/%s", owner, repo, path)]
	if !ok {
		return nil, ErrNotFound
	}
	return names, nil
}

func (f *fakeHosting) ForkRepository(context.Context, string, string) (Outcome, *Repository, error) {
	f.forkCalls++
	if f.forkErr != nil {
		return 0, nil, f.forkErr
	}
	return f.forkOutcome, nil, nil
}

func (f *fakeHosting) GetRepository(_ context.Context, owner, repo string) (*Repository, error) {
	if owner == f.login && f.loginRepoFailures > 0 {
		f.loginRepoFailures--
		return nil, errTransient
	}
	return &Repository{Owner: owner, Name: repo, FullName: owner + "/" + repo, DefaultBranch: "main"}, nil
}

func (f *fakeHosting) GetHeadCommit(context.Context, string, string, string) (string, error) {
	return "abc123def4567890", nil
}

func (f *fakeHosting) CreateBranch(_ context.Context, _, _, branch, _ string) (Outcome, error) {
	if f.branchErr != nil {
		return 0, f.branchErr
	}
	f.createdBranches = append(f.createdBranches, branch)
	return OutcomeCreated, nil
}

func (f *fakeHosting) CreatePullRequest(_ context.Context, owner, repo, title, head, base, body string) (*PullRequest, error) {
	if f.prErr != nil {
		return nil, f.prErr
	}
	f.prs = append(f.prs, prRecord{Owner: owner, Repo: repo, Title: title, Head: head, Base: base, Body: body})
	return &PullRequest{Number: 42, URL: fmt.Sprintf("https://github.com/%s/%s/pull/42", owner, repo)}, nil
}

type fakeArtifacts struct {
	ensureErr error
	uploadErr error

	ensureCalls int
	uploaded    []string
}

func (a *fakeArtifacts) Ensure(context.Context, string) error {
	a.ensureCalls++
	return a.ensureErr
}

func (a *fakeArtifacts) Upload(_ context.Context, owner, filename string, _ []byte) (string, error) {
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	a.uploaded = append(a.uploaded, filename)
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/domain-screenshots/main/%s", owner, filename), nil
}

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	b, ok := c.entries[key]
	return b, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.entries[key] = value
}

type fakeZone struct {
	records map[string]bool
	err     error
}

func (z *fakeZone) HasRecords(_ context.Context, fqdn string) (bool, error) {
	if z.err != nil {
		return false, z.err
	}
	return z.records[fqdn], nil
}

func (z *fakeZone) Close() error { return nil }
