// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import "context"

// Outcome tags the result of create-ish remote calls whose "already exists"
// answer is as good as success.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeAlreadyExists
)

// FileContent is a registry file as stored remotely. SHA is the content hash
// required for updates.
type FileContent struct {
	Content []byte
	SHA     string
}

// Repository describes a remote repository.
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	DefaultBranch string
}

// PullRequest is the result of opening a pull request.
type PullRequest struct {
	Number int
	URL    string
}

// Hosting is the version-control hosting contract the workflow engine and
// checker consume. Adapters must return ErrNotFound for missing resources and
// either OutcomeAlreadyExists or ErrAlreadyExists for conflicts, never bare
// message text for callers to sniff.
type Hosting interface {
	// AuthenticatedLogin resolves the credential's stable account handle.
	// ErrIdentityUnresolved when the credential cannot be mapped to a handle.
	AuthenticatedLogin(ctx context.Context) (string, error)

	// GetFileContent fetches a file at ref (empty ref means default branch).
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (*FileContent, error)

	// CreateOrUpdateFile writes a file on branch. sha must carry the prior
	// content hash when updating an existing file and be empty for a create.
	CreateOrUpdateFile(ctx context.Context, owner, repo, path, branch, message string, content []byte, sha string) error

	// ListDirectory returns the file names directly under path.
	ListDirectory(ctx context.Context, owner, repo, path string) ([]string, error)

	// ForkRepository forks owner/repo into the caller's namespace. The fork
	// may still be materializing when this returns.
	ForkRepository(ctx context.Context, owner, repo string) (Outcome, *Repository, error)

	// GetRepository fetches repository metadata including the default branch.
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)

	// GetHeadCommit resolves branch to its latest commit hash.
	GetHeadCommit(ctx context.Context, owner, repo, branch string) (string, error)

	// CreateBranch creates a branch at sha.
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) (Outcome, error)

	// CreatePullRequest opens a pull request; head is "owner:branch".
	CreatePullRequest(ctx context.Context, owner, repo, title, head, base, body string) (*PullRequest, error)
}

// ArtifactStore stores screenshots in a caller-owned location and hands back
// a stable public URL. Ensure tolerates the store already existing.
type ArtifactStore interface {
	Ensure(ctx context.Context, owner string) error
	Upload(ctx context.Context, owner, filename string, data []byte) (string, error)
}

// ZoneChecker answers whether live DNS records already exist for a name at
// the zone provider. Advisory only; registration never blocks on it.
type ZoneChecker interface {
	HasRecords(ctx context.Context, fqdn string) (bool, error)
	Close() error
}

type (
	HostingBuilder     func(config map[string]string) (Hosting, error)
	ZoneCheckerBuilder func(config map[string]string) (ZoneChecker, error)
)

var (
	HostingBuilders     = map[string]HostingBuilder{}
	ZoneCheckerBuilders = map[string]ZoneCheckerBuilder{}
)
