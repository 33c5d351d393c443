// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testNowMilli = 1700000000000

func newTestEngine(h Hosting) *Engine {
	e := NewEngine(h, DefaultRegistryConfig())

	lg := logrus.New()
	lg.SetOutput(io.Discard)
	e.Log = lg

	e.ForkSettleDelay = 0
	e.VerifyPolicy = fastPolicy(3)
	e.BranchPolicy = fastPolicy(3)
	e.now = func() time.Time { return time.UnixMilli(testNowMilli) }
	e.sleep = func(context.Context, time.Duration) error { return nil }
	return e
}

func simpleData() *DomainData {
	return &DomainData{
		Description: "My personal site",
		Repo:        "https://github.com/alice/site",
		Owner:       DomainOwner{Username: "spoofed", Email: "a@example.com"},
		Record:      DomainRecord{A: []string{"9.9.9.9"}},
	}
}

func stepByID(t *testing.T, steps []ProgressStep, id string) ProgressStep {
	t.Helper()
	for _, s := range steps {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("no step %q in %v", id, steps)
	return ProgressStep{}
}

func TestRegisterDomainHappyPath(t *testing.T) {
	f := newFakeHosting("alice")
	e := newTestEngine(f)

	result, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.NoError(t, err)
	require.Regexp(t, `^https://github\.com/.+/pull/\d+$`, result.URL)

	// Every step completed, in workflow order.
	var ids []string
	for _, s := range result.Steps {
		require.Equal(t, StepComplete, s.Status, s.ID)
		ids = append(ids, s.ID)
	}
	require.Equal(t, []string{
		"auth", "user", "fork", "wait-fork", "verify-fork",
		"get-branch", "get-commit", "create-branch", "create-file", "create-pr",
	}, ids)

	// The file landed in the fork on the attempt branch, and the stored owner
	// is the authenticated handle, not the caller-supplied one.
	require.Len(t, f.writes, 1)
	write := f.writes[0]
	require.Equal(t, "alice", write.Owner)
	require.Equal(t, "register", write.Repo)
	require.Equal(t, "domains/cyberdev.json", write.Path)
	require.Equal(t, "add-cyberdev-1700000000000", write.Branch)
	require.Equal(t, "Add cyberdev.is-a.dev", write.Message)
	require.Empty(t, write.SHA)

	var stored DomainData
	require.NoError(t, json.Unmarshal(write.Content, &stored))
	require.Equal(t, "alice", stored.Owner.Username)
	require.Equal(t, "a@example.com", stored.Owner.Email)
	require.Equal(t, []string{"9.9.9.9"}, stored.Record.A)

	require.Len(t, f.prs, 1)
	pr := f.prs[0]
	require.Equal(t, "is-a-dev", pr.Owner)
	require.Equal(t, "Add cyberdev.is-a.dev", pr.Title)
	require.Equal(t, "alice:add-cyberdev-1700000000000", pr.Head)
	require.Equal(t, "main", pr.Base)
	require.Contains(t, pr.Body, "register `cyberdev.is-a.dev`")
	require.Contains(t, pr.Body, "**Description**: My personal site")
	require.Contains(t, pr.Body, "## Checklist")
	require.NotContains(t, pr.Body, "## Website Preview")
}

func TestRegisterDomainUpdateWording(t *testing.T) {
	cfg := DefaultRegistryConfig()
	f := newFakeHosting("alice")
	seedRegistryFile(f, cfg, "cyberdev", "alice")
	e := newTestEngine(f)

	_, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.NoError(t, err)

	require.Equal(t, "Update cyberdev.is-a.dev", f.writes[0].Message)
	require.Equal(t, "update-cyberdev-1700000000000", f.writes[0].Branch)
	require.Contains(t, f.prs[0].Body, "update `cyberdev.is-a.dev`")
}

func TestRegisterDomainRejectsInvalidRecords(t *testing.T) {
	f := newFakeHosting("alice")
	e := newTestEngine(f)

	data := simpleData()
	data.Record = DomainRecord{A: []string{"10.0.0.1"}}

	_, err := e.RegisterDomain(context.Background(), "cyberdev", data, nil)
	require.Error(t, err)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "validate", werr.StepID)
	require.Zero(t, f.forkCalls)
}

func TestRegisterDomainRequiresHosting(t *testing.T) {
	e := newTestEngine(nil)

	_, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.ErrorIs(t, err, ErrAuthenticationRequired)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "auth", werr.StepID)
}

func TestRegisterDomainRequiresResolvedIdentity(t *testing.T) {
	f := newFakeHosting("")
	e := newTestEngine(f)

	_, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.ErrorIs(t, err, ErrIdentityUnresolved)
	require.Zero(t, f.forkCalls)
}

func TestRegisterDomainForkFallsBackToExisting(t *testing.T) {
	f := newFakeHosting("alice")
	f.forkErr = errTransient
	e := newTestEngine(f)

	result, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.NoError(t, err)
	require.Equal(t, StepComplete, stepByID(t, result.Steps, "fork").Status)
}

func TestRegisterDomainForkFatalWhenNoFallback(t *testing.T) {
	f := newFakeHosting("alice")
	f.forkErr = errTransient
	f.loginRepoFailures = 100
	e := newTestEngine(f)

	_, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.Error(t, err)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "fork", werr.StepID)
}

func TestRegisterDomainVerifyForkRetries(t *testing.T) {
	f := newFakeHosting("alice")
	f.loginRepoFailures = 2
	e := newTestEngine(f)

	result, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.NoError(t, err)
	require.Equal(t, StepComplete, stepByID(t, result.Steps, "verify-fork").Status)
	require.Zero(t, f.loginRepoFailures)
}

func TestRegisterDomainVerifyForkExhausted(t *testing.T) {
	f := newFakeHosting("alice")
	f.loginRepoFailures = 10
	e := newTestEngine(f)

	_, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.Error(t, err)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "verify-fork", werr.StepID)
	require.ErrorIs(t, err, errTransient)
}

// An existing branch from a prior partial run is reused, not treated as a
// failure.
func TestRegisterDomainBranchAlreadyExists(t *testing.T) {
	f := newFakeHosting("alice")
	f.branchErr = ErrAlreadyExists
	e := newTestEngine(f)

	result, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.NoError(t, err)

	step := stepByID(t, result.Steps, "create-branch")
	require.Equal(t, StepComplete, step.Status)
	require.Contains(t, step.Message, "already exists, proceeding")

	// The workflow still reached the end.
	require.Len(t, f.writes, 1)
	require.Len(t, f.prs, 1)
}

func TestRegisterDomainScreenshotUploaded(t *testing.T) {
	f := newFakeHosting("alice")
	e := newTestEngine(f)
	arts := &fakeArtifacts{}
	e.Artifacts = arts

	shot := &Screenshot{Name: "preview.png", Data: []byte{1, 2, 3}}
	result, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), shot)
	require.NoError(t, err)

	require.Equal(t, StepComplete, stepByID(t, result.Steps, "screenshot").Status)
	require.Equal(t, []string{"cyberdev-1700000000000.png"}, arts.uploaded)
	require.Contains(t, f.prs[0].Body, "## Website Preview")
	require.Contains(t, f.prs[0].Body, "cyberdev-1700000000000.png")
}

// Screenshot upload failure degrades to a warning; the registration itself
// must still go through, just without the preview section.
func TestRegisterDomainScreenshotFailureIsNotFatal(t *testing.T) {
	f := newFakeHosting("alice")
	e := newTestEngine(f)
	e.Artifacts = &fakeArtifacts{uploadErr: errTransient}

	shot := &Screenshot{Name: "preview.png", Data: []byte{1, 2, 3}}
	result, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), shot)
	require.NoError(t, err)

	require.Equal(t, StepError, stepByID(t, result.Steps, "screenshot").Status)
	require.Len(t, f.prs, 1)
	require.NotContains(t, f.prs[0].Body, "## Website Preview")
}

func TestRegisterDomainScreenshotSkippedForEmailOnly(t *testing.T) {
	f := newFakeHosting("alice")
	e := newTestEngine(f)
	arts := &fakeArtifacts{}
	e.Artifacts = arts

	data := simpleData()
	data.Record = DomainRecord{MX: []MxRecord{MxHost("mx.zoho.com")}}

	shot := &Screenshot{Name: "preview.png", Data: []byte{1, 2, 3}}
	result, err := e.RegisterDomain(context.Background(), "cyberdev", data, shot)
	require.NoError(t, err)

	require.Zero(t, arts.ensureCalls)
	for _, s := range result.Steps {
		require.NotEqual(t, "screenshot", s.ID)
	}
}

func TestRegisterDomainReusesPriorFileSHA(t *testing.T) {
	f := newFakeHosting("alice")
	// A file already on the attempt branch, left by a prior partial run.
	f.files[fileKey("alice", "register", "domains/cyberdev.json", "add-cyberdev-1700000000000")] = []byte("{}")
	e := newTestEngine(f)

	_, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.NoError(t, err)
	require.Equal(t, "sha-domains/cyberdev.json", f.writes[0].SHA)
}

func TestRegisterDomainProgressObserver(t *testing.T) {
	f := newFakeHosting("alice")
	e := newTestEngine(f)

	var seen []ProgressStep
	e.Progress = func(s ProgressStep) { seen = append(seen, s) }

	_, err := e.RegisterDomain(context.Background(), "cyberdev", simpleData(), nil)
	require.NoError(t, err)

	// Loading then complete for the first step, at minimum.
	require.Greater(t, len(seen), 2)
	require.Equal(t, ProgressStep{ID: "auth", Message: "Authenticating with the hosting platform...", Status: StepLoading}, seen[0])
}

func TestBuildPullRequestBodyMinimal(t *testing.T) {
	data := &DomainData{Record: DomainRecord{A: []string{"9.9.9.9"}}}
	body := BuildPullRequestBody(DefaultRegistryConfig(), "cyberdev", data, "", false)

	require.Contains(t, body, "## Domain Registration")
	require.Contains(t, body, "I'd like to register `cyberdev.is-a.dev`.")
	require.NotContains(t, body, "**Description**")
	require.NotContains(t, body, "**Repository**")
	require.NotContains(t, body, "## Website Preview")
	require.Contains(t, body, "[documentation](https://is-a.dev/docs)")
	require.Contains(t, body, "[domain structure](https://is-a.dev/docs/#domain-structure)")
}
