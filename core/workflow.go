// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultForkSettleDelay = 15 * time.Second

// Screenshot is an optional website preview attached to a registration.
type Screenshot struct {
	Name string
	Data []byte
}

// RegisterResult is the successful outcome of one registration attempt.
type RegisterResult struct {
	URL   string
	Steps []ProgressStep
}

// Engine drives one registration attempt end to end: authenticate, fork the
// registry, wait for the fork, branch, write the record file, open the pull
// request. Steps run strictly in order; every remote call is awaited before
// the next step starts. One Engine serves one attempt — it owns the step log
// and the transient remote handles (fork, branch, file hash) and discards
// them when the attempt ends.
type Engine struct {
	// Hosting must be bound to the acting user's credential, never a shared
	// service credential; the resulting fork, commits and pull request are
	// attributed to the submitter.
	Hosting   Hosting
	Artifacts ArtifactStore
	Config    RegistryConfig
	Policy    Policy

	// Progress observes step snapshots for live rendering.
	Progress ProgressFunc
	Log      logrus.FieldLogger

	// ForkSettleDelay is the fixed pause before verifying fork access; the
	// hosting platform forks asynchronously.
	ForkSettleDelay time.Duration
	VerifyPolicy    BackoffPolicy
	BranchPolicy    BackoffPolicy

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine returns an engine for one registration attempt against cfg.
func NewEngine(hosting Hosting, cfg RegistryConfig) *Engine {
	return &Engine{
		Hosting:         hosting,
		Config:          cfg,
		Policy:          DefaultPolicy(),
		Log:             logrus.StandardLogger(),
		ForkSettleDelay: defaultForkSettleDelay,
		VerifyPolicy:    ForkVerifyPolicy(),
		BranchPolicy:    BranchCreatePolicy(),
		now:             time.Now,
		sleep:           sleepCtx,
	}
}

// RegisterDomain runs the whole workflow for subdomain and returns the pull
// request URL. data.Owner.Username is overwritten with the authenticated
// handle before anything is written. On failure the returned error is a
// *WorkflowError carrying the step log; remote resources created before the
// failure (fork, branch) are left in place for the next attempt to reuse.
func (e *Engine) RegisterDomain(ctx context.Context, subdomain string, data *DomainData, shot *Screenshot) (*RegisterResult, error) {
	e.applyDefaults()

	steps := NewStepLog(func(s ProgressStep) {
		lg := e.Log.WithFields(logrus.Fields{"step": s.ID, "status": s.Status})
		if s.Status == StepError {
			lg.Warn(s.Message)
		} else {
			lg.Info(s.Message)
		}
		if e.Progress != nil {
			e.Progress(s)
		}
	})

	fail := func(id string, err error) (*RegisterResult, error) {
		steps.Set(id, err.Error(), StepError)
		return nil, &WorkflowError{StepID: id, Steps: steps.Steps(), Err: err}
	}

	subdomain, err := NormalizeSubdomain(subdomain)
	if err != nil {
		return fail("validate", err)
	}
	if result := e.Policy.Validate(&data.Record, data.Proxied, data.RedirectConfig); !result.IsValid {
		return fail("validate", errors.Errorf("record set for %s failed validation", subdomain))
	}

	// Authenticate. Registration must be attributable to the real submitter,
	// so a missing user credential is fatal with no retry.
	steps.Set("auth", "Authenticating with the hosting platform...", StepLoading)
	if e.Hosting == nil {
		return fail("auth", ErrAuthenticationRequired)
	}
	steps.Set("auth", "Authentication successful", StepComplete)

	// Resolve the canonical handle and force it into the owner field; the
	// caller-supplied value is never trusted.
	steps.Set("user", "Resolving account handle...", StepLoading)
	login, err := e.Hosting.AuthenticatedLogin(ctx)
	if err != nil {
		if errors.Is(err, ErrIdentityUnresolved) {
			return fail("user", err)
		}
		return fail("user", errors.Wrap(err, "resolving authenticated user"))
	}
	if login == "" {
		return fail("user", ErrIdentityUnresolved)
	}
	data.Owner.Username = login
	steps.Set("user", fmt.Sprintf("Authenticated as %s", login), StepComplete)

	screenshotURL := e.uploadScreenshot(ctx, steps, login, subdomain, data, shot)

	cfg := e.Config
	fqdn := cfg.FQDN(subdomain)

	// Fork the registry into the user's namespace. An existing fork is as
	// good as a fresh one; only failing to create AND to find one is fatal.
	steps.Set("fork", fmt.Sprintf("Forking repository %s/%s...", cfg.UpstreamOwner, cfg.UpstreamRepo), StepLoading)
	outcome, _, err := e.Hosting.ForkRepository(ctx, cfg.UpstreamOwner, cfg.UpstreamRepo)
	switch {
	case err == nil && outcome == OutcomeAlreadyExists:
		steps.Set("fork", fmt.Sprintf("Found existing fork: %s/%s", login, cfg.UpstreamRepo), StepComplete)
	case err == nil:
		steps.Set("fork", "Fork created or already exists", StepComplete)
	default:
		steps.Set("fork", "Fork creation failed, checking for existing fork...", StepLoading)
		if _, ferr := e.Hosting.GetRepository(ctx, login, cfg.UpstreamRepo); ferr != nil {
			return fail("fork", errors.Wrap(err, "could not create or find fork"))
		}
		steps.Set("fork", fmt.Sprintf("Found existing fork: %s/%s", login, cfg.UpstreamRepo), StepComplete)
	}

	// The platform forks asynchronously; settle, then verify access with
	// bounded backoff.
	steps.Set("wait-fork", "Waiting for fork to be ready...", StepLoading)
	if err := e.sleep(ctx, e.ForkSettleDelay); err != nil {
		return fail("wait-fork", err)
	}
	steps.Set("wait-fork", fmt.Sprintf("Fork ready: %s/%s", login, cfg.UpstreamRepo), StepComplete)

	steps.Set("verify-fork", "Verifying fork access...", StepLoading)
	fork, err := RetryWithBackoff(ctx, e.VerifyPolicy, func(attempt int, err error) {
		steps.Set("verify-fork", fmt.Sprintf("Fork not accessible yet (attempt %d of %d), retrying...", attempt, e.VerifyPolicy.MaxAttempts), StepLoading)
	}, func() (*Repository, error) {
		return e.Hosting.GetRepository(ctx, login, cfg.UpstreamRepo)
	})
	if err != nil {
		return fail("verify-fork", errors.Wrapf(err, "cannot access fork after %d attempts", e.VerifyPolicy.MaxAttempts))
	}
	steps.Set("verify-fork", fmt.Sprintf("Fork verified and accessible: %s", fork.FullName), StepComplete)

	steps.Set("get-branch", "Resolving upstream default branch...", StepLoading)
	upstream, err := e.Hosting.GetRepository(ctx, cfg.UpstreamOwner, cfg.UpstreamRepo)
	if err != nil {
		return fail("get-branch", errors.Wrap(err, "resolving upstream repository"))
	}
	baseBranch := upstream.DefaultBranch
	steps.Set("get-branch", fmt.Sprintf("Default branch: %s", baseBranch), StepComplete)

	steps.Set("get-commit", "Resolving latest upstream commit...", StepLoading)
	headSHA, err := e.Hosting.GetHeadCommit(ctx, cfg.UpstreamOwner, cfg.UpstreamRepo, baseBranch)
	if err != nil {
		return fail("get-commit", errors.Wrap(err, "resolving upstream head commit"))
	}
	steps.Set("get-commit", fmt.Sprintf("Latest commit: %s", shortSHA(headSHA)), StepComplete)

	// An existing upstream file means this is an update submission; only the
	// wording changes, the mechanics are identical.
	action := "Add"
	if _, err := e.Hosting.GetFileContent(ctx, cfg.UpstreamOwner, cfg.UpstreamRepo, cfg.FilePath(subdomain), ""); err == nil {
		action = "Update"
	}

	// Dots become hyphens and the timestamp keeps repeated attempts from
	// colliding on the ref name.
	branch := fmt.Sprintf("%s-%s-%d", strings.ToLower(action), strings.ReplaceAll(subdomain, ".", "-"), e.now().UnixMilli())
	steps.Set("create-branch", fmt.Sprintf("Creating branch in fork: %s...", branch), StepLoading)
	branchOutcome, err := RetryWithBackoff(ctx, e.BranchPolicy, func(attempt int, err error) {
		steps.Set("create-branch", fmt.Sprintf("Failed to create branch (attempt %d of %d), retrying...", attempt, e.BranchPolicy.MaxAttempts), StepLoading)
	}, func() (Outcome, error) {
		outcome, err := e.Hosting.CreateBranch(ctx, login, cfg.UpstreamRepo, branch, headSHA)
		if errors.Is(err, ErrAlreadyExists) {
			// Leftover from a prior partial run; reuse it.
			return OutcomeAlreadyExists, nil
		}
		return outcome, err
	})
	if err != nil {
		return fail("create-branch", errors.Wrapf(err, "failed to create branch after %d attempts", e.BranchPolicy.MaxAttempts))
	}
	if branchOutcome == OutcomeAlreadyExists {
		steps.Set("create-branch", fmt.Sprintf("Branch %s already exists, proceeding", branch), StepComplete)
	} else {
		steps.Set("create-branch", "Branch created successfully", StepComplete)
	}

	// Write the record file. A file already on the branch (retried or update
	// submission) contributes its hash so the write is an update, not a
	// conflicting create; not-found is the normal new-file case.
	filePath := cfg.FilePath(subdomain)
	steps.Set("create-file", fmt.Sprintf("Creating file: %s...", filePath), StepLoading)
	priorSHA := ""
	if existing, err := e.Hosting.GetFileContent(ctx, login, cfg.UpstreamRepo, filePath, branch); err == nil {
		priorSHA = existing.SHA
		steps.Set("create-file", "File exists, updating with new content", StepLoading)
	}

	content, err := data.MarshalRegistryFile()
	if err != nil {
		return fail("create-file", errors.Wrap(err, "encoding registry file"))
	}
	commitMsg := fmt.Sprintf("%s %s", action, fqdn)
	if err := e.Hosting.CreateOrUpdateFile(ctx, login, cfg.UpstreamRepo, filePath, branch, commitMsg, content, priorSHA); err != nil {
		return fail("create-file", errors.Wrap(err, "failed to create file in fork"))
	}
	steps.Set("create-file", "File created successfully", StepComplete)

	steps.Set("create-pr", "Creating pull request...", StepLoading)
	body := BuildPullRequestBody(cfg, subdomain, data, screenshotURL, action == "Update")
	pr, err := RetryWithBackoff(ctx, e.BranchPolicy, func(attempt int, err error) {
		steps.Set("create-pr", fmt.Sprintf("Failed to create pull request (attempt %d of %d), retrying...", attempt, e.BranchPolicy.MaxAttempts), StepLoading)
	}, func() (*PullRequest, error) {
		return e.Hosting.CreatePullRequest(ctx, cfg.UpstreamOwner, cfg.UpstreamRepo, commitMsg, login+":"+branch, baseBranch, body)
	})
	if err != nil {
		return fail("create-pr", errors.Wrap(err, "failed to create pull request"))
	}
	steps.Set("create-pr", fmt.Sprintf("Pull request created successfully: #%d", pr.Number), StepComplete)

	return &RegisterResult{URL: pr.URL, Steps: steps.Steps()}, nil
}

// uploadScreenshot runs the conditional screenshot step. Failure is a
// step-level warning, never fatal: the registration proceeds without an
// embedded preview. Email-only record sets skip the step entirely.
func (e *Engine) uploadScreenshot(ctx context.Context, steps *StepLog, login, subdomain string, data *DomainData, shot *Screenshot) string {
	if shot == nil || len(shot.Data) == 0 || e.Artifacts == nil || data.Record.EmailOnly() {
		return ""
	}

	steps.Set("screenshot", "Uploading screenshot...", StepLoading)
	if err := e.Artifacts.Ensure(ctx, login); err != nil {
		e.Log.WithError(err).Warn("screenshot store unavailable, continuing without preview")
		steps.Set("screenshot", "Failed to upload screenshot", StepError)
		return ""
	}

	ext := path.Ext(shot.Name)
	if ext == "" {
		ext = ".png"
	}
	filename := fmt.Sprintf("%s-%d%s", subdomain, e.now().UnixMilli(), ext)

	url, err := e.Artifacts.Upload(ctx, login, filename, shot.Data)
	if err != nil {
		e.Log.WithError(err).Warn("screenshot upload failed, continuing without preview")
		steps.Set("screenshot", "Failed to upload screenshot", StepError)
		return ""
	}
	steps.Set("screenshot", "Screenshot uploaded successfully", StepComplete)
	return url
}

// BuildPullRequestBody renders the structured pull request body: registration
// statement, optional detail lines, optional preview image, acknowledgment
// checklist.
func BuildPullRequestBody(cfg RegistryConfig, subdomain string, data *DomainData, screenshotURL string, update bool) string {
	fqdn := cfg.FQDN(subdomain)

	var b strings.Builder
	b.WriteString("## Domain Registration\n\n")
	if update {
		fmt.Fprintf(&b, "I'd like to update `%s`.\n\n", fqdn)
	} else {
		fmt.Fprintf(&b, "I'd like to register `%s`.\n\n", fqdn)
	}

	details := ""
	if data.Description != "" {
		details += fmt.Sprintf("- **Description**: %s\n", data.Description)
	}
	if data.Repo != "" {
		details += fmt.Sprintf("- **Repository**: %s\n", data.Repo)
	}
	if details != "" {
		b.WriteString(details)
		b.WriteString("\n")
	}

	if screenshotURL != "" {
		fmt.Fprintf(&b, "\n## Website Preview\n\n![%s Screenshot](%s)\n", fqdn, screenshotURL)
	}

	fmt.Fprintf(&b, "\n## Checklist\n\n- [x] I've read the [documentation](https://%[1]s/docs)\n- [x] I've verified that my domain adheres to the [domain structure](https://%[1]s/docs/#domain-structure)\n- [x] I've verified that my JSON file is valid", cfg.ParentDomain)

	return b.String()
}

func (e *Engine) applyDefaults() {
	if e.Log == nil {
		e.Log = logrus.StandardLogger()
	}
	if e.VerifyPolicy.MaxAttempts == 0 {
		e.VerifyPolicy = ForkVerifyPolicy()
	}
	if e.BranchPolicy.MaxAttempts == 0 {
		e.BranchPolicy = BranchCreatePolicy()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.sleep == nil {
		e.sleep = sleepCtx
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
