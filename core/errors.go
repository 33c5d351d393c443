// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by hosting adapters for missing files, refs and
	// repositories. A missing registry file is a normal negative result, not a
	// failure.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is the structured form of the hosting platform's
	// "already exists" conflict. The workflow routes it to the success path.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAuthenticationRequired means no user credential is available. Fatal
	// for the current attempt; the caller must log in again.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrIdentityUnresolved means a credential is present but no stable
	// account handle could be obtained. Remediation is re-consenting to the
	// missing grant, not a fresh login, hence the distinct error.
	ErrIdentityUnresolved = errors.New("authenticated identity could not be resolved")
)

// WorkflowError is the terminal failure of a registration attempt. It names
// the step that failed and carries the accumulated step log for diagnostics.
type WorkflowError struct {
	StepID string
	Steps  []ProgressStep
	Err    error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("registration failed at step %s: %v", e.StepID, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }
