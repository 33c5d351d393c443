// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

// StepStatus is the lifecycle state of one workflow step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepLoading  StepStatus = "loading"
	StepComplete StepStatus = "complete"
	StepError    StepStatus = "error"
)

// ProgressStep is an immutable snapshot of one step. Re-emitting the same id
// replaces the prior snapshot in place, so retries never grow the log.
type ProgressStep struct {
	ID      string     `json:"id"`
	Message string     `json:"message"`
	Status  StepStatus `json:"status"`
}

// ProgressFunc observes step snapshots as the workflow advances.
type ProgressFunc func(step ProgressStep)

// StepLog keeps steps in first-insertion order and updates them in place.
// It is owned by a single workflow attempt and needs no locking.
type StepLog struct {
	order   []string
	steps   map[string]ProgressStep
	observe ProgressFunc
}

func NewStepLog(observe ProgressFunc) *StepLog {
	return &StepLog{steps: map[string]ProgressStep{}, observe: observe}
}

// Set records a snapshot for id and notifies the observer.
func (l *StepLog) Set(id, message string, status StepStatus) {
	if _, seen := l.steps[id]; !seen {
		l.order = append(l.order, id)
	}
	step := ProgressStep{ID: id, Message: message, Status: status}
	l.steps[id] = step
	if l.observe != nil {
		l.observe(step)
	}
}

// Steps returns the snapshots in display order.
func (l *StepLog) Steps() []ProgressStep {
	out := make([]ProgressStep, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.steps[id])
	}
	return out
}
