// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus tracks a pipeline invocation from topic selection to its
// terminal outcome.
type RunStatus string

const (
	RunStatusSearching  RunStatus = "searching"
	RunStatusGenerating RunStatus = "generating"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Run is the audit record for one pipeline invocation, scheduled or manual.
// Log is an append-only sequence of newline-joined timestamped entries;
// the record is never mutated again once completed or failed.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Status      RunStatus  `json:"status"`
	Log         string     `json:"log"`
	Topic       *string    `json:"topic,omitempty"`
	ContentID   *uuid.UUID `json:"content_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Done returns true once the run has reached a terminal status.
func (r *Run) Done() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
