// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InteractiveKind enumerates the supported widget types. The set is closed;
// anything else coming back from the AI is rejected.
type InteractiveKind string

const (
	InteractiveCalculator InteractiveKind = "calculator"
	InteractiveQuiz       InteractiveKind = "quiz"
	InteractiveComparison InteractiveKind = "comparison"
	InteractiveChecklist  InteractiveKind = "checklist"
)

// ValidInteractiveKind reports whether k is one of the supported kinds.
func ValidInteractiveKind(k InteractiveKind) bool {
	switch k {
	case InteractiveCalculator, InteractiveQuiz, InteractiveComparison, InteractiveChecklist:
		return true
	}
	return false
}

// InteractiveBlock is an optional structured widget attached to a content
// item. Config holds the kind-specific payload as raw JSON.
type InteractiveBlock struct {
	ID        uuid.UUID       `json:"id"`
	ContentID uuid.UUID       `json:"content_id"`
	Kind      InteractiveKind `json:"kind"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
}
