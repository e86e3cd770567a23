// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Asset is one generated image belonging to a content item. The row is
// created before generation is attempted, reserving the position; URL and
// alt text are filled in once the upload succeeds. URL stays nil when
// generation or upload failed.
type Asset struct {
	ID        uuid.UUID `json:"id"`
	ContentID uuid.UUID `json:"content_id"`
	Prompt    string    `json:"prompt"`
	Position  int       `json:"position"`
	URL       *string   `json:"url,omitempty"`
	AltText   *string   `json:"alt_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Uploaded returns true once the asset has a public storage reference.
func (a *Asset) Uploaded() bool {
	return a.URL != nil && *a.URL != ""
}
