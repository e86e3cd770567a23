// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persistent record types shared by the stores,
// the pipeline, and the HTTP handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus represents the lifecycle state of a content item.
type ContentStatus string

const (
	ContentStatusDraft      ContentStatus = "draft"
	ContentStatusProcessing ContentStatus = "processing"
	ContentStatusReview     ContentStatus = "review"
	ContentStatusPublished  ContentStatus = "published"
)

// OutlineSection is one entry of the planned article structure.
type OutlineSection struct {
	Heading     string   `json:"heading"`
	Subheadings []string `json:"subheadings,omitempty"`
}

// Content is a long-form article produced by the pipeline. Fields are
// populated progressively as stages complete: topic and slug at creation,
// SEO fields after research, title and body after writing, thumbnail and
// category as their stages succeed. Status stays processing for the whole
// run and settles to review (success) or draft (failure).
type Content struct {
	ID              uuid.UUID        `json:"id"`
	Topic           string           `json:"topic"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Body            string           `json:"body"`
	Keywords        []string         `json:"keywords,omitempty"`
	Outline         []OutlineSection `json:"outline,omitempty"`
	MetaDescription *string          `json:"meta_description,omitempty"`
	ThumbnailURL    *string          `json:"thumbnail_url,omitempty"`
	CategoryID      *uuid.UUID       `json:"category_id,omitempty"`
	AuthorID        *uuid.UUID       `json:"author_id,omitempty"`
	Status          ContentStatus    `json:"status"`
	PublishedAt     *time.Time       `json:"published_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// IsPublished returns true if the content item is in published status.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}
