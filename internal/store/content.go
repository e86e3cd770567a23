// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the persistence layer. Each entity gets its own
// store type over a shared *sql.DB; queries are plain SQL against Postgres.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autopress/internal/models"
)

// ContentStore handles all content-related database operations.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, topic, title, slug, body, keywords, outline,
	meta_description, thumbnail_url, category_id, author_id, status,
	published_at, created_at, updated_at`

// scanContent scans a row into a Content struct, decoding the JSONB columns.
func scanContent(scanner interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	var keywords, outline []byte
	err := scanner.Scan(
		&c.ID, &c.Topic, &c.Title, &c.Slug, &c.Body, &keywords, &outline,
		&c.MetaDescription, &c.ThumbnailURL, &c.CategoryID, &c.AuthorID,
		&c.Status, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &c.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords: %w", err)
		}
	}
	if len(outline) > 0 {
		if err := json.Unmarshal(outline, &c.Outline); err != nil {
			return nil, fmt.Errorf("decode outline: %w", err)
		}
	}
	return &c, nil
}

// encodeJSON marshals v for a JSONB column, mapping empty to SQL NULL.
func encodeJSON(v any) (any, error) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
	case []models.OutlineSection:
		if len(t) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Create inserts a new content item and returns it with the generated ID.
func (s *ContentStore) Create(c *models.Content) (*models.Content, error) {
	keywords, err := encodeJSON(c.Keywords)
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}
	outline, err := encodeJSON(c.Outline)
	if err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO content (topic, title, slug, body, keywords, outline,
		                     meta_description, thumbnail_url, category_id,
		                     author_id, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+contentColumns,
		c.Topic, c.Title, c.Slug, c.Body, keywords, outline,
		c.MetaDescription, c.ThumbnailURL, c.CategoryID,
		c.AuthorID, c.Status, c.PublishedAt,
	)
	result, err := scanContent(row)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// Update persists all mutable fields of a content item.
func (s *ContentStore) Update(c *models.Content) error {
	// If transitioning to published and no published_at set, set it now.
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	keywords, err := encodeJSON(c.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	outline, err := encodeJSON(c.Outline)
	if err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE content SET
			topic = $1, title = $2, slug = $3, body = $4, keywords = $5,
			outline = $6, meta_description = $7, thumbnail_url = $8,
			category_id = $9, status = $10, published_at = $11,
			updated_at = NOW()
		WHERE id = $12
	`, c.Topic, c.Title, c.Slug, c.Body, keywords, outline,
		c.MetaDescription, c.ThumbnailURL, c.CategoryID,
		c.Status, c.PublishedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// FindByID retrieves a content item by its UUID. Returns nil if not found.
func (s *ContentStore) FindByID(id uuid.UUID) (*models.Content, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE id = $1`, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a content item by its slug. Returns nil if not found.
func (s *ContentStore) FindBySlug(slug string) (*models.Content, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE slug = $1`, slug)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// SlugExists reports whether any content item already uses the given slug.
func (s *ContentStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM content WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// List returns content items ordered by creation date descending.
func (s *ContentStore) List(limit int) ([]models.Content, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT `+contentColumns+` FROM content
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListTitles returns the titles of all content items, newest first. The
// pipeline feeds these to topic selection so new articles avoid overlap.
func (s *ContentStore) ListTitles() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT title FROM content
		WHERE title <> ''
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// Delete removes a content item by ID. Assets and interactive blocks go
// with it (ON DELETE CASCADE).
func (s *ContentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}
