// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"autopress/internal/models"
)

// InteractiveStore manages interactive widget records in the database.
type InteractiveStore struct {
	db *sql.DB
}

// NewInteractiveStore returns a new InteractiveStore.
func NewInteractiveStore(db *sql.DB) *InteractiveStore {
	return &InteractiveStore{db: db}
}

const interactiveColumns = `id, content_id, kind, config, created_at`

// Create inserts a new interactive block and returns it.
func (s *InteractiveStore) Create(b *models.InteractiveBlock) (*models.InteractiveBlock, error) {
	result := &models.InteractiveBlock{}
	err := s.db.QueryRow(`
		INSERT INTO interactive_blocks (content_id, kind, config)
		VALUES ($1, $2, $3)
		RETURNING `+interactiveColumns,
		b.ContentID, b.Kind, []byte(b.Config),
	).Scan(
		&result.ID, &result.ContentID, &result.Kind,
		(*[]byte)(&result.Config), &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create interactive block: %w", err)
	}
	return result, nil
}

// FindByContent retrieves the interactive block attached to a content item.
// Returns nil if the content has none.
func (s *InteractiveStore) FindByContent(contentID uuid.UUID) (*models.InteractiveBlock, error) {
	b := &models.InteractiveBlock{}
	err := s.db.QueryRow(`
		SELECT `+interactiveColumns+` FROM interactive_blocks
		WHERE content_id = $1
	`, contentID).Scan(
		&b.ID, &b.ContentID, &b.Kind, (*[]byte)(&b.Config), &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find interactive block: %w", err)
	}
	return b, nil
}

// Delete removes an interactive block by ID.
func (s *InteractiveStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM interactive_blocks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete interactive block: %w", err)
	}
	return nil
}
