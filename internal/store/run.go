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

// RunStore manages pipeline run records in the database.
type RunStore struct {
	db *sql.DB
}

// NewRunStore returns a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

const runColumns = `id, status, log, topic, content_id, completed_at, created_at`

// scanRun scans a row into a Run struct.
func scanRun(scanner interface{ Scan(...any) error }) (*models.Run, error) {
	var r models.Run
	err := scanner.Scan(
		&r.ID, &r.Status, &r.Log, &r.Topic,
		&r.ContentID, &r.CompletedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new run record in searching status and returns it.
func (s *RunStore) Create() (*models.Run, error) {
	row := s.db.QueryRow(`
		INSERT INTO runs (status, log)
		VALUES ($1, '')
		RETURNING ` + runColumns,
		models.RunStatusSearching,
	)
	r, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

// FindByID retrieves a run by ID. Returns nil if not found.
func (s *RunStore) FindByID(id uuid.UUID) (*models.Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find run by id: %w", err)
	}
	return r, nil
}

// List returns run records ordered by creation date descending.
func (s *RunStore) List(limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT `+runColumns+` FROM runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var items []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// SetStatus advances the run to a new status. Topic is recorded when the
// pipeline has chosen one.
func (s *RunStore) SetStatus(id uuid.UUID, status models.RunStatus, topic *string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = $1, topic = COALESCE($2, topic) WHERE id = $3
	`, status, topic, id)
	if err != nil {
		return fmt.Errorf("set run status: %w", err)
	}
	return nil
}

// AppendLog appends one line to the run's log. The log only ever grows;
// the append happens in SQL so concurrent writers never lose lines.
func (s *RunStore) AppendLog(id uuid.UUID, line string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET log = CASE WHEN log = '' THEN $1 ELSE log || E'\n' || $1 END
		WHERE id = $2
	`, line, id)
	if err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	return nil
}

// Complete marks the run terminal with the given outcome, linking the
// produced content item when there is one.
func (s *RunStore) Complete(id uuid.UUID, status models.RunStatus, contentID *uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = $1, content_id = $2, completed_at = NOW()
		WHERE id = $3
	`, status, contentID, id)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}
