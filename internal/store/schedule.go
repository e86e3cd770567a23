// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"autopress/internal/models"
)

// ScheduleStore manages the singleton scheduler configuration row.
type ScheduleStore struct {
	db *sql.DB
}

// NewScheduleStore returns a new ScheduleStore.
func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Get returns the scheduler configuration. The row is seeded by the
// migrations, so a missing row is an error rather than nil.
func (s *ScheduleStore) Get() (*models.ScheduleConfig, error) {
	c := &models.ScheduleConfig{}
	err := s.db.QueryRow(`
		SELECT interval_minutes, is_active, last_run_at, updated_at
		FROM schedule_config WHERE id = 1
	`).Scan(&c.IntervalMinutes, &c.IsActive, &c.LastRunAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get schedule config: %w", err)
	}
	return c, nil
}

// Update persists a new interval and active flag. Takes effect once the
// scheduler reconciles against the stored config.
func (s *ScheduleStore) Update(intervalMinutes int, isActive bool) (*models.ScheduleConfig, error) {
	if intervalMinutes < 1 {
		return nil, fmt.Errorf("update schedule config: interval must be at least 1 minute")
	}

	c := &models.ScheduleConfig{}
	err := s.db.QueryRow(`
		UPDATE schedule_config SET interval_minutes = $1, is_active = $2, updated_at = NOW()
		WHERE id = 1
		RETURNING interval_minutes, is_active, last_run_at, updated_at
	`, intervalMinutes, isActive).Scan(
		&c.IntervalMinutes, &c.IsActive, &c.LastRunAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update schedule config: %w", err)
	}
	return c, nil
}

// SetLastRun records when the scheduler last fired. Overlapping runs each
// write their own start time; the latest write wins.
func (s *ScheduleStore) SetLastRun(t time.Time) error {
	_, err := s.db.Exec(`UPDATE schedule_config SET last_run_at = $1 WHERE id = 1`, t)
	if err != nil {
		return fmt.Errorf("set last run: %w", err)
	}
	return nil
}
