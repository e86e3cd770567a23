// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ScheduleConfig is the singleton row governing the autonomous scheduler.
// Mutating it only takes effect after the scheduler reconciles.
type ScheduleConfig struct {
	IntervalMinutes int        `json:"interval_minutes"`
	IsActive        bool       `json:"is_active"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
