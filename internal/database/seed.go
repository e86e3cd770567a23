// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// defaultCategories gives the pipeline's category stage something to match
// against on a fresh install.
var defaultCategories = []struct {
	name string
	slug string
}{
	{"Technology", "technology"},
	{"Business", "business"},
	{"Lifestyle", "lifestyle"},
	{"Guides", "guides"},
}

// Seed populates the database with initial data. It creates the default
// categories if none exist; everything else is created by the pipeline.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	for _, c := range defaultCategories {
		if _, err := db.Exec(`
			INSERT INTO categories (name, slug) VALUES ($1, $2)
		`, c.name, c.slug); err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.name, err)
		}
	}

	slog.Info("database seeded with default categories", "count", len(defaultCategories))
	return nil
}
