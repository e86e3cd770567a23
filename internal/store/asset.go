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

// AssetStore manages generated image records in the database.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore returns a new AssetStore.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

const assetColumns = `id, content_id, prompt, position, url, alt_text, created_at`

// scanAsset scans a row into an Asset struct.
func scanAsset(scanner interface{ Scan(...any) error }) (*models.Asset, error) {
	var a models.Asset
	err := scanner.Scan(
		&a.ID, &a.ContentID, &a.Prompt, &a.Position,
		&a.URL, &a.AltText, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset row, reserving the position before the image
// itself exists. URL and alt text are filled in later via Update.
func (s *AssetStore) Create(a *models.Asset) (*models.Asset, error) {
	row := s.db.QueryRow(`
		INSERT INTO assets (content_id, prompt, position, url, alt_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+assetColumns,
		a.ContentID, a.Prompt, a.Position, a.URL, a.AltText,
	)
	result, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return result, nil
}

// Update persists the URL and alt text of an asset after upload.
func (s *AssetStore) Update(a *models.Asset) error {
	_, err := s.db.Exec(`
		UPDATE assets SET url = $1, alt_text = $2 WHERE id = $3
	`, a.URL, a.AltText, a.ID)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

// FindByID retrieves an asset by ID. Returns nil if not found.
func (s *AssetStore) FindByID(id uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by id: %w", err)
	}
	return a, nil
}

// ListByContent returns all assets of a content item ordered by position.
func (s *AssetStore) ListByContent(contentID uuid.UUID) ([]models.Asset, error) {
	rows, err := s.db.Query(`
		SELECT `+assetColumns+` FROM assets
		WHERE content_id = $1
		ORDER BY position
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var items []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
