// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"promptdeck/internal/models"
)

// TagStore manages the flat tag vocabulary.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `id, name, slug, created_at`

func scanTag(scanner interface{ Scan(...any) error }) (*models.Tag, error) {
	t := &models.Tag{}
	if err := scanner.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all tags ordered by name.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`SELECT ` + tagColumns + ` FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(slug string) (*models.Tag, error) {
	t, err := scanTag(s.db.QueryRow(
		`SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// Ensure returns the tag with the given name and slug, creating it if
// it does not exist yet. Used by the CSV importer and the post editor.
func (s *TagStore) Ensure(name, slug string) (*models.Tag, error) {
	t, err := scanTag(s.db.QueryRow(`
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = tags.name
		RETURNING `+tagColumns,
		name, slug))
	if err != nil {
		return nil, fmt.Errorf("ensure tag: %w", err)
	}
	return t, nil
}

// Create inserts a new tag.
func (s *TagStore) Create(name, slug string) (*models.Tag, error) {
	t, err := scanTag(s.db.QueryRow(`
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		RETURNING `+tagColumns,
		name, slug))
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

// Delete removes a tag; the post_tags join rows cascade.
func (s *TagStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
