// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"promptdeck/internal/models"
)

// ErrInvalidParent is returned when a category mutation would break the
// single-level hierarchy: the parent must itself be a root category, and
// a category can never parent itself.
var ErrInvalidParent = errors.New("category parent must be an existing root category")

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, created_at, updated_at`

func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	c := &models.Category{}
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all categories with public post counts, ordered by name.
// This is the source of the preloaded snapshot the filter builder uses.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.created_at, c.updated_at,
		       COUNT(p.id) FILTER (WHERE p.published AND p.status = 'approved') AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
			&c.CreatedAt, &c.UpdatedAt, &c.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree returns root categories with their children nested one level deep.
func (s *CategoryStore) Tree() ([]models.Category, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[uuid.UUID][]models.Category)
	for _, c := range flat {
		if c.ParentID != nil {
			childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c)
		}
	}

	var roots []models.Category
	for _, c := range flat {
		if c.ParentID == nil {
			c.Children = childrenOf[c.ID]
			roots = append(roots, c)
		}
	}
	return roots, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category after validating the hierarchy rule.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if err := s.validateParent(c.ParentID, nil); err != nil {
		return nil, err
	}

	created, err := scanCategory(s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Update modifies an existing category after validating the hierarchy rule.
func (s *CategoryStore) Update(c *models.Category) error {
	if err := s.validateParent(c.ParentID, &c.ID); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE categories SET name = $1, slug = $2, description = $3, parent_id = $4,
		       updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.Slug, c.Description, c.ParentID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Posts keep a NULL category; children are
// promoted to roots by the FK's ON DELETE SET NULL.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// validateParent enforces the single-level hierarchy: a parent must
// exist, must itself be a root, and must not be the category itself.
func (s *CategoryStore) validateParent(parentID, selfID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if selfID != nil && *parentID == *selfID {
		return ErrInvalidParent
	}

	parent, err := s.FindByID(*parentID)
	if err != nil {
		return err
	}
	if parent == nil || !parent.IsRoot() {
		return ErrInvalidParent
	}
	return nil
}
