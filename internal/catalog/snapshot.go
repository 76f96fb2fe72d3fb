// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"github.com/google/uuid"

	"promptdeck/internal/models"
)

// snapshot indexes one read of the category tree for slug resolution
// during filter parsing. It is rebuilt from the cached tree per request,
// so a request sees a single consistent view of the hierarchy.
type snapshot struct {
	bySlug     map[string]*models.Category
	childrenOf map[uuid.UUID][]models.Category
}

// BySlug implements query.CategoryResolver.
func (s *snapshot) BySlug(slug string) (*models.Category, bool) {
	c, ok := s.bySlug[slug]
	return c, ok
}

// ChildrenOf implements query.CategoryResolver.
func (s *snapshot) ChildrenOf(id uuid.UUID) []models.Category {
	return s.childrenOf[id]
}

// categorySnapshot builds the resolver from the cached category tree.
func (s *Service) categorySnapshot(ctx context.Context) (*snapshot, error) {
	tree, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return buildSnapshot(tree), nil
}

func buildSnapshot(tree []models.Category) *snapshot {
	snap := &snapshot{
		bySlug:     make(map[string]*models.Category),
		childrenOf: make(map[uuid.UUID][]models.Category),
	}
	for i := range tree {
		root := &tree[i]
		snap.bySlug[root.Slug] = root
		snap.childrenOf[root.ID] = root.Children
		for j := range root.Children {
			child := &root.Children[j]
			snap.bySlug[child.Slug] = child
		}
	}
	return snap
}
