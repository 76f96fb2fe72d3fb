// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"github.com/google/uuid"

	"promptdeck/internal/models"
)

// annotate attaches IsBookmarked/IsFavorited to posts in place using one
// batch query per interaction kind. Anonymous viewers skip the queries
// entirely and keep the zero-value flags. A failed lookup degrades to
// unflagged posts rather than failing the page.
func (s *Service) annotate(posts []models.Post, viewerID *uuid.UUID) {
	if viewerID == nil || len(posts) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	bookmarked, err := s.bookmarks.FilterByUser(*viewerID, ids)
	if err != nil {
		s.logger.Warn("bookmark annotation failed", "user", viewerID, "error", err)
	}
	favorited, err := s.favorites.FilterByUser(*viewerID, ids)
	if err != nil {
		s.logger.Warn("favorite annotation failed", "user", viewerID, "error", err)
	}

	for i := range posts {
		posts[i].IsBookmarked = bookmarked[posts[i].ID]
		posts[i].IsFavorited = favorited[posts[i].ID]
	}
}
