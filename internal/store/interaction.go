// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"promptdeck/internal/models"
)

// InteractionStore manages a user↔post toggle table. Bookmarks and
// favorites share the exact same shape and semantics, so one store
// serves both, parameterized by table name.
type InteractionStore struct {
	db    *sql.DB
	table string // "bookmarks" or "favorites", never caller-supplied
}

// NewBookmarkStore returns the store for the bookmarks table.
func NewBookmarkStore(db *sql.DB) *InteractionStore {
	return &InteractionStore{db: db, table: "bookmarks"}
}

// NewFavoriteStore returns the store for the favorites table.
func NewFavoriteStore(db *sql.DB) *InteractionStore {
	return &InteractionStore{db: db, table: "favorites"}
}

// Toggle flips the saved state for (userID, postID) and reports the new
// state. The unique (user_id, post_id) index is the concurrency guard:
// a concurrent duplicate insert conflicts and falls through to the
// delete branch, so double toggles resolve without application locks.
func (s *InteractionStore) Toggle(userID, postID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO `+s.table+` (user_id, post_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID)
	if err != nil {
		return false, fmt.Errorf("toggle %s insert: %w", s.table, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle %s: %w", s.table, err)
	}
	if inserted == 1 {
		return true, nil
	}

	// Already present: this toggle turns it off.
	if _, err := s.db.Exec(
		`DELETE FROM `+s.table+` WHERE user_id = $1 AND post_id = $2`,
		userID, postID); err != nil {
		return false, fmt.Errorf("toggle %s delete: %w", s.table, err)
	}
	return false, nil
}

// Exists reports whether the pair is currently saved.
func (s *InteractionStore) Exists(userID, postID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM `+s.table+` WHERE user_id = $1 AND post_id = $2)`,
		userID, postID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s exists: %w", s.table, err)
	}
	return exists, nil
}

// FilterByUser returns, for one batch of post IDs, the subset the user
// has saved. This is the interaction annotator's single per-request
// lookup; it runs only for authenticated callers.
func (s *InteractionStore) FilterByUser(userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(postIDs) == 0 {
		return map[uuid.UUID]bool{}, nil
	}

	placeholders := make([]string, len(postIDs))
	args := make([]any, 0, len(postIDs)+1)
	args = append(args, userID)
	for i, id := range postIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	rows, err := s.db.Query(
		`SELECT post_id FROM `+s.table+
			` WHERE user_id = $1 AND post_id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("%s filter by user: %w", s.table, err)
	}
	defer rows.Close()

	saved := make(map[uuid.UUID]bool, len(postIDs))
	for rows.Next() {
		var postID uuid.UUID
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		saved[postID] = true
	}
	return saved, rows.Err()
}

// PostsForUser returns one page of the user's saved posts, newest save
// first, plus the total saved count.
func (s *InteractionStore) PostsForUser(userID uuid.UUID, limit, offset int) ([]models.Post, int, error) {
	rows, err := s.db.Query(`
		SELECT `+postListColumns+` FROM `+s.table+` i
		JOIN posts p ON p.id = i.post_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s posts for user: %w", s.table, err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPostList(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM `+s.table+` WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return posts, total, nil
}
