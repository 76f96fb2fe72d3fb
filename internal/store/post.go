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
	"promptdeck/internal/query"
)

// PostStore handles all post-related database operations. Listing
// queries take a compiled filter from the query package; the store only
// contributes projection, ordering, and pagination.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// Projections. Listings never fetch the content body; detail and admin
// reads take the full row.
const (
	postListColumns = `p.id, p.title, p.slug, p.description, p.media_id, p.premium,
		p.published, p.status, p.view_count, p.author_id, p.category_id,
		p.created_at, p.updated_at`
	postFullColumns = postListColumns + `, p.content`

	// RETURNING clause variant without the table alias.
	postReturningColumns = `id, title, slug, description, media_id, premium,
		published, status, view_count, author_id, category_id,
		created_at, updated_at, content`
)

func scanPostList(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.MediaID, &p.Premium,
		&p.Published, &p.Status, &p.ViewCount, &p.AuthorID, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPostFull(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.MediaID, &p.Premium,
		&p.Published, &p.Status, &p.ViewCount, &p.AuthorID, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt, &p.Content,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns one page of posts matching the compiled filter, with
// tags attached, using the list projection.
func (s *PostStore) List(f query.Compiled, orderBy string, limit, offset int) ([]models.Post, error) {
	sqlText := fmt.Sprintf(
		`SELECT %s FROM posts p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		postListColumns, f.Where, orderBy, len(f.Args)+1, len(f.Args)+2,
	)
	args := append(append([]any{}, f.Args...), limit, offset)

	rows, err := s.db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPostList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachTags(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of posts matching the compiled filter.
func (s *PostStore) Count(f query.Compiled) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p WHERE `+f.Where, f.Args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// FindBySlug retrieves a post by slug with the full projection and its
// tags. Returns nil if not found.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	p, err := scanPostFull(s.db.QueryRow(
		`SELECT `+postFullColumns+` FROM posts p WHERE p.slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}

	single := []models.Post{*p}
	if err := s.attachTags(single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// FindByID retrieves a post by UUID with the full projection. Returns
// nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPostFull(s.db.QueryRow(
		`SELECT `+postFullColumns+` FROM posts p WHERE p.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}

	single := []models.Post{*p}
	if err := s.attachTags(single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// Related returns up to limit public posts in the same category,
// excluding the post itself, ordered by engagement then recency.
func (s *PostStore) Related(categoryID uuid.UUID, exclude uuid.UUID, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postListColumns+` FROM posts p
		WHERE p.category_id = $1 AND p.id <> $2
		  AND p.published AND p.status = 'approved'
		ORDER BY p.view_count DESC, p.created_at DESC, p.id
		LIMIT $3
	`, categoryID, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("related posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPostList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// Create inserts a new post and returns it with the generated ID.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	created, err := scanPostFull(s.db.QueryRow(`
		INSERT INTO posts (title, slug, description, content, media_id, premium,
		                   published, status, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+postReturningColumns,
		p.Title, p.Slug, p.Description, p.Content, p.MediaID, p.Premium,
		p.Published, p.Status, p.AuthorID, p.CategoryID))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update modifies an existing post. The view counter and author are not
// touched here.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, description = $3, content = $4, media_id = $5,
			premium = $6, published = $7, status = $8, category_id = $9,
			updated_at = NOW()
		WHERE id = $10
	`, p.Title, p.Slug, p.Description, p.Content, p.MediaID,
		p.Premium, p.Published, p.Status, p.CategoryID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// UpdateStatus moves a post through the moderation workflow.
func (s *PostStore) UpdateStatus(id uuid.UUID, status models.PostStatus) error {
	_, err := s.db.Exec(
		`UPDATE posts SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Join rows (tags, bookmarks, favorites)
// cascade in the database.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IncrementViews bumps the engagement counter for a post. Called on
// every detail read; last-writer-wins is fine because the increment
// happens in the database.
func (s *PostStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// ReplaceTags sets the full tag list for a post inside a transaction.
func (s *PostStore) ReplaceTags(postID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, tagID); err != nil {
			return fmt.Errorf("insert post tag: %w", err)
		}
	}
	return tx.Commit()
}

// attachTags loads tags for all posts in one query and distributes them.
func (s *PostStore) attachTags(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	placeholders := make([]string, len(posts))
	args := make([]any, len(posts))
	for i := range posts {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = posts[i].ID
	}

	rows, err := s.db.Query(`
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY t.name
	`, args...)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	byPost := make(map[uuid.UUID][]models.Tag)
	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		byPost[postID] = append(byPost[postID], t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
	}
	return nil
}
