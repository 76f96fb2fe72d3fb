package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin account, a small category tree, and a handful of sample posts.
// No-op when users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Default admin. 2FA is not enabled; they must enroll on first login.
	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, 'admin', FALSE)
		RETURNING id
	`, "admin@promptdeck.local", string(hash), "Admin").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Category tree: two roots, one child.
	var artID, techID, paintingID string
	if err := db.QueryRow(`
		INSERT INTO categories (name, slug, description)
		VALUES ('Art', 'art', 'Visual art prompts') RETURNING id
	`).Scan(&artID); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := db.QueryRow(`
		INSERT INTO categories (name, slug, description)
		VALUES ('Tech', 'tech', 'Engineering prompts') RETURNING id
	`).Scan(&techID); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id)
		VALUES ('Painting', 'painting', 'Painting styles', $1) RETURNING id
	`, artID).Scan(&paintingID); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	// Sample posts spanning both categories and both tiers.
	posts := []struct {
		title, slug, description, content string
		premium                           bool
		views                             int
		category                          string
	}{
		{"Sunset Painting", "sunset-painting", "A warm landscape study prompt", "Paint a sunset over water...", false, 10, artID},
		{"Sunset Code", "sunset-code", "Generate gradient palettes in code", "Write a shader that...", true, 50, techID},
		{"Oil Portrait Basics", "oil-portrait-basics", "Classical portrait prompt", "Start with a burnt umber underpainting...", false, 25, paintingID},
	}
	for _, p := range posts {
		if _, err := db.Exec(`
			INSERT INTO posts (title, slug, description, content, premium, published, status, view_count, author_id, category_id)
			VALUES ($1, $2, $3, $4, $5, TRUE, 'approved', $6, $7, $8)
		`, p.title, p.slug, p.description, p.content, p.premium, p.views, adminID, p.category); err != nil {
			return fmt.Errorf("seed insert post %q: %w", p.slug, err)
		}
	}

	slog.Info("database seeded with default admin and sample content",
		"email", "admin@promptdeck.local",
		"password", "admin",
	)
	return nil
}
