package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"promptdeck/internal/models"
)

// MediaStore tracks uploaded files; the bytes live in object storage.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore returns a new MediaStore.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

const mediaColumns = `id, filename, storage_key, mime_type, size_bytes, uploaded_by, created_at`

func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	m := &models.Media{}
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.StorageKey, &m.MimeType, &m.SizeBytes, &m.UploadedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create records an uploaded file.
func (s *MediaStore) Create(m *models.Media) (*models.Media, error) {
	created, err := scanMedia(s.db.QueryRow(`
		INSERT INTO media (filename, storage_key, mime_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+mediaColumns,
		m.Filename, m.StorageKey, m.MimeType, m.SizeBytes, m.UploadedBy))
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// FindByID retrieves a media record. Returns nil if not found.
func (s *MediaStore) FindByID(id uuid.UUID) (*models.Media, error) {
	m, err := scanMedia(s.db.QueryRow(
		`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// Delete removes a media record. The object itself is deleted by the
// storage client, not here.
func (s *MediaStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
