// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"promptdeck/internal/models"
	"promptdeck/internal/storage"
	"promptdeck/internal/store"
)

// maxUploadSize is the maximum allowed media upload size (10 MB).
// Marketplace media is cover images, not originals.
const maxUploadSize = 10 << 20

// allowedMediaTypes defines MIME types accepted for upload.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// Media groups the admin media handlers. All endpoints require an
// authenticated admin; when object storage is not configured they
// answer 503 rather than failing at startup.
type Media struct {
	media   *store.MediaStore
	storage *storage.Client
}

// NewMedia creates a new Media handler group. storageClient may be nil.
func NewMedia(media *store.MediaStore, storageClient *storage.Client) *Media {
	return &Media{media: media, storage: storageClient}
}

// Upload handles POST /api/admin/media: multipart file upload to the
// media bucket plus a metadata row in PostgreSQL.
func (m *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if m.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	sess := sessionFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondValidationError(w, map[string]string{"file": "no file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		respondInternalError(w, "media read failed", err)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	// DetectContentType reports SVGs as XML or plain text.
	if strings.HasSuffix(strings.ToLower(header.Filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}

	if !allowedMediaTypes[contentType] {
		respondValidationError(w, map[string]string{"file": fmt.Sprintf("file type %q is not allowed", contentType)})
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondInternalError(w, "media seek failed", err)
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		respondInternalError(w, "media read failed", err)
		return
	}

	// Key files by year/month so buckets stay browsable.
	now := time.Now()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New().String()
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	if err := m.storage.Upload(r.Context(), key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		respondInternalError(w, "media upload failed", err)
		return
	}

	created, err := m.media.Create(&models.Media{
		Filename:   fileID + ext,
		StorageKey: key,
		MimeType:   contentType,
		SizeBytes:  int64(len(fileBytes)),
		UploadedBy: sess.UserID,
	})
	if err != nil {
		respondInternalError(w, "media metadata insert failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"media": map[string]any{
			"id":       created.ID,
			"url":      m.storage.FileURL(created.StorageKey),
			"filename": header.Filename,
			"size":     created.SizeBytes,
			"type":     created.MimeType,
		},
	})
}

// Delete handles DELETE /api/admin/media/{id}: removes the metadata row
// and then the object itself. The S3 delete is best-effort; an orphaned
// object is cheaper than a dangling database row.
func (m *Media) Delete(w http.ResponseWriter, r *http.Request) {
	if m.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid media id"})
		return
	}

	media, err := m.media.FindByID(id)
	if err != nil {
		respondInternalError(w, "media lookup failed", err)
		return
	}
	if media == nil {
		respondError(w, http.StatusNotFound, "media not found")
		return
	}

	if err := m.media.Delete(id); err != nil {
		respondInternalError(w, "media delete failed", err)
		return
	}

	if err := m.storage.Delete(r.Context(), media.StorageKey); err != nil {
		slog.Warn("s3 object delete failed", "error", err, "key", media.StorageKey)
	}

	respondJSON(w, http.StatusOK, nil)
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
