// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"promptdeck/internal/models"
)

// maxImportSize caps the uploaded CSV (5 MB, thousands of rows).
const maxImportSize = 5 << 20

// importColumns is the required CSV header, in order.
var importColumns = []string{"title", "slug", "description", "content", "category", "premium", "tags"}

// ImportPosts handles POST /api/admin/posts/import: bulk-creates posts
// from an uploaded CSV. Rows are processed independently; a bad row is
// reported and skipped, the rest still import. Imported posts land as
// drafts so the moderation flow stays the single path to publication.
//
// Columns: title, slug (blank to derive from title), description,
// content, category (slug, blank for none), premium (true/false),
// tags (pipe-separated).
func (a *Admin) ImportPosts(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize+1024)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 5 MB")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondValidationError(w, map[string]string{"file": "no file provided"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		respondValidationError(w, map[string]string{"file": "empty or unreadable CSV"})
		return
	}
	if !validImportHeader(header) {
		respondValidationError(w, map[string]string{
			"file": "header must be: " + strings.Join(importColumns, ","),
		})
		return
	}

	var imported int
	var rowErrors []string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if err := a.importRow(record, sess.UserID); err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		imported++
	}

	if imported > 0 {
		a.catalog.InvalidateListings(r.Context())
		a.catalog.InvalidateTags(r.Context())
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"imported": imported,
		"errors":   rowErrors,
	})
}

// importRow creates one draft post from a CSV record.
func (a *Admin) importRow(record []string, authorID uuid.UUID) error {
	if len(record) != len(importColumns) {
		return fmt.Errorf("expected %d columns, got %d", len(importColumns), len(record))
	}

	title := strings.TrimSpace(record[0])
	rawSlug := strings.TrimSpace(record[1])
	description := record[2]
	content := record[3]
	categorySlug := strings.TrimSpace(record[4])
	premium := strings.EqualFold(strings.TrimSpace(record[5]), "true")
	tagNames := splitTags(record[6])

	if fields := validatePost(title, rawSlug, description, content, tagNames); fields != nil {
		for field, msg := range fields {
			return fmt.Errorf("%s: %s", field, msg)
		}
	}

	post := &models.Post{
		Title:       title,
		Description: description,
		Content:     content,
		Premium:     premium,
		Status:      models.PostStatusDraft,
		AuthorID:    authorID,
	}

	if categorySlug != "" {
		cat, err := a.categories.FindBySlug(categorySlug)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("category: %q does not exist", categorySlug)
		}
		post.CategoryID = &cat.ID
	}

	postSlug, err := a.uniquePostSlug(rawSlug, title, uuid.Nil)
	if err != nil {
		return err
	}
	post.Slug = postSlug

	created, err := a.posts.Create(post)
	if err != nil {
		return err
	}
	return a.applyTags(created.ID, tagNames)
}

// splitTags splits a pipe-separated tag cell, dropping empties.
func splitTags(cell string) []string {
	var tags []string
	for _, t := range strings.Split(cell, "|") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// validImportHeader checks the CSV header matches the expected columns,
// case-insensitively.
func validImportHeader(header []string) bool {
	if len(header) != len(importColumns) {
		return false
	}
	for i, col := range importColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return false
		}
	}
	return true
}
