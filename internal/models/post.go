// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the moderation state of a post.
type PostStatus string

const (
	PostStatusDraft    PostStatus = "draft"
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusRejected PostStatus = "rejected"
)

// ValidPostStatus reports whether s is one of the known moderation states.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPending, PostStatusApproved, PostStatusRejected:
		return true
	}
	return false
}

// Post is a marketplace listing. Premium posts stay visible in listings
// for every caller; only the content body is withheld from free-tier
// viewers. That is a presentation policy, not a security boundary.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Content     string     `json:"content,omitempty"`
	ContentHTML string     `json:"content_html,omitempty"`
	MediaID     *uuid.UUID `json:"media_id,omitempty"`
	MediaURL    string     `json:"media_url,omitempty"`
	Premium     bool       `json:"premium"`
	Published   bool       `json:"published"`
	Status      PostStatus `json:"status"`
	ViewCount   int        `json:"view_count"`
	AuthorID    uuid.UUID  `json:"author_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Tags        []Tag      `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Per-viewer interaction flags, attached after the base query.
	// Always false for anonymous callers.
	IsBookmarked bool `json:"is_bookmarked"`
	IsFavorited  bool `json:"is_favorited"`
}

// IsPublic reports whether the post appears on the public surface:
// approved by moderation and flagged published by its author.
func (p *Post) IsPublic() bool {
	return p.Published && p.Status == PostStatusApproved
}

// GateContent clears the content body unless the viewer may read it.
// Authors and admins always see their material; premium posts require a
// premium viewer. The description stays intact as the free preview.
func (p *Post) GateContent(viewer *User) {
	if !p.Premium {
		return
	}
	if viewer != nil && (viewer.HasPremium() || viewer.IsAdmin() || viewer.ID == p.AuthorID) {
		return
	}
	p.Content = ""
	p.ContentHTML = ""
}
