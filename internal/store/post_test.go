// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"promptdeck/internal/models"
	"promptdeck/internal/query"
)

func TestPostStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-create-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	created, err := s.Create(&models.Post{
		Title:       "Test Post",
		Slug:        slug,
		Description: "A description",
		Content:     "Write a story about {{topic}}.",
		Status:      models.PostStatusDraft,
		AuthorID:    authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Status != models.PostStatusDraft {
		t.Errorf("status: got %q, want draft", created.Status)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil || found.Slug != slug {
		t.Fatalf("FindByID: got %+v", found)
	}

	bySlug, err := s.FindBySlug(slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if bySlug == nil || bySlug.ID != created.ID {
		t.Fatalf("FindBySlug: got %+v", bySlug)
	}
}

func TestPostStoreFindMissingIsNil(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	post, err := s.FindBySlug("definitely-not-a-slug-" + uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if post != nil {
		t.Errorf("expected nil for missing post, got %+v", post)
	}
}

func TestPostStoreListPublicOnly(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-hidden-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	// A draft must never surface through the public filter.
	if _, err := s.Create(&models.Post{
		Title: "Hidden Draft", Slug: slug, Content: "x",
		Status: models.PostStatusDraft, AuthorID: authorID,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	compiled := query.Compile(query.PublicOnly{})
	posts, err := s.List(compiled, query.SortLatest.OrderBy(), 100, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range posts {
		if p.Slug == slug {
			t.Error("draft leaked through PublicOnly filter")
		}
		if !p.IsPublic() {
			t.Errorf("non-public post %q in public listing", p.Slug)
		}
	}

	count, err := s.Count(compiled)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count < len(posts) {
		t.Errorf("Count = %d, less than listed %d", count, len(posts))
	}
}

func TestPostStoreTextSearch(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	compiled := query.Compile(query.And{
		Filters: []query.Filter{
			query.PublicOnly{},
			query.TextMatch{Term: "sunset"},
		},
	})
	posts, err := s.List(compiled, query.SortTrending.OrderBy(), 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) < 2 {
		t.Fatalf("search for seeded term matched %d posts, want at least 2", len(posts))
	}
	// Trending: view count descending, seeded counts are distinct.
	if posts[0].ViewCount < posts[1].ViewCount {
		t.Error("trending order not by view count")
	}
}

func TestPostStoreUpdateStatus(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-status-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	created, err := s.Create(&models.Post{
		Title: "Status Test", Slug: slug, Content: "x",
		Status: models.PostStatusPending, AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdateStatus(created.ID, models.PostStatusApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	updated, _ := s.FindByID(created.ID)
	if updated.Status != models.PostStatusApproved {
		t.Errorf("status = %q, want approved", updated.Status)
	}
}

func TestPostStoreIncrementViews(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-views-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	created, err := s.Create(&models.Post{
		Title: "View Test", Slug: slug, Content: "x",
		Status: models.PostStatusApproved, Published: true, AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.IncrementViews(created.ID); err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
	}

	updated, _ := s.FindByID(created.ID)
	if updated.ViewCount != 3 {
		t.Errorf("view count = %d, want 3", updated.ViewCount)
	}
}

func TestPostStoreReplaceTags(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	tags := NewTagStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-tags-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		cleanPosts(t, db, slug)
		db.Exec("DELETE FROM tags WHERE slug LIKE 'test-tag-%'")
	})

	created, err := posts.Create(&models.Post{
		Title: "Tag Test", Slug: slug, Content: "x",
		Status: models.PostStatusDraft, AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, err := tags.Ensure("Test Tag A", "test-tag-a")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	b, err := tags.Ensure("Test Tag B", "test-tag-b")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if err := posts.ReplaceTags(created.ID, []uuid.UUID{a.ID, b.ID}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}
	loaded, _ := posts.FindByID(created.ID)
	if len(loaded.Tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(loaded.Tags))
	}

	// Replacing with a subset removes the rest.
	if err := posts.ReplaceTags(created.ID, []uuid.UUID{b.ID}); err != nil {
		t.Fatalf("ReplaceTags subset: %v", err)
	}
	loaded, _ = posts.FindByID(created.ID)
	if len(loaded.Tags) != 1 || loaded.Tags[0].Slug != "test-tag-b" {
		t.Errorf("after subset replace: %+v", loaded.Tags)
	}

	// Empty list clears.
	if err := posts.ReplaceTags(created.ID, nil); err != nil {
		t.Fatalf("ReplaceTags clear: %v", err)
	}
	loaded, _ = posts.FindByID(created.ID)
	if len(loaded.Tags) != 0 {
		t.Errorf("tags not cleared: %+v", loaded.Tags)
	}
}

func TestPostStoreRelated(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	anchor, err := s.FindBySlug("sunset-painting")
	if err != nil || anchor == nil {
		t.Fatalf("seeded post missing: %v", err)
	}
	if anchor.CategoryID == nil {
		t.Fatal("seeded post has no category")
	}

	related, err := s.Related(*anchor.CategoryID, anchor.ID, 4)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	for _, p := range related {
		if p.ID == anchor.ID {
			t.Error("Related returned the anchor post itself")
		}
	}
}

func TestPostStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	authorID := testAuthorID(t, db)

	slug := "test-del-" + uuid.NewString()[:8]
	created, err := s.Create(&models.Post{
		Title: "Delete Test", Slug: slug, Content: "x",
		Status: models.PostStatusDraft, AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, _ := s.FindByID(created.ID)
	if gone != nil {
		t.Error("post still present after delete")
	}
}
