package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"promptdeck/internal/cache"
	"promptdeck/internal/models"
	"promptdeck/internal/query"
)

// fakePosts is a PostReader with canned results and call counters.
type fakePosts struct {
	posts   []models.Post
	total   int
	bySlug  map[string]*models.Post
	related []models.Post

	listCalls  int
	lastFilter query.Compiled
	lastOrder  string
	lastLimit  int
	lastOffset int
	viewBumps  []uuid.UUID
	listErr    error
}

func (f *fakePosts) List(compiled query.Compiled, orderBy string, limit, offset int) ([]models.Post, error) {
	f.listCalls++
	f.lastFilter = compiled
	f.lastOrder = orderBy
	f.lastLimit = limit
	f.lastOffset = offset
	return f.posts, f.listErr
}

func (f *fakePosts) Count(query.Compiled) (int, error) { return f.total, nil }

func (f *fakePosts) FindBySlug(slug string) (*models.Post, error) {
	return f.bySlug[slug], nil
}

func (f *fakePosts) FindByID(id uuid.UUID) (*models.Post, error) {
	for _, p := range f.bySlug {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) Related(uuid.UUID, uuid.UUID, int) ([]models.Post, error) {
	return f.related, nil
}

func (f *fakePosts) IncrementViews(id uuid.UUID) error {
	f.viewBumps = append(f.viewBumps, id)
	return nil
}

// fakeCategories returns a fixed one-level tree.
type fakeCategories struct {
	tree  []models.Category
	calls int
}

func (f *fakeCategories) Tree() ([]models.Category, error) {
	f.calls++
	return f.tree, nil
}

// fakeInteractions marks a fixed set of post IDs as belonging to any user.
type fakeInteractions struct {
	member map[uuid.UUID]bool
	err    error
}

func (f *fakeInteractions) FilterByUser(_ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if f.member[id] {
			out[id] = true
		}
	}
	return out, nil
}

func publicPost(title, slug string) models.Post {
	return models.Post{
		ID:        uuid.New(),
		Title:     title,
		Slug:      slug,
		Published: true,
		Status:    models.PostStatusApproved,
	}
}

func testService(posts *fakePosts, cats *fakeCategories) (*Service, *fakeInteractions, *fakeInteractions) {
	if cats == nil {
		cats = &fakeCategories{}
	}
	bm := &fakeInteractions{member: map[uuid.UUID]bool{}}
	fav := &fakeInteractions{member: map[uuid.UUID]bool{}}
	// nil cache: the layered read degrades to memo + live fetch.
	return NewService(posts, cats, bm, fav, nil, nil), bm, fav
}

func TestListPostsDefaults(t *testing.T) {
	a, b := publicPost("A", "a"), publicPost("B", "b")
	posts := &fakePosts{posts: []models.Post{a, b}, total: 30}
	svc, _, _ := testService(posts, nil)

	listing, err := svc.ListPosts(context.Background(), ListParams{}, nil)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}

	if len(listing.Posts) != 2 {
		t.Fatalf("posts: got %d, want 2", len(listing.Posts))
	}
	if posts.lastLimit != query.DefaultLimit || posts.lastOffset != 0 {
		t.Errorf("limit/offset: got %d/%d, want %d/0", posts.lastLimit, posts.lastOffset, query.DefaultLimit)
	}
	if posts.lastOrder != query.SortLatest.OrderBy() {
		t.Errorf("order: got %q, want latest", posts.lastOrder)
	}

	info := listing.PageInfo
	if info.TotalCount != 30 || info.TotalPages != 3 || info.CurrentPage != 1 {
		t.Errorf("page info: %+v", info)
	}
	if !info.HasNextPage || info.HasPreviousPage {
		t.Errorf("page flags: %+v", info)
	}
}

func TestListPostsRestrictsToPublicPosts(t *testing.T) {
	posts := &fakePosts{}
	svc, _, _ := testService(posts, nil)

	// Even a bare listing must carry the visibility clause.
	if _, err := svc.ListPosts(context.Background(), ListParams{}, nil); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if !strings.Contains(posts.lastFilter.Where, "p.status = 'approved'") {
		t.Errorf("WHERE lacks the visibility restriction: %q", posts.lastFilter.Where)
	}

	// And it survives alongside caller filters.
	if _, err := svc.ListPosts(context.Background(), ListParams{Q: "sunset", Premium: "free"}, nil); err != nil {
		t.Fatalf("ListPosts filtered: %v", err)
	}
	if !strings.Contains(posts.lastFilter.Where, "p.published AND p.status = 'approved'") {
		t.Errorf("filtered WHERE lacks the visibility restriction: %q", posts.lastFilter.Where)
	}
}

func TestListPostsSearchForcesTrendingOrder(t *testing.T) {
	posts := &fakePosts{}
	svc, _, _ := testService(posts, nil)

	// sortBy=latest is overridden while a search term is active.
	_, err := svc.ListPosts(context.Background(), ListParams{Q: "sunset", SortBy: "latest"}, nil)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if posts.lastOrder != query.SortTrending.OrderBy() {
		t.Errorf("order: got %q, want trending", posts.lastOrder)
	}
}

func TestSearchPostsOverridesListQuery(t *testing.T) {
	posts := &fakePosts{}
	svc, _, _ := testService(posts, nil)

	_, err := svc.SearchPosts(context.Background(), "portrait", ListParams{Q: "ignored"}, nil)
	if err != nil {
		t.Fatalf("SearchPosts: %v", err)
	}
	if posts.lastOrder != query.SortTrending.OrderBy() {
		t.Errorf("order: got %q, want trending", posts.lastOrder)
	}
}

func TestListPostsRejectsMalformedCategory(t *testing.T) {
	svc, _, _ := testService(&fakePosts{}, nil)

	_, err := svc.ListPosts(context.Background(), ListParams{Category: "Not A Slug!"}, nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *query.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *query.ValidationError, got %T", err)
	}
	if _, ok := verr.Fields["category"]; !ok {
		t.Errorf("expected category field error, got %v", verr.Fields)
	}
}

func TestListPostsMemoizesWithinRequest(t *testing.T) {
	posts := &fakePosts{posts: []models.Post{publicPost("A", "a")}, total: 1}
	cats := &fakeCategories{}
	svc, _, _ := testService(posts, cats)

	ctx := cache.WithMemo(context.Background())
	for i := 0; i < 3; i++ {
		if _, err := svc.ListPosts(ctx, ListParams{}, nil); err != nil {
			t.Fatalf("ListPosts #%d: %v", i, err)
		}
	}

	if posts.listCalls != 1 {
		t.Errorf("List called %d times within one request, want 1", posts.listCalls)
	}
	if cats.calls != 1 {
		t.Errorf("Tree called %d times within one request, want 1", cats.calls)
	}
}

func TestListPostsAnnotatesViewer(t *testing.T) {
	a, b := publicPost("A", "a"), publicPost("B", "b")
	posts := &fakePosts{posts: []models.Post{a, b}, total: 2}
	svc, bm, fav := testService(posts, nil)
	bm.member[a.ID] = true
	fav.member[b.ID] = true

	viewer := uuid.New()
	listing, err := svc.ListPosts(context.Background(), ListParams{}, &viewer)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}

	if !listing.Posts[0].IsBookmarked || listing.Posts[0].IsFavorited {
		t.Errorf("post a flags: bookmarked=%v favorited=%v", listing.Posts[0].IsBookmarked, listing.Posts[0].IsFavorited)
	}
	if listing.Posts[1].IsBookmarked || !listing.Posts[1].IsFavorited {
		t.Errorf("post b flags: bookmarked=%v favorited=%v", listing.Posts[1].IsBookmarked, listing.Posts[1].IsFavorited)
	}
}

func TestListPostsAnonymousSkipsAnnotation(t *testing.T) {
	a := publicPost("A", "a")
	posts := &fakePosts{posts: []models.Post{a}, total: 1}
	svc, bm, _ := testService(posts, nil)
	bm.member[a.ID] = true

	listing, err := svc.ListPosts(context.Background(), ListParams{}, nil)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if listing.Posts[0].IsBookmarked {
		t.Error("anonymous viewer must not get interaction flags")
	}
}

func TestListPostsAnnotationFailureDegrades(t *testing.T) {
	a := publicPost("A", "a")
	posts := &fakePosts{posts: []models.Post{a}, total: 1}
	svc, bm, _ := testService(posts, nil)
	bm.err = errors.New("valkey down")

	viewer := uuid.New()
	listing, err := svc.ListPosts(context.Background(), ListParams{}, &viewer)
	if err != nil {
		t.Fatalf("ListPosts should not fail on annotation error: %v", err)
	}
	if listing.Posts[0].IsBookmarked {
		t.Error("failed annotation must leave flags false")
	}
}

func TestListPostsCategoryFilterResolvesChildren(t *testing.T) {
	rootID, childID := uuid.New(), uuid.New()
	tree := []models.Category{
		{
			ID: rootID, Name: "Art", Slug: "art",
			Children: []models.Category{
				{ID: childID, Name: "Painting", Slug: "painting", ParentID: &rootID},
			},
		},
	}
	posts := &fakePosts{}
	svc, _, _ := testService(posts, &fakeCategories{tree: tree})

	// A known root slug parses cleanly; an unknown well-formed slug also
	// parses (it matches nothing by design).
	for _, slug := range []string{"art", "painting", "no-such-category"} {
		if _, err := svc.ListPosts(context.Background(), ListParams{Category: slug}, nil); err != nil {
			t.Errorf("category %q: unexpected error %v", slug, err)
		}
	}
}

func TestGetPostBySlugNotFound(t *testing.T) {
	svc, _, _ := testService(&fakePosts{bySlug: map[string]*models.Post{}}, nil)

	post, err := svc.GetPostBySlug(context.Background(), "missing", nil)
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if post != nil {
		t.Error("expected nil for missing post")
	}
}

func TestGetPostBySlugBumpsViews(t *testing.T) {
	p := publicPost("A", "a")
	posts := &fakePosts{bySlug: map[string]*models.Post{"a": &p}}
	svc, _, _ := testService(posts, nil)

	got, err := svc.GetPostBySlug(context.Background(), "a", nil)
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if got == nil {
		t.Fatal("expected post")
	}
	if len(posts.viewBumps) != 1 || posts.viewBumps[0] != p.ID {
		t.Errorf("view bumps: %v", posts.viewBumps)
	}
}

func TestGetPostBySlugHidesNonPublic(t *testing.T) {
	author := uuid.New()
	draft := models.Post{
		ID: uuid.New(), Title: "Draft", Slug: "draft",
		Status: models.PostStatusDraft, AuthorID: author,
	}
	posts := &fakePosts{bySlug: map[string]*models.Post{"draft": &draft}}
	svc, _, _ := testService(posts, nil)
	ctx := context.Background()

	// Anonymous and unrelated viewers get a 404-equivalent nil.
	if got, _ := svc.GetPostBySlug(ctx, "draft", nil); got != nil {
		t.Error("anonymous viewer should not see a draft")
	}
	other := &models.User{ID: uuid.New(), Role: models.RoleUser}
	if got, _ := svc.GetPostBySlug(ctx, "draft", other); got != nil {
		t.Error("unrelated viewer should not see a draft")
	}

	// The author and admins see it.
	if got, _ := svc.GetPostBySlug(ctx, "draft", &models.User{ID: author, Role: models.RoleUser}); got == nil {
		t.Error("author should see their draft")
	}
	if got, _ := svc.GetPostBySlug(ctx, "draft", &models.User{ID: uuid.New(), Role: models.RoleAdmin}); got == nil {
		t.Error("admin should see drafts")
	}
}

func TestGetPostBySlugGatesPremiumContent(t *testing.T) {
	p := publicPost("Premium", "premium")
	p.Premium = true
	p.Content = "secret body"
	p.ContentHTML = "<p>secret body</p>"
	posts := &fakePosts{bySlug: map[string]*models.Post{"premium": &p}}
	svc, _, _ := testService(posts, nil)
	ctx := context.Background()

	// Free viewer: listed, but body withheld.
	free := &models.User{ID: uuid.New(), Plan: models.PlanFree}
	got, err := svc.GetPostBySlug(ctx, "premium", free)
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if got.Content != "" || got.ContentHTML != "" {
		t.Error("free viewer should not receive premium content")
	}
	if got.Title != "Premium" || got.Description != p.Description {
		t.Error("gating must leave the preview fields intact")
	}

	// The stored post must stay untouched for later readers.
	if p.Content != "secret body" {
		t.Error("gating mutated the shared post")
	}

	// Premium viewer sees the body.
	premium := &models.User{ID: uuid.New(), Plan: models.PlanPremium}
	got, _ = svc.GetPostBySlug(ctx, "premium", premium)
	if got.Content != "secret body" {
		t.Error("premium viewer should receive content")
	}
}

func TestRelatedPostsNoCategory(t *testing.T) {
	svc, _, _ := testService(&fakePosts{related: []models.Post{publicPost("R", "r")}}, nil)

	p := publicPost("A", "a")
	related, err := svc.RelatedPosts(context.Background(), &p, nil)
	if err != nil {
		t.Fatalf("RelatedPosts: %v", err)
	}
	if related != nil {
		t.Error("post without category must have no related strip")
	}
}

func TestRelatedPosts(t *testing.T) {
	r := publicPost("R", "r")
	svc, bm, _ := testService(&fakePosts{related: []models.Post{r}}, nil)
	bm.member[r.ID] = true

	catID := uuid.New()
	p := publicPost("A", "a")
	p.CategoryID = &catID

	viewer := uuid.New()
	related, err := svc.RelatedPosts(context.Background(), &p, &viewer)
	if err != nil {
		t.Fatalf("RelatedPosts: %v", err)
	}
	if len(related) != 1 {
		t.Fatalf("related: got %d, want 1", len(related))
	}
	if !related[0].IsBookmarked {
		t.Error("related posts should carry viewer flags")
	}
}

func TestPopularPostsClampsLimit(t *testing.T) {
	posts := &fakePosts{}
	svc, _, _ := testService(posts, nil)

	if _, err := svc.PopularPosts(context.Background(), 9999, nil); err != nil {
		t.Fatalf("PopularPosts: %v", err)
	}
	if posts.lastLimit != query.DefaultLimit {
		t.Errorf("limit: got %d, want %d", posts.lastLimit, query.DefaultLimit)
	}
	if posts.lastOrder != query.SortPopular.OrderBy() {
		t.Errorf("order: got %q, want popular", posts.lastOrder)
	}
}
