// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query turns untrusted listing parameters into a typed filter
// predicate and the pagination/ordering values that accompany it. The
// predicate is a small tagged-variant tree compiled to SQL in one pass,
// so filter semantics are testable without a live database.
package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"promptdeck/internal/models"
	"promptdeck/internal/slug"
)

// maxSearchLen caps free-text search input, counted in runes. Longer
// input is truncated, not rejected: missing or oversized filters widen
// the match.
const maxSearchLen = 100

// Filter is a node in the predicate tree.
type Filter interface {
	isFilter()
}

// And matches when every child matches. And{} matches everything.
type And struct {
	Filters []Filter
}

// Or matches when at least one child matches.
type Or struct {
	Filters []Filter
}

// TextMatch matches a single search term case-insensitively against the
// post title, description, content, and any attached tag name.
type TextMatch struct {
	Term string
}

// CategoryMatch matches posts whose category is any of IDs. An empty ID
// set matches nothing (well-formed but unknown slug).
type CategoryMatch struct {
	IDs []uuid.UUID
}

// PremiumMatch filters by the premium flag.
type PremiumMatch struct {
	Premium bool
}

// StatusMatch filters by moderation status. Used by the admin listing,
// never exposed to public parameters.
type StatusMatch struct {
	Status models.PostStatus
}

// PublicOnly restricts results to approved, published posts.
type PublicOnly struct{}

func (And) isFilter()           {}
func (Or) isFilter()            {}
func (TextMatch) isFilter()     {}
func (CategoryMatch) isFilter() {}
func (PremiumMatch) isFilter()  {}
func (StatusMatch) isFilter()   {}
func (PublicOnly) isFilter()    {}

// Params are the raw, untrusted listing parameters from the query string.
type Params struct {
	Q           string
	Category    string
	Subcategory string
	Premium     string
}

// CategoryResolver resolves category slugs from a preloaded snapshot,
// avoiding a database round-trip per request.
type CategoryResolver interface {
	BySlug(slug string) (*models.Category, bool)
	ChildrenOf(id uuid.UUID) []models.Category
}

// ValidationError carries per-field messages for malformed parameters.
// It maps to an HTTP 400 at the edge.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "invalid filter parameters: " + strings.Join(parts, "; ")
}

// Built is the outcome of parsing listing parameters.
type Built struct {
	Filter    Filter
	HasSearch bool
}

// ParseFilter validates untrusted caller input and builds the predicate tree.
// Only malformed category/subcategory slugs fail; every other input
// widens or narrows the match permissively.
func ParseFilter(p Params, resolver CategoryResolver) (Built, error) {
	fields := map[string]string{}

	var filters []Filter

	// Free-text search: trimmed, capped, split on whitespace. Terms are
	// AND-ed; each term is OR-ed across fields inside TextMatch.
	q := strings.TrimSpace(p.Q)
	if utf8.RuneCountInString(q) > maxSearchLen {
		runes := []rune(q)
		q = string(runes[:maxSearchLen])
	}
	terms := strings.Fields(q)
	for _, term := range terms {
		filters = append(filters, TextMatch{Term: term})
	}

	// Category filtering. Subcategory takes precedence and matches
	// exactly; a parent category expands to itself plus its children.
	if p.Subcategory != "" && !slug.Valid(p.Subcategory) {
		fields["subcategory"] = "must contain only lowercase letters, digits, and hyphens"
	}
	if p.Category != "" && !slug.Valid(p.Category) {
		fields["category"] = "must contain only lowercase letters, digits, and hyphens"
	}
	if len(fields) > 0 {
		return Built{}, &ValidationError{Fields: fields}
	}

	switch {
	case p.Subcategory != "":
		filters = append(filters, CategoryMatch{IDs: resolveExact(resolver, p.Subcategory)})
	case p.Category != "":
		filters = append(filters, CategoryMatch{IDs: resolveWithChildren(resolver, p.Category)})
	}

	// Premium: only the two known values mean anything; anything else is
	// ignored to preserve the permissive default.
	switch p.Premium {
	case "free":
		filters = append(filters, PremiumMatch{Premium: false})
	case "premium":
		filters = append(filters, PremiumMatch{Premium: true})
	}

	return Built{Filter: And{Filters: filters}, HasSearch: len(terms) > 0}, nil
}

func resolveExact(resolver CategoryResolver, s string) []uuid.UUID {
	cat, ok := resolver.BySlug(s)
	if !ok {
		return nil
	}
	return []uuid.UUID{cat.ID}
}

func resolveWithChildren(resolver CategoryResolver, s string) []uuid.UUID {
	cat, ok := resolver.BySlug(s)
	if !ok {
		return nil
	}
	ids := []uuid.UUID{cat.ID}
	for _, child := range resolver.ChildrenOf(cat.ID) {
		ids = append(ids, child.ID)
	}
	return ids
}

// Compiled is a filter rendered to a SQL fragment. Where references the
// posts table as "p" and uses $1..$N placeholders; callers append their
// own clauses starting at $N+1.
type Compiled struct {
	Where string
	Args  []any
}

// Compile renders the predicate tree to SQL in a single pass.
func Compile(f Filter) Compiled {
	c := &compiler{}
	where := c.compile(f)
	if where == "" {
		where = "TRUE"
	}
	return Compiled{Where: where, Args: c.args}
}

type compiler struct {
	args []any
}

// arg registers a query argument and returns its placeholder.
func (c *compiler) arg(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *compiler) compile(f Filter) string {
	switch n := f.(type) {
	case And:
		return c.joinChildren(n.Filters, " AND ")
	case Or:
		return c.joinChildren(n.Filters, " OR ")
	case TextMatch:
		pattern := "%" + escapeLike(n.Term) + "%"
		p := c.arg(pattern)
		return "(p.title ILIKE " + p +
			" OR p.description ILIKE " + p +
			" OR p.content ILIKE " + p +
			" OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id" +
			" WHERE pt.post_id = p.id AND t.name ILIKE " + p + "))"
	case CategoryMatch:
		if len(n.IDs) == 0 {
			return "FALSE"
		}
		placeholders := make([]string, len(n.IDs))
		for i, id := range n.IDs {
			placeholders[i] = c.arg(id)
		}
		return "p.category_id IN (" + strings.Join(placeholders, ", ") + ")"
	case PremiumMatch:
		return "p.premium = " + c.arg(n.Premium)
	case StatusMatch:
		return "p.status = " + c.arg(string(n.Status))
	case PublicOnly:
		return "(p.published AND p.status = 'approved')"
	default:
		return ""
	}
}

func (c *compiler) joinChildren(filters []Filter, sep string) string {
	var parts []string
	for _, child := range filters {
		if s := c.compile(child); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// escapeLike escapes LIKE metacharacters so search terms match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
