// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and validation.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// validSlug is the canonical slug shape, applied to generated slugs
	// and to untrusted slug parameters arriving on query strings.
	validSlug = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Sunset Painting, v2" → "sunset-painting-v2"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// WithSuffix appends a numeric suffix, used to de-duplicate slugs when
// a generated slug is already taken ("sunset-painting-2").
func WithSuffix(s string, n int) string {
	return fmt.Sprintf("%s-%d", s, n)
}

// Valid reports whether s is a well-formed slug. Used to reject
// malformed category/subcategory filter parameters before they reach
// any query.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}
