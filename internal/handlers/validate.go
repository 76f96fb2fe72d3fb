package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"promptdeck/internal/slug"
)

// Validation limits for marketplace fields.
const (
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxDescriptionLen = 1_000
	maxContentLen     = 100_000
	maxNameLen        = 200
	maxTagCount       = 10
	minPasswordLen    = 8
	maxPasswordLen    = 128
)

// validatePost checks post inputs, returning per-field errors.
func validatePost(title, slugVal, description, content string, tags []string) map[string]string {
	fields := map[string]string{}

	if strings.TrimSpace(title) == "" {
		fields["title"] = "title is required"
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		fields["title"] = "title is too long (max 300 characters)"
	}

	if slugVal != "" && !slug.Valid(slugVal) {
		fields["slug"] = "slug may contain only lowercase letters, digits, and hyphens"
	} else if utf8.RuneCountInString(slugVal) > maxSlugLen {
		fields["slug"] = "slug is too long (max 300 characters)"
	}

	if utf8.RuneCountInString(description) > maxDescriptionLen {
		fields["description"] = "description is too long (max 1,000 characters)"
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		fields["content"] = "content is too long (max 100,000 characters)"
	}
	if len(tags) > maxTagCount {
		fields["tags"] = "too many tags (max 10)"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// validateCategory checks category inputs.
func validateCategory(name, slugVal string) map[string]string {
	fields := map[string]string{}

	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	} else if utf8.RuneCountInString(name) > maxNameLen {
		fields["name"] = "name is too long (max 200 characters)"
	}

	if slugVal != "" && !slug.Valid(slugVal) {
		fields["slug"] = "slug may contain only lowercase letters, digits, and hyphens"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// validateCredentials checks registration inputs.
func validateCredentials(email, password, displayName string) map[string]string {
	fields := map[string]string{}

	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "a valid email address is required"
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		fields["password"] = "password must be at least 8 characters"
	} else if utf8.RuneCountInString(password) > maxPasswordLen {
		fields["password"] = "password is too long (max 128 characters)"
	}
	if strings.TrimSpace(displayName) == "" {
		fields["display_name"] = "display name is required"
	} else if utf8.RuneCountInString(displayName) > maxNameLen {
		fields["display_name"] = "display name is too long (max 200 characters)"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
