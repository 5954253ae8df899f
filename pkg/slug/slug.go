package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9 -]+`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// Make lowercases s, drops everything but letters, digits and separators,
// and joins the words with single hyphens.
func Make(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = invalidChars.ReplaceAllString(slug, "")
	slug = separators.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// Pattern returns the LIKE pattern matching base and its numbered variants.
func Pattern(base string) string {
	return base + "-%"
}

// Disambiguate appends the next sequence number when base is already taken by taken rows.
func Disambiguate(base string, taken int64) string {
	if taken == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, taken+1)
}

// WithRandomSuffix is the fallback used after a unique index collision.
func WithRandomSuffix(base string) string {
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
}

const maxAttempts = 3

// Assign picks a slug for title and hands it to create. count reports how many rows already
// use the base slug or a numbered variant. A unique index collision retries with a random suffix.
func Assign(title string, count func(base string) (int64, error), create func(slug string) error) (string, error) {
	base := Make(title)
	taken, err := count(base)
	if err != nil {
		return "", err
	}

	candidate := Disambiguate(base, taken)
	for attempt := 1; ; attempt++ {
		err := create(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == maxAttempts {
			return "", err
		}
		candidate = WithRandomSuffix(base)
	}
}
