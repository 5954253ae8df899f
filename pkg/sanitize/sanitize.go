// Package sanitize cleans user-generated text before it is stored.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// UGC keeps safe formatting markup and drops scripts, handlers and unknown tags.
func UGC(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Plain strips every tag. Used for names and search documents.
func Plain(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
