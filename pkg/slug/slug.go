// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs are used as human-readable identifiers for books (e.g., "war-and-peace").
// This package handles normalization, accent removal, and character sanitization.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// hyphenRuns collapses consecutive hyphens left over after sanitization.
var hyphenRuns = regexp.MustCompile(`-{2,}`)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// The input is NFD-decomposed so accented characters split into a base
// letter plus combining marks, the marks are stripped, and everything
// that is not an ASCII letter or digit becomes a hyphen. Hyphen runs
// collapse to one and the ends are trimmed, so slugging an existing
// slug returns it unchanged.
func From(title string) string {
	stripped, _, _ := transform.String(
		transform.Chain(norm.NFD, transform.RemoveFunc(isCombiningMark)),
		title,
	)

	var builder strings.Builder
	builder.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		default:
			builder.WriteByte('-')
		}
	}

	out := hyphenRuns.ReplaceAllString(builder.String(), "-")
	return strings.Trim(out, "-")
}

// isCombiningMark reports whether r is a Unicode non-spacing mark.
func isCombiningMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
