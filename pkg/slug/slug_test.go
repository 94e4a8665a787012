// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/libbyhq/libby/pkg/slug"
)

/*
TestFrom verifies the slug transformation pipeline against common book titles.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple_title", "War and Peace", "war-and-peace"},
		{"accented", "Les Misérables", "les-miserables"},
		{"punctuation", "Don Quixote: Part I", "don-quixote-part-i"},
		{"multiple_spaces", "A   Tale  of Two Cities", "a-tale-of-two-cities"},
		{"leading_trailing", "  The Trial!  ", "the-trial"},
		{"digits", "1984", "1984"},
		{"mixed_script", "Война и мир (War and Peace)", "war-and-peace"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestFrom_Idempotent verifies that slugging an existing slug is a no-op.
*/
func TestFrom_Idempotent(t *testing.T) {
	once := slug.From("The Brothers Karamazov")
	twice := slug.From(once)
	assert.Equal(t, once, twice)
}
