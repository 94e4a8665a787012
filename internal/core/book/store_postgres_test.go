// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package book

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/platform/database/schema"
)

func TestBuildListQuery_SearchCoversTitleDescriptionAndISBN(t *testing.T) {
	query, args := buildListQuery(Filter{Query: "steppe"}, 20, 0)

	assert.Contains(t, query, "b."+schema.RefBook.Title+" ILIKE $1")
	assert.Contains(t, query, "b."+schema.RefBook.Description+" ILIKE $2")
	assert.Contains(t, query, "b."+schema.RefBook.ISBN+" = $3")

	// Two wildcard patterns, the exact ISBN term, then limit and offset.
	require.Len(t, args, 5)
	assert.Equal(t, "%steppe%", args[0])
	assert.Equal(t, "%steppe%", args[1])
	assert.Equal(t, "steppe", args[2])
	assert.Equal(t, 20, args[3])
	assert.Equal(t, 0, args[4])
}

func TestBuildListQuery_PlaceholdersStayAlignedAfterSearch(t *testing.T) {
	authorID := 7
	year := 1877

	query, args := buildListQuery(Filter{Query: "anna", AuthorID: &authorID, Year: &year}, 10, 30)

	assert.Contains(t, query, "b."+schema.RefBook.AuthorID+" = $4")
	assert.Contains(t, query, " = $5")
	assert.Contains(t, query, "LIMIT $6 OFFSET $7")

	require.Len(t, args, 7)
	assert.Equal(t, 7, args[3])
	assert.Equal(t, 1877, args[4])
}

func TestBuildListQuery_NoSearchSkipsPredicate(t *testing.T) {
	query, args := buildListQuery(Filter{}, 20, 0)

	assert.False(t, strings.Contains(query, "ILIKE"))
	assert.Contains(t, query, "LIMIT $1 OFFSET $2")
	require.Len(t, args, 2)
}
