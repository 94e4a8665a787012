// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/libbyhq/libby/pkg/pagination"
)

/*
TestFromRequest verifies query parameter parsing and clamping behavior.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/books", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit", "/books?page=3&limit=50", 3, 50},
		{"zero_page", "/books?page=0", pagination.DefaultPage, pagination.DefaultLimit},
		{"negative_page", "/books?page=-2", pagination.DefaultPage, pagination.DefaultLimit},
		{"excessive_limit", "/books?limit=5000", pagination.DefaultPage, pagination.DefaultLimit},
		{"garbage_input", "/books?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", tt.url, nil)
			params := pagination.FromRequest(request)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}

/*
TestParams_Offset verifies SQL offset derivation.
*/
func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 90, pagination.Params{Page: 10, Limit: 10}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 20}.Offset())
}

/*
TestNewMeta verifies total page calculation, including partial last pages.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 20, 45)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, 45, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	// Zero limit must not divide by zero
	assert.Equal(t, 0, pagination.NewMeta(1, 0, 45).TotalPages)
}

/*
TestFromValues verifies clamping for non-HTTP callers.
*/
func TestFromValues(t *testing.T) {
	params := pagination.FromValues(-1, 9999)
	assert.Equal(t, pagination.DefaultPage, params.Page)
	assert.Equal(t, pagination.DefaultLimit, params.Limit)

	params = pagination.FromValues(4, 25)
	assert.Equal(t, 4, params.Page)
	assert.Equal(t, 25, params.Limit)
}
