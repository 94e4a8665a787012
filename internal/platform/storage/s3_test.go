// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package storage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/libbyhq/libby/internal/platform/storage"
	"github.com/libbyhq/libby/pkg/uuid"
)

/*
TestNewObjectKey verifies key shape, extension handling, and uniqueness.
*/
func TestNewObjectKey(t *testing.T) {
	key := storage.NewObjectKey("books/covers", "My Photo.JPG")

	assert.True(t, strings.HasPrefix(key, "books/covers/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// middle segment must be a UUID
	middle := strings.TrimSuffix(strings.TrimPrefix(key, "books/covers/"), ".jpg")
	assert.True(t, uuid.Valid(middle))

	// no extension input yields no extension output
	bare := storage.NewObjectKey("books/covers", "README")
	assert.False(t, strings.Contains(strings.TrimPrefix(bare, "books/covers/"), "."))

	// two keys for the same filename never collide
	assert.NotEqual(t, key, storage.NewObjectKey("books/covers", "My Photo.JPG"))
}
