// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

/*
Package book defines the core domain entities for the Libby catalogue.

It manages the lifecycle of published works: bibliographic metadata,
author attribution, and the image galleries attached to each title.

Core Responsibility:

  - Catalogue: Bibliographic records (title, subtitle, ISBN, pages, publication date).
  - Attribution: Every book belongs to exactly one author; writes may reference
    the author by name, which is resolved (or created) transparently.
  - Media: Cover and gallery images stored in object storage with their
    public URLs persisted alongside the record.

This package acts as the source of truth for all catalogue data models.
*/
package book

import "time"

// # Core Entities

// Book is the central aggregate of the Libby domain.
// It represents a single published work in the catalogue.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"` // URL-safe identifier
	Subtitle    *string    `json:"subtitle,omitempty"`
	Description string     `json:"description"`
	AuthorID    int        `json:"author_id"`
	AuthorName  string     `json:"author_name,omitempty"` // Input: resolved-or-created; Output: denormalized for display
	ISBN        *string    `json:"isbn,omitempty"`
	Pages       *int       `json:"pages,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CoverURL    string     `json:"cover_url"`
	Images      []Image    `json:"images,omitempty"` // Gallery attachments, hydrated on detail reads

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// Image represents a gallery image attached to a [Book].
// The binary lives in object storage; only the public URL and the
// storage key are persisted here.
type Image struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	URL       string    `json:"url"`
	ObjectKey string    `json:"-"` // Storage-internal, never exposed
	Caption   *string   `json:"caption,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered book list query.
type Filter struct {
	Query    string `json:"q,omitempty"`         // Title/description/ISBN search term
	AuthorID *int   `json:"author_id,omitempty"` // Restrict to a single author
	Year     *int   `json:"year,omitempty"`      // Publication year
	Sort     string `json:"sort,omitempty"`      // latest, title, published
	SortDir  string `json:"sort_dir,omitempty"`  // "asc" or "desc"
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldSubtitle    = "subtitle"
	FieldDescription = "description"
	FieldAuthorID    = "author_id"
	FieldAuthorName  = "author_name"
	FieldISBN        = "isbn"
	FieldPages       = "pages"
	FieldPublishedAt = "published_at"
	FieldCoverURL    = "cover_url"
)

// Field identifiers for the [Image] domain.
const (
	FieldImage    = "image"
	FieldBookID   = "book_id"
	FieldCaption  = "caption"
	FieldPosition = "position"
)
