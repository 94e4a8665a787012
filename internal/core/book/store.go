// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package book

import "context"

// # Book Data Access

// Repository defines the data access contract for the book domain.
type Repository interface {
	ImageRepository

	/*
		List returns a filtered, paginated slice of books and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Criteria for search, author, year, sorting)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Book: Slice of matching catalogue records
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	/*
		FindByID returns the book with the given ID, gallery included.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Book: The hydrated domain entity
		  - error: ErrNotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Book, error)

	/*
		FindBySlug returns the book matching the unique SEO identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Book: The hydrated domain entity
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Book, error)

	/*
		Create persists a new book to the store.

		Parameters:
		  - context: context.Context
		  - book: *Book (Metadata and initial state)

		Returns:
		  - error: Storage or constraint failures
	*/
	Create(context context.Context, book *Book) error

	/*
		Update persists changes to an existing book's mutable fields.

		Parameters:
		  - context: context.Context
		  - book: *Book (Target ID and modified attributes)

		Returns:
		  - error: ErrNotFound if missing, otherwise storage failures
	*/
	Update(context context.Context, book *Book) error

	/*
		SetCoverURL points a book's cover at a freshly uploaded object.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - url: string (Public object URL)

		Returns:
		  - error: ErrNotFound if missing, otherwise storage failures
	*/
	SetCoverURL(context context.Context, id, url string) error

	/*
		SoftDelete marks a book as deleted without physical row removal.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: ErrNotFound if missing, otherwise storage failures
	*/
	SoftDelete(context context.Context, id string) error
}
