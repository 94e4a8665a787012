// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package book

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/libbyhq/libby/internal/core/author"
	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/validate"
	"github.com/libbyhq/libby/pkg/slug"
	"github.com/libbyhq/libby/pkg/uuid"
)

// # Service Layer

// AuthorResolver resolves an author by display name, creating the
// record when it does not exist yet. Satisfied by [author.Service].
type AuthorResolver interface {
	ResolveByName(context context.Context, name string) (*author.Author, error)
}

// ObjectStore abstracts the object storage backend used for book media.
// Satisfied by [storage.Client].
type ObjectStore interface {
	Upload(context context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(context context.Context, key string) error
}

// Service orchestrates the business logic for the book catalogue.
// It acts as the primary entry point for managing bibliographic records.
type Service struct {
	repo    Repository
	authors AuthorResolver
	objects ObjectStore
	logger  *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(repo Repository, authors AuthorResolver, objects ObjectStore, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		authors: authors,
		objects: objects,
		logger:  logger,
	}
}

// # Book Lookups

/*
ListBooks retrieves a paginated and filtered collection of books.

Description: This method orchestrates the discovery phase of the catalogue.
It passes filter criteria directly to the repository layer for efficient
database-level filtering and sorting.

Parameters:
  - context: context.Context
  - filter: Filter (Criteria for search, author, year, sorting)
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Book: Slice of matching catalogue records
  - int: Total count of records matching the filter (for pagination metadata)
  - error: System or repository level errors
*/
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetBook fetches a single catalogue record by UUID or SEO slug.

Description: The service determines the lookup strategy from the
identifier's shape. Identifiers that parse as UUIDs use the primary
key; anything else resolves via the unique URL slug.

Parameters:
  - context: context.Context
  - identifier: string (UUID or Slug)

Returns:
  - *Book: The hydrated domain entity, gallery included
  - error: ErrNotFound if no match is found
*/
func (service *Service) GetBook(context context.Context, identifier string) (*Book, error) {

	// Identity format detection
	if uuid.Valid(identifier) {
		return service.repo.FindByID(context, identifier)
	}

	// Slug resolution
	return service.repo.FindBySlug(context, identifier)
}

// # Book Management

/*
CreateBook initialises a new catalogue record in the system.

Description: Performs business validation on the metadata, resolves the
author attribution (by ID, or by name via find-or-create), generates a
stable UUID v7 identity, and creates SEO-friendly slugs before
persisting to the repository.

Parameters:
  - context: context.Context
  - book: *Book (The entity to be persisted)

Returns:
  - error: Validation, attribution, or persistence errors
*/
func (service *Service) CreateBook(context context.Context, book *Book) error {

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, book.Title).MaxLen(FieldTitle, book.Title, 500)

	// Bibliographic constraints
	if book.ISBN != nil {
		validator.ISBN(FieldISBN, *book.ISBN)
	}
	if book.Pages != nil {
		validator.Custom(FieldPages, *book.Pages <= 0, "Must be a positive number")
	}

	// Attribution requires either an author ID or a resolvable name
	if book.AuthorID == 0 {
		validator.Required(FieldAuthorName, book.AuthorName)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	// Author resolution (find-or-create by name)
	if err := service.resolveAuthor(context, book); err != nil {
		return err
	}

	// Identity & Slug generation
	if book.ID == "" {
		book.ID = uuid.New()
	}
	if book.Slug == "" {
		book.Slug = slug.From(book.Title)
	}

	// Persistence via Repository
	if err := service.repo.Create(context, book); err != nil {
		return err
	}

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
		slog.Int("author_id", book.AuthorID),
	)

	return nil
}

/*
UpdateBook applies modifications to an existing catalogue record.

Description: Supports partial updates. Non-empty fields in the input
entity overwrite existing values. When an author name is supplied it is
resolved (or created) and the attribution repointed.

Parameters:
  - context: context.Context
  - book: *Book (Target ID and updated attributes)

Returns:
  - error: Validation, attribution, or persistence errors
*/
func (service *Service) UpdateBook(context context.Context, book *Book) error {

	// Integrity validation for updated fields
	validator := &validate.Validator{}

	if book.Title != "" {
		validator.MaxLen(FieldTitle, book.Title, 500)
	}
	if book.Slug != "" {
		validator.Slug(FieldSlug, book.Slug)
	}
	if book.ISBN != nil {
		validator.ISBN(FieldISBN, *book.ISBN)
	}
	if book.Pages != nil {
		validator.Custom(FieldPages, *book.Pages <= 0, "Must be a positive number")
	}

	if err := validator.Err(); err != nil {
		return err
	}

	// Repoint attribution when a name is supplied
	if err := service.resolveAuthor(context, book); err != nil {
		return err
	}

	// Execute storage update
	if err := service.repo.Update(context, book); err != nil {
		return err
	}

	service.logger.Info("book_updated", slog.String("book_id", book.ID))

	return nil
}

/*
DeleteBook removes a book from active discovery.

Description: Implements soft-delete logic. The record remains in the
database but is excluded from all discovery queries. Gallery objects
stay in storage so the record can be restored by operators.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: Persistence error if removal fails
*/
func (service *Service) DeleteBook(context context.Context, id string) error {
	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("book_deleted", slog.String("book_id", id))

	return nil
}

// # Internal Helpers

// resolveAuthor maps a supplied author name onto an author ID via the
// find-or-create resolver. A blank name leaves the attribution untouched.
func (service *Service) resolveAuthor(context context.Context, book *Book) error {
	name := strings.TrimSpace(book.AuthorName)
	if name == "" {
		return nil
	}

	if service.authors == nil {
		return apperr.Internal(nil)
	}

	resolved, err := service.authors.ResolveByName(context, name)
	if err != nil {
		return err
	}

	book.AuthorID = resolved.ID
	book.AuthorName = resolved.Name
	return nil
}
