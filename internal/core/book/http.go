// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

/*
Package book provides the HTTP interface for catalogue discovery and management.

It exposes endpoints for browsing books, retrieving details by ID or slug,
and managing catalogue records and media by authorised personnel.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /books).
  - Restricted (v1): Mutative endpoints requiring Librarian or Admin roles (POST, PATCH, DELETE).

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package book

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/libbyhq/libby/internal/platform/middleware"
	requestutil "github.com/libbyhq/libby/internal/platform/request"
	"github.com/libbyhq/libby/internal/platform/respond"
	"github.com/libbyhq/libby/internal/platform/sec"
	"github.com/libbyhq/libby/internal/platform/validate"
	"github.com/libbyhq/libby/pkg/pagination"
	"github.com/libbyhq/libby/pkg/uuid"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalogue management and discovery.
// It translates web requests into domain service calls.
type Handler struct {
	service      *Service
	reviewRoutes chi.Router // mounted under /{id}/reviews when provided
}

// NewHandler constructs a new book [Handler] with its service dependency.
// reviewRoutes may be nil when the review surface is not mounted.
func NewHandler(service *Service, reviewRoutes chi.Router) *Handler {
	return &Handler{service: service, reviewRoutes: reviewRoutes}
}

// Routes returns a [chi.Router] configured with the book domain's endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Accessible by all visitors for browsing.
//   - Management (Restricted): Requires [sec.RoleLibrarian] for catalogue
//     writes and [sec.RoleAdmin] for deletion.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listBooks)
	router.Get("/{identifier}", handler.getBook)
	router.Get("/{id}/images", handler.listImages)

	// ## Catalogue Management (Staff Protected)
	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleLibrarian))

		staff.Post("/", handler.createBook)
		staff.Patch("/{id}", handler.updateBook)

		// Media
		staff.Post("/{id}/images", handler.uploadImage)
		staff.Put("/{id}/cover", handler.uploadCover)
		staff.Delete("/{id}/images/{imageID}", handler.deleteImage)

		// Removal stays admin-only
		staff.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{id}", handler.deleteBook)
	})

	// ## Nested Review Surface
	if handler.reviewRoutes != nil {
		router.Mount("/{id}/reviews", handler.reviewRoutes)
	}

	return router
}

// # Book Endpoints

/*
GET /api/v1/books.

Description: Retrieves a paginated list of books from the catalogue.
Supports filtering by search term, author, and publication year.

Request:
  - q: string (Title/description or exact-ISBN search)
  - author_id: int
  - year: int (Publication year)
  - sort: string (latest, title, published)
  - dir: string (asc, desc)
  - limit: int
  - page: int

Response:
  - 200: []Book: Paginated list of books
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:   queryParams.Get("q"),
		Sort:    queryParams.Get("sort"),
		SortDir: queryParams.Get("dir"),
	}

	if authorID, err := strconv.Atoi(queryParams.Get("author_id")); err == nil {
		filter.AuthorID = &authorID
	}
	if year, err := strconv.Atoi(queryParams.Get("year")); err == nil {
		filter.Year = &year
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/books/{identifier}.

Description: Retrieves detailed metadata for a book using either its UUID
or unique title slug. UUID lookups take precedence. The response includes
the full image gallery.

Request:
  - identifier: string (UUID or Slug)

Response:
  - 200: Book: Success
  - 404: 404: ErrNotFound: Book not found
*/
func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	book, err := handler.service.GetBook(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

// # Request Payloads

// bookRequest defines the inbound JSON schema for book creation and update.
type bookRequest struct {
	Title       string     `json:"title"`
	Subtitle    *string    `json:"subtitle"`
	Description string     `json:"description"`
	AuthorID    int        `json:"author_id"`
	AuthorName  string     `json:"author_name"`
	ISBN        *string    `json:"isbn"`
	Pages       *int       `json:"pages"`
	PublishedAt *time.Time `json:"published_at"`
}

// # Mutation Endpoints

/*
POST /api/v1/books.

Description: Creates a new book in the catalogue. Authors may be
referenced by ID or by name; unknown names create the author record.
Slugs are auto-generated from the title.

Request (Body):
  - bookRequest: JSON object

Response:
  - 201: Book: Created book object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Insufficient permissions
  - 409: 409: ErrConflict: Duplicate slug or ISBN
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var input bookRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookDto := &Book{
		Title:       input.Title,
		Subtitle:    input.Subtitle,
		Description: input.Description,
		AuthorID:    input.AuthorID,
		AuthorName:  input.AuthorName,
		ISBN:        input.ISBN,
		Pages:       input.Pages,
		PublishedAt: input.PublishedAt,
	}

	if err := handler.service.CreateBook(request.Context(), bookDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, bookDto)
}

/*
PATCH /api/v1/books/{id}.

Description: Applies partial updates to an existing book record.
Clients should only provide the fields that need to be changed.

Request:
  - id: string (UUID)
  - body: bookRequest (Partial JSON)

Response:
  - 200: Book: Updated book object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Book not found
*/
func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	var input bookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookDto := &Book{
		ID:          bookID,
		Title:       input.Title,
		Subtitle:    input.Subtitle,
		Description: input.Description,
		AuthorID:    input.AuthorID,
		AuthorName:  input.AuthorName,
		ISBN:        input.ISBN,
		Pages:       input.Pages,
		PublishedAt: input.PublishedAt,
	}

	if err := handler.service.UpdateBook(request.Context(), bookDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, bookDto)
}

/*
DELETE /api/v1/books/{id}.

Description: Performs a soft-delete of the book record.
Deleted records are hidden from discovery but remain in the database
for auditing.

Request:
  - id: string (UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Book not found
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	if !uuid.Valid(bookID) {
		respond.Error(writer, request, validate.RequiredError(FieldID, "Must be a UUID"))
		return
	}

	if err := handler.service.DeleteBook(request.Context(), bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
