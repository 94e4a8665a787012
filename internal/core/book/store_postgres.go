/*
Package book provides the PostgreSQL implementation for the catalogue's data access.

It leans on a few Postgres features to keep discovery fast:
  - Window Functions: COUNT(*) OVER() returns totals without a second query.
  - JSON Aggregation: Detail reads hydrate the gallery in a single round-trip.
  - Partial Soft Deletes: Every discovery query is scoped to deletedat IS NULL.

The repository follows an "Aggregate" pattern where gallery records are
managed through the main repository instance to maintain domain integrity.
*/
package book

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libbyhq/libby/internal/platform/database/schema"
	"github.com/libbyhq/libby/internal/platform/dberr"
)

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed book store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

/*
List returns a filtered, paginated slice of books and the total count.

Description: Uses COUNT(*) OVER() to retrieve the total in the same
round-trip and joins the author table to denormalize the display name.

Parameters:
  - context: context.Context
  - filter: Filter (Search, author, year, sorting)
  - limit: int
  - offset: int

Returns:
  - []*Book: Slice of hydrated book entities
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *postgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	query, args := buildListQuery(filter, limit, offset)

	// Query execution
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	var books []*Book
	var totalCount int

	for rows.Next() {
		book := &Book{}
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Slug,
			&book.Subtitle,
			&book.Description,
			&book.AuthorID,
			&book.ISBN,
			&book.Pages,
			&book.PublishedAt,
			&book.CoverURL,
			&book.CreatedAt,
			&book.UpdatedAt,
			&book.AuthorName,
			&totalCount,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, book)
	}

	return books, totalCount, nil
}

// buildListQuery assembles the filtered list statement and its argument
// vector. Kept separate from execution so the predicate logic stays
// verifiable on its own.
func buildListQuery(filter Filter, limit, offset int) (string, []any) {

	// Query build initialization
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT
			b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
			b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
			a.%s AS author_name,
			COUNT(*) OVER() AS total_count
		FROM %s b
		JOIN %s a ON a.%s = b.%s
		WHERE b.%s IS NULL
	`,
		schema.RefBook.ID, schema.RefBook.Title, schema.RefBook.Slug, schema.RefBook.Subtitle, schema.RefBook.Description, schema.RefBook.AuthorID,
		schema.RefBook.ISBN, schema.RefBook.Pages, schema.RefBook.PublishedAt, schema.RefBook.CoverURL, schema.RefBook.CreatedAt, schema.RefBook.UpdatedAt,
		schema.RefAuthor.Name,
		schema.RefBook.Table,
		schema.RefAuthor.Table, schema.RefAuthor.ID, schema.RefBook.AuthorID,
		schema.RefBook.DeletedAt,
	))

	// Search term (title or description, plus exact ISBN)
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (b.%s ILIKE $%d OR b.%s ILIKE $%d OR b.%s = $%d)",
			schema.RefBook.Title, argID, schema.RefBook.Description, argID+1, schema.RefBook.ISBN, argID+2))
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern, filter.Query)
		argID += 3
	}

	// Author scoping
	if filter.AuthorID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.RefBook.AuthorID, argID))
		args = append(args, *filter.AuthorID)
		argID++
	}

	// Publication year
	if filter.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND EXTRACT(YEAR FROM b.%s) = $%d", schema.RefBook.PublishedAt, argID))
		args = append(args, *filter.Year)
		argID++
	}

	// Sorting
	sort := fmt.Sprintf("b.%s", schema.RefBook.CreatedAt) // default: latest
	switch filter.Sort {
	case "title":
		sort = fmt.Sprintf("b.%s", schema.RefBook.Title)
	case "published":
		sort = fmt.Sprintf("b.%s", schema.RefBook.PublishedAt)
	}

	sortDir := "DESC"
	if strings.ToLower(filter.SortDir) == "asc" || filter.Sort == "title" {
		sortDir = "ASC"
	}
	if strings.ToLower(filter.SortDir) == "desc" {
		sortDir = "DESC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s NULLS LAST, b.%s DESC", sort, sortDir, schema.RefBook.ID))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	return queryBuilder.String(), args
}

/*
FindByID retrieves a book record by its primary key, gallery included.

Description: In addition to the core fields, this query uses json_agg
to hydrate the associated gallery images in a single round-trip, which
avoids the classic N+1 problem on detail pages.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Book: The fully hydrated entity including images
  - error: ErrNotFound if the book does not exist or is soft-deleted
*/
func (repository *postgresRepository) FindByID(context context.Context, id string) (*Book, error) {
	return repository.findOne(context, schema.RefBook.ID, id)
}

/*
FindBySlug retrieves a book record by its unique SEO URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Book: The fully hydrated entity including images
  - error: ErrNotFound on unknown slugs
*/
func (repository *postgresRepository) FindBySlug(context context.Context, slug string) (*Book, error) {
	return repository.findOne(context, schema.RefBook.Slug, slug)
}

// findOne is the shared single-row lookup keyed on an arbitrary unique column.
func (repository *postgresRepository) findOne(context context.Context, column string, value string) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT
			b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
			b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
			a.%s AS author_name,
			COALESCE((
				SELECT json_agg(json_build_object(
					'id', i.%s, 'book_id', i.%s, 'url', i.%s,
					'caption', i.%s, 'position', i.%s, 'created_at', i.%s
				) ORDER BY i.%s ASC)
				FROM %s i
				WHERE i.%s = b.%s
			), '[]') AS images
		FROM %s b
		JOIN %s a ON a.%s = b.%s
		WHERE b.%s = $1 AND b.%s IS NULL
	`,
		schema.RefBook.ID, schema.RefBook.Title, schema.RefBook.Slug, schema.RefBook.Subtitle, schema.RefBook.Description, schema.RefBook.AuthorID,
		schema.RefBook.ISBN, schema.RefBook.Pages, schema.RefBook.PublishedAt, schema.RefBook.CoverURL, schema.RefBook.CreatedAt, schema.RefBook.UpdatedAt,
		schema.RefAuthor.Name,
		schema.RefBookImage.ID, schema.RefBookImage.BookID, schema.RefBookImage.URL,
		schema.RefBookImage.Caption, schema.RefBookImage.Position, schema.RefBookImage.CreatedAt,
		schema.RefBookImage.Position,
		schema.RefBookImage.Table,
		schema.RefBookImage.BookID, schema.RefBook.ID,
		schema.RefBook.Table,
		schema.RefAuthor.Table, schema.RefAuthor.ID, schema.RefBook.AuthorID,
		column, schema.RefBook.DeletedAt,
	)

	book := &Book{}
	var imagesJSON []byte

	err := repository.pool.QueryRow(context, query, value).Scan(
		&book.ID,
		&book.Title,
		&book.Slug,
		&book.Subtitle,
		&book.Description,
		&book.AuthorID,
		&book.ISBN,
		&book.Pages,
		&book.PublishedAt,
		&book.CoverURL,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.AuthorName,
		&imagesJSON,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_book")
	}

	if err := json.Unmarshal(imagesJSON, &book.Images); err != nil {
		return nil, dberr.Wrap(err, "unmarshal_book_images")
	}

	return book, nil
}

/*
Create persists a new book entity.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: Conflict on duplicate slugs/ISBNs, otherwise execution errors
*/
func (repository *postgresRepository) Create(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s, %s
	`,
		schema.RefBook.Table,
		schema.RefBook.ID, schema.RefBook.Title, schema.RefBook.Slug, schema.RefBook.Subtitle, schema.RefBook.Description,
		schema.RefBook.AuthorID, schema.RefBook.ISBN, schema.RefBook.Pages, schema.RefBook.PublishedAt, schema.RefBook.CoverURL,
		schema.RefBook.CreatedAt, schema.RefBook.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		book.ID,
		book.Title,
		book.Slug,
		book.Subtitle,
		book.Description,
		book.AuthorID,
		book.ISBN,
		book.Pages,
		book.PublishedAt,
		book.CoverURL,
	).Scan(&book.CreatedAt, &book.UpdatedAt)

	return dberr.Wrap(err, "create_book")
}

/*
Update persists metadata modifications to an existing book record.

Description: Builds a PATCH-style partial update dynamically so zero
values never clobber existing columns.

Parameters:
  - context: context.Context
  - book: *Book (Target ID and modified attributes)

Returns:
  - error: ErrNotFound if the target row is missing or soft-deleted
*/
func (repository *postgresRepository) Update(context context.Context, book *Book) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.RefBook.Table, schema.RefBook.UpdatedAt))

	var args []any
	argID := 1

	if book.Title != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.Title, argID))
		args = append(args, book.Title)
		argID++
	}

	if book.Slug != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.Slug, argID))
		args = append(args, book.Slug)
		argID++
	}

	if book.Subtitle != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.Subtitle, argID))
		args = append(args, *book.Subtitle)
		argID++
	}

	if book.Description != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.Description, argID))
		args = append(args, book.Description)
		argID++
	}

	if book.AuthorID != 0 {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.AuthorID, argID))
		args = append(args, book.AuthorID)
		argID++
	}

	if book.ISBN != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.ISBN, argID))
		args = append(args, *book.ISBN)
		argID++
	}

	if book.Pages != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.Pages, argID))
		args = append(args, *book.Pages)
		argID++
	}

	if book.PublishedAt != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.PublishedAt, argID))
		args = append(args, *book.PublishedAt)
		argID++
	}

	if book.CoverURL != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.RefBook.CoverURL, argID))
		args = append(args, book.CoverURL)
		argID++
	}

	// Bound to a single active row
	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s IS NULL", schema.RefBook.ID, argID, schema.RefBook.DeletedAt))
	args = append(args, book.ID)

	result, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update_book")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
SetCoverURL repoints a book's cover at a new object URL.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - url: string

Returns:
  - error: ErrNotFound if missing, otherwise execution errors
*/
func (repository *postgresRepository) SetCoverURL(context context.Context, id, url string) error {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2 AND %s IS NULL",
		schema.RefBook.Table, schema.RefBook.CoverURL, schema.RefBook.UpdatedAt, schema.RefBook.ID, schema.RefBook.DeletedAt,
	)

	result, err := repository.pool.Exec(context, query, url, id)
	if err != nil {
		return dberr.Wrap(err, "set_cover_url")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
SoftDelete hides a book without physical row removal.

Description: Stamps the deletedat column with the database clock.
Discovery queries all carry a deletedat IS NULL guard, so the record
drops out of every listing immediately.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: ErrNotFound if missing or already deleted
*/
func (repository *postgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.RefBook.Table, schema.RefBook.DeletedAt, schema.RefBook.ID, schema.RefBook.DeletedAt,
	)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
