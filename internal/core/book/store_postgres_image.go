// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package book

import (
	"context"
	"fmt"

	"github.com/libbyhq/libby/internal/platform/database/schema"
	"github.com/libbyhq/libby/internal/platform/dberr"
)

// # Gallery Repository Implementation

/*
ListImages returns the gallery for a book, ordered by position.

Parameters:
  - context: context.Context
  - bookID: string (UUID)

Returns:
  - []*Image: Gallery records
  - error: Execution errors
*/
func (repository *postgresRepository) ListImages(context context.Context, bookID string) ([]*Image, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC
	`,
		schema.RefBookImage.ID, schema.RefBookImage.BookID, schema.RefBookImage.URL, schema.RefBookImage.ObjectKey,
		schema.RefBookImage.Caption, schema.RefBookImage.Position, schema.RefBookImage.CreatedAt,
		schema.RefBookImage.Table,
		schema.RefBookImage.BookID,
		schema.RefBookImage.Position, schema.RefBookImage.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_book_images")
	}
	defer rows.Close()

	var images []*Image
	for rows.Next() {
		image := &Image{}
		err := rows.Scan(
			&image.ID,
			&image.BookID,
			&image.URL,
			&image.ObjectKey,
			&image.Caption,
			&image.Position,
			&image.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_book_image")
		}
		images = append(images, image)
	}

	return images, nil
}

/*
GetImage returns a single gallery record including its storage key.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Image: The gallery record
  - error: ErrNotFound if missing
*/
func (repository *postgresRepository) GetImage(context context.Context, id string) (*Image, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.RefBookImage.ID, schema.RefBookImage.BookID, schema.RefBookImage.URL, schema.RefBookImage.ObjectKey,
		schema.RefBookImage.Caption, schema.RefBookImage.Position, schema.RefBookImage.CreatedAt,
		schema.RefBookImage.Table,
		schema.RefBookImage.ID,
	)

	image := &Image{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&image.ID,
		&image.BookID,
		&image.URL,
		&image.ObjectKey,
		&image.Caption,
		&image.Position,
		&image.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_book_image")
	}

	return image, nil
}

/*
AddImage persists a gallery record, appending it to the book's gallery.

Description: The position is assigned inside the INSERT from the
current gallery maximum, which keeps ordering stable without a
read-modify-write cycle.

Parameters:
  - context: context.Context
  - image: *Image

Returns:
  - error: Execution errors
*/
func (repository *postgresRepository) AddImage(context context.Context, image *Image) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, COALESCE((SELECT MAX(%s) + 1 FROM %s WHERE %s = $2), 0))
		RETURNING %s, %s
	`,
		schema.RefBookImage.Table,
		schema.RefBookImage.ID, schema.RefBookImage.BookID, schema.RefBookImage.URL, schema.RefBookImage.ObjectKey,
		schema.RefBookImage.Caption, schema.RefBookImage.Position,
		schema.RefBookImage.Position, schema.RefBookImage.Table, schema.RefBookImage.BookID,
		schema.RefBookImage.Position, schema.RefBookImage.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		image.ID,
		image.BookID,
		image.URL,
		image.ObjectKey,
		image.Caption,
	).Scan(&image.Position, &image.CreatedAt)

	return dberr.Wrap(err, "add_book_image")
}

/*
DeleteImage removes a gallery record.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: ErrNotFound if missing
*/
func (repository *postgresRepository) DeleteImage(context context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.RefBookImage.Table, schema.RefBookImage.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book_image")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
