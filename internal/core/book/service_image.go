// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package book

import (
	"context"
	"io"
	"log/slog"

	"github.com/libbyhq/libby/internal/platform/storage"
	"github.com/libbyhq/libby/pkg/uuid"
)

// # Gallery & Covers

/*
ListImages returns the gallery attached to a book, ordered by position.

Parameters:
  - context: context.Context
  - bookID: string (UUID)

Returns:
  - []*Image: Gallery attachments
  - error: Storage failures
*/
func (service *Service) ListImages(context context.Context, bookID string) ([]*Image, error) {
	return service.repo.ListImages(context, bookID)
}

/*
UploadImage stores a new gallery image for a book.

Description: The binary is streamed to object storage under a freshly
generated collision-free key, and the resulting public URL is persisted
as a gallery record. If persistence fails after the object was written,
the orphaned object is removed on a best-effort basis.

Parameters:
  - context: context.Context
  - bookID: string (UUID of the owning book)
  - filename: string (Client-supplied name, used only for its extension)
  - contentType: string (MIME type of the payload)
  - body: io.Reader (File content)
  - caption: *string (Optional display caption)

Returns:
  - *Image: The persisted gallery record
  - error: ErrNotFound if the book is missing, upload or persistence failures
*/
func (service *Service) UploadImage(context context.Context, bookID, filename, contentType string, body io.Reader, caption *string) (*Image, error) {

	// Ownership check before touching storage
	if _, err := service.repo.FindByID(context, bookID); err != nil {
		return nil, err
	}

	// Object placement under the book's gallery prefix
	key := storage.NewObjectKey("books/"+bookID, filename)

	url, err := service.objects.Upload(context, key, contentType, body)
	if err != nil {
		return nil, err
	}

	image := &Image{
		ID:        uuid.New(),
		BookID:    bookID,
		URL:       url,
		ObjectKey: key,
		Caption:   caption,
	}

	if err := service.repo.AddImage(context, image); err != nil {
		// Best-effort cleanup of the now-orphaned object
		if cleanupErr := service.objects.Delete(context, key); cleanupErr != nil {
			service.logger.Error("image_cleanup_failed",
				slog.String("object_key", key),
				slog.String("error", cleanupErr.Error()),
			)
		}
		return nil, err
	}

	service.logger.Info("book_image_uploaded",
		slog.String("book_id", bookID),
		slog.String("image_id", image.ID),
		slog.String("object_key", key),
	)

	return image, nil
}

/*
UploadCover replaces the cover image of a book.

Description: Streams the binary into object storage under the shared
cover prefix and repoints the book's cover URL at the new object. The
previous cover object is left in place; covers are referenced by URL
and may still be cached downstream.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - filename: string (Client-supplied name, used only for its extension)
  - contentType: string (MIME type of the payload)
  - body: io.Reader (File content)

Returns:
  - string: Public URL of the new cover
  - error: ErrNotFound if the book is missing, upload or persistence failures
*/
func (service *Service) UploadCover(context context.Context, bookID, filename, contentType string, body io.Reader) (string, error) {

	// Ownership check before touching storage
	if _, err := service.repo.FindByID(context, bookID); err != nil {
		return "", err
	}

	key := storage.NewObjectKey("covers", filename)

	url, err := service.objects.Upload(context, key, contentType, body)
	if err != nil {
		return "", err
	}

	if err := service.repo.SetCoverURL(context, bookID, url); err != nil {
		if cleanupErr := service.objects.Delete(context, key); cleanupErr != nil {
			service.logger.Error("cover_cleanup_failed",
				slog.String("object_key", key),
				slog.String("error", cleanupErr.Error()),
			)
		}
		return "", err
	}

	service.logger.Info("book_cover_updated",
		slog.String("book_id", bookID),
		slog.String("object_key", key),
	)

	return url, nil
}

/*
DeleteImage removes a gallery image and its stored object.

Description: The database record is removed first so the gallery stays
consistent even when the storage backend misbehaves; object removal is
best-effort and failures are logged rather than surfaced.

Parameters:
  - context: context.Context
  - id: string (UUID of the gallery record)

Returns:
  - error: ErrNotFound if missing, otherwise persistence failures
*/
func (service *Service) DeleteImage(context context.Context, id string) error {
	image, err := service.repo.GetImage(context, id)
	if err != nil {
		return err
	}

	if err := service.repo.DeleteImage(context, id); err != nil {
		return err
	}

	if image.ObjectKey != "" {
		if err := service.objects.Delete(context, image.ObjectKey); err != nil {
			service.logger.Error("image_object_delete_failed",
				slog.String("image_id", id),
				slog.String("object_key", image.ObjectKey),
				slog.String("error", err.Error()),
			)
		}
	}

	service.logger.Info("book_image_deleted", slog.String("image_id", id))

	return nil
}
