// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package book

import "context"

type ImageRepository interface {
	// # Gallery Media

	/*
		ListImages returns all gallery images for a book, ordered by position.

		Parameters:
		  - context: context.Context
		  - bookID: string (UUID)

		Returns:
		  - []*Image: Gallery attachments
		  - error: Storage failures
	*/
	ListImages(context context.Context, bookID string) ([]*Image, error)

	/*
		GetImage returns a single gallery image by ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Image: The image record including its storage key
		  - error: ErrNotFound if missing
	*/
	GetImage(context context.Context, id string) (*Image, error)

	/*
		AddImage persists a gallery image record, assigning the next
		position within the book's gallery.

		Parameters:
		  - context: context.Context
		  - image: *Image

		Returns:
		  - error: Persistence failures
	*/
	AddImage(context context.Context, image *Image) error

	/*
		DeleteImage removes a gallery image record.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: ErrNotFound if missing, otherwise storage failures
	*/
	DeleteImage(context context.Context, id string) error
}
