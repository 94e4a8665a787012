// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package book

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/constants"
	requestutil "github.com/libbyhq/libby/internal/platform/request"
	"github.com/libbyhq/libby/internal/platform/respond"
	"github.com/libbyhq/libby/internal/platform/validate"
)

// # Media Endpoints

// allowedImageTypes enumerates the MIME types accepted for uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

/*
GET /api/v1/books/{id}/images.

Description: Retrieves the image gallery for a book, ordered by position.

Request:
  - id: string (UUID)

Response:
  - 200: []Image: Gallery collection
*/
func (handler *Handler) listImages(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	images, err := handler.service.ListImages(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, images)
}

/*
POST /api/v1/books/{id}/images.

Description: Uploads a new gallery image. The request must be
multipart/form-data with the file under the "image" field; an optional
"caption" field attaches display text. The binary is stored in object
storage and the public URL persisted with the record.

Request:
  - id: string (UUID)
  - image: file (multipart, max 10 MiB, jpeg/png/webp/gif)
  - caption: string (optional)

Response:
  - 201: Image: Created gallery record
  - 400: 400: Validation: Missing file or unsupported type
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Book not found
  - 413: 413: ErrPayloadTooLarge: File exceeds the upload limit
*/
func (handler *Handler) uploadImage(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	file, header, err := openUploadedImage(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer file.Close()

	var caption *string
	if value := request.FormValue(FieldCaption); value != "" {
		caption = &value
	}

	image, err := handler.service.UploadImage(
		request.Context(),
		bookID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		caption,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, image)
}

/*
PUT /api/v1/books/{id}/cover.

Description: Replaces the book's cover image. Same multipart contract
as the gallery upload; the response carries the new public URL.

Request:
  - id: string (UUID)
  - image: file (multipart, max 10 MiB, jpeg/png/webp/gif)

Response:
  - 200: cover_url: Public URL of the new cover
  - 400: 400: Validation: Missing file or unsupported type
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Book not found
  - 413: 413: ErrPayloadTooLarge: File exceeds the upload limit
*/
func (handler *Handler) uploadCover(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	file, header, err := openUploadedImage(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer file.Close()

	url, err := handler.service.UploadCover(
		request.Context(),
		bookID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldCoverURL: url})
}

/*
DELETE /api/v1/books/{id}/images/{imageID}.

Description: Removes a gallery image record and its stored object.

Request:
  - id: string (UUID)
  - imageID: string (UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Image not found
*/
func (handler *Handler) deleteImage(writer http.ResponseWriter, request *http.Request) {
	imageID := requestutil.ID(request, "imageID")

	if err := handler.service.DeleteImage(request.Context(), imageID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Helpers

// openUploadedImage extracts and validates the multipart image file,
// enforcing the platform upload limit and the allowed MIME types.
func openUploadedImage(writer http.ResponseWriter, request *http.Request) (multipart.File, *multipart.FileHeader, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxImageUploadBytes)

	if err := request.ParseMultipartForm(constants.MaxImageUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, nil, apperr.PayloadTooLarge("Image exceeds the upload limit")
		}
		return nil, nil, validate.RequiredError(FieldImage, "Must be multipart/form-data")
	}

	file, header, err := request.FormFile(constants.ImageUploadFormField)
	if err != nil {
		return nil, nil, validate.RequiredError(FieldImage, "Image file is required")
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		file.Close()
		return nil, nil, validate.RequiredError(FieldImage, "Unsupported image type")
	}

	return file, header, nil
}
