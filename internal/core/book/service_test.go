package book_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/core/author"
	"github.com/libbyhq/libby/internal/core/book"
	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/dberr"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	books  map[string]*book.Book
	images map[string]*book.Image

	addImageErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		books:  map[string]*book.Book{},
		images: map[string]*book.Image{},
	}
}

func (f *fakeRepository) List(_ context.Context, filter book.Filter, limit, offset int) ([]*book.Book, int, error) {
	var out []*book.Book
	for _, b := range f.books {
		if filter.Query == "" || strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Query)) {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*book.Book, error) {
	for _, b := range f.books {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) Create(_ context.Context, b *book.Book) error {
	f.books[b.ID] = b
	return nil
}

func (f *fakeRepository) Update(_ context.Context, b *book.Book) error {
	if _, ok := f.books[b.ID]; !ok {
		return dberr.ErrNotFound
	}
	f.books[b.ID] = b
	return nil
}

func (f *fakeRepository) SetCoverURL(_ context.Context, id, url string) error {
	b, ok := f.books[id]
	if !ok {
		return dberr.ErrNotFound
	}
	b.CoverURL = url
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.books[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeRepository) ListImages(_ context.Context, bookID string) ([]*book.Image, error) {
	var out []*book.Image
	for _, image := range f.images {
		if image.BookID == bookID {
			out = append(out, image)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetImage(_ context.Context, id string) (*book.Image, error) {
	image, ok := f.images[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return image, nil
}

func (f *fakeRepository) AddImage(_ context.Context, image *book.Image) error {
	if f.addImageErr != nil {
		return f.addImageErr
	}
	image.Position = len(f.images)
	f.images[image.ID] = image
	return nil
}

func (f *fakeRepository) DeleteImage(_ context.Context, id string) error {
	if _, ok := f.images[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.images, id)
	return nil
}

// fakeResolver records the author names it was asked to resolve.
type fakeResolver struct {
	nextID   int
	resolved []string
}

func (f *fakeResolver) ResolveByName(_ context.Context, name string) (*author.Author, error) {
	f.nextID++
	f.resolved = append(f.resolved, name)
	return &author.Author{ID: f.nextID, Name: name}, nil
}

// fakeObjectStore captures uploads and deletions in memory.
type fakeObjectStore struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploads[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.uploads, key)
	return nil
}

func newService(repo book.Repository, resolver book.AuthorResolver, objects book.ObjectStore) *book.Service {
	return book.NewService(repo, resolver, objects, slog.Default())
}

func TestCreateBook_ResolvesAuthorByName(t *testing.T) {
	repo := newFakeRepository()
	resolver := &fakeResolver{}
	service := newService(repo, resolver, newFakeObjectStore())

	input := &book.Book{Title: "War and Peace", AuthorName: "Leo Tolstoy"}
	require.NoError(t, service.CreateBook(context.Background(), input))

	assert.Equal(t, []string{"Leo Tolstoy"}, resolver.resolved)
	assert.Equal(t, 1, input.AuthorID)
	assert.NotEmpty(t, input.ID)
	assert.Equal(t, "war-and-peace", input.Slug)
}

func TestCreateBook_Validation(t *testing.T) {
	service := newService(newFakeRepository(), &fakeResolver{}, newFakeObjectStore())

	// Title is mandatory
	err := service.CreateBook(context.Background(), &book.Book{AuthorID: 1})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	// Attribution requires an ID or a name
	err = service.CreateBook(context.Background(), &book.Book{Title: "Orphaned"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	// Malformed ISBN
	badISBN := "not-an-isbn"
	err = service.CreateBook(context.Background(), &book.Book{Title: "Bad ISBN", AuthorID: 1, ISBN: &badISBN})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	// Non-positive page count
	pages := -10
	err = service.CreateBook(context.Background(), &book.Book{Title: "Bad Pages", AuthorID: 1, Pages: &pages})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestGetBook_IdentifierDetection(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, &fakeResolver{}, newFakeObjectStore())

	created := &book.Book{Title: "Anna Karenina", AuthorID: 1}
	require.NoError(t, service.CreateBook(context.Background(), created))

	// Primary key lookup
	byID, err := service.GetBook(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	// Slug lookup
	bySlug, err := service.GetBook(context.Background(), "anna-karenina")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)
}

func TestUploadImage_PersistsRecordWithObjectURL(t *testing.T) {
	repo := newFakeRepository()
	objects := newFakeObjectStore()
	service := newService(repo, &fakeResolver{}, objects)

	owner := &book.Book{Title: "Gallery Owner", AuthorID: 1}
	require.NoError(t, service.CreateBook(context.Background(), owner))

	payload := bytes.NewBufferString("fake-image-bytes")
	image, err := service.UploadImage(context.Background(), owner.ID, "photo.JPG", "image/jpeg", payload, nil)
	require.NoError(t, err)

	assert.Equal(t, owner.ID, image.BookID)
	assert.True(t, strings.HasPrefix(image.URL, "https://cdn.test/books/"+owner.ID+"/"))
	assert.True(t, strings.HasSuffix(image.ObjectKey, ".jpg"), "extension should be lowercased")
	assert.Contains(t, objects.uploads, image.ObjectKey)
}

func TestUploadImage_UnknownBook(t *testing.T) {
	service := newService(newFakeRepository(), &fakeResolver{}, newFakeObjectStore())

	_, err := service.UploadImage(context.Background(), "missing", "photo.png", "image/png", bytes.NewReader(nil), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dberr.ErrNotFound))
}

func TestUploadImage_CleansUpOrphanedObject(t *testing.T) {
	repo := newFakeRepository()
	objects := newFakeObjectStore()
	service := newService(repo, &fakeResolver{}, objects)

	owner := &book.Book{Title: "Broken Gallery", AuthorID: 1}
	require.NoError(t, service.CreateBook(context.Background(), owner))

	repo.addImageErr = errors.New("insert failed")

	_, err := service.UploadImage(context.Background(), owner.ID, "photo.png", "image/png", bytes.NewBufferString("x"), nil)
	require.Error(t, err)

	// The uploaded object must not be left behind
	assert.Empty(t, objects.uploads)
	assert.Len(t, objects.deleted, 1)
}

func TestDeleteImage_RemovesStoredObject(t *testing.T) {
	repo := newFakeRepository()
	objects := newFakeObjectStore()
	service := newService(repo, &fakeResolver{}, objects)

	owner := &book.Book{Title: "Cleanup", AuthorID: 1}
	require.NoError(t, service.CreateBook(context.Background(), owner))

	image, err := service.UploadImage(context.Background(), owner.ID, "a.png", "image/png", bytes.NewBufferString("x"), nil)
	require.NoError(t, err)

	require.NoError(t, service.DeleteImage(context.Background(), image.ID))
	assert.Empty(t, objects.uploads)

	// Second delete reports the missing record
	err = service.DeleteImage(context.Background(), image.ID)
	assert.True(t, errors.Is(err, dberr.ErrNotFound))
}

func TestUploadCover_RepointsBook(t *testing.T) {
	repo := newFakeRepository()
	objects := newFakeObjectStore()
	service := newService(repo, &fakeResolver{}, objects)

	owner := &book.Book{Title: "Covered", AuthorID: 1}
	require.NoError(t, service.CreateBook(context.Background(), owner))

	url, err := service.UploadCover(context.Background(), owner.ID, "cover.webp", "image/webp", bytes.NewBufferString("x"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.test/covers/"))
	assert.Equal(t, url, repo.books[owner.ID].CoverURL)
}
