package graphql_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	gql "github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/core/author"
	"github.com/libbyhq/libby/internal/core/book"
	"github.com/libbyhq/libby/internal/core/review"
	"github.com/libbyhq/libby/internal/graphql"
	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/ctxutil"
	"github.com/libbyhq/libby/internal/platform/dberr"
	"github.com/libbyhq/libby/internal/platform/sec"
	"github.com/libbyhq/libby/internal/users/auth"
)

// # In-Memory Fakes

type fakeAuthorRepository struct {
	authors map[int]*author.Author
	nextID  int
}

func (f *fakeAuthorRepository) ListAuthors(_ context.Context, filter author.Filter, limit, offset int) ([]*author.Author, int, error) {
	var out []*author.Author
	for _, a := range f.authors {
		if filter.Query == "" || strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Query)) {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (f *fakeAuthorRepository) GetAuthor(_ context.Context, id int) (*author.Author, error) {
	a, ok := f.authors[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return a, nil
}

func (f *fakeAuthorRepository) FindByName(_ context.Context, name string) (*author.Author, error) {
	for _, a := range f.authors {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeAuthorRepository) CreateAuthor(_ context.Context, a *author.Author) error {
	f.nextID++
	a.ID = f.nextID
	f.authors[a.ID] = a
	return nil
}

func (f *fakeAuthorRepository) UpdateAuthor(_ context.Context, a *author.Author) error {
	f.authors[a.ID] = a
	return nil
}

func (f *fakeAuthorRepository) DeleteAuthor(_ context.Context, id int) error {
	delete(f.authors, id)
	return nil
}

type fakeBookRepository struct {
	books  map[string]*book.Book
	images map[string]*book.Image
}

func (f *fakeBookRepository) List(_ context.Context, filter book.Filter, limit, offset int) ([]*book.Book, int, error) {
	var out []*book.Book
	for _, b := range f.books {
		if filter.Query != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.AuthorID != nil && b.AuthorID != *filter.AuthorID {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (f *fakeBookRepository) FindByID(_ context.Context, id string) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookRepository) FindBySlug(_ context.Context, slug string) (*book.Book, error) {
	for _, b := range f.books {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeBookRepository) Create(_ context.Context, b *book.Book) error {
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.books[b.ID] = b
	return nil
}

func (f *fakeBookRepository) Update(_ context.Context, b *book.Book) error {
	existing, ok := f.books[b.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	if b.Title != "" {
		existing.Title = b.Title
	}
	if b.AuthorID != 0 {
		existing.AuthorID = b.AuthorID
		existing.AuthorName = b.AuthorName
	}
	return nil
}

func (f *fakeBookRepository) SetCoverURL(_ context.Context, id, url string) error {
	b, ok := f.books[id]
	if !ok {
		return dberr.ErrNotFound
	}
	b.CoverURL = url
	return nil
}

func (f *fakeBookRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.books[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBookRepository) ListImages(_ context.Context, bookID string) ([]*book.Image, error) {
	var out []*book.Image
	for _, image := range f.images {
		if image.BookID == bookID {
			out = append(out, image)
		}
	}
	return out, nil
}

func (f *fakeBookRepository) GetImage(_ context.Context, id string) (*book.Image, error) {
	image, ok := f.images[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return image, nil
}

func (f *fakeBookRepository) AddImage(_ context.Context, image *book.Image) error {
	f.images[image.ID] = image
	return nil
}

func (f *fakeBookRepository) DeleteImage(_ context.Context, id string) error {
	delete(f.images, id)
	return nil
}

type fakeReviewRepository struct {
	reviews map[string]*review.Review
}

func (f *fakeReviewRepository) ListByBook(_ context.Context, bookID string, limit, offset int) ([]*review.Review, int, error) {
	var out []*review.Review
	for _, r := range f.reviews {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeReviewRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*review.Review, int, error) {
	var out []*review.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeReviewRepository) Get(_ context.Context, id string) (*review.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return r, nil
}

func (f *fakeReviewRepository) Create(_ context.Context, r *review.Review) error {
	for _, existing := range f.reviews {
		if existing.BookID == r.BookID && existing.UserID == r.UserID {
			return apperr.Conflict("Resource already exists")
		}
	}
	r.CreatedAt = time.Now()
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeReviewRepository) Update(_ context.Context, r *review.Review) error {
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeReviewRepository) Delete(_ context.Context, id string) error {
	delete(f.reviews, id)
	return nil
}

type fakeUserRepository struct {
	users map[string]*auth.User
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *auth.User) error { return nil }

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error { return nil }

func (f *fakeUserRepository) MarkVerified(_ context.Context, id string) error { return nil }

type fakeSessionRepository struct {
	sessions map[string]*auth.Session
}

func (f *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range f.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked {
			return session, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeSessionRepository) ListByUser(_ context.Context, userID string) ([]*auth.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepository) Revoke(_ context.Context, sessionID string) error {
	if session, ok := f.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (f *fakeSessionRepository) RevokeAll(_ context.Context, userID string) error { return nil }

func (f *fakeSessionRepository) RevokeOthers(_ context.Context, u, c string) error { return nil }

func (f *fakeSessionRepository) DeleteExpired(_ context.Context) error { return nil }

type fakeTokenRepository struct{}

func (fakeTokenRepository) Set(_ context.Context, token, userID string, _ time.Duration) error {
	return nil
}
func (fakeTokenRepository) Get(_ context.Context, token string) (string, error) {
	return "", apperr.Unauthorized("Invalid or expired token")
}
func (fakeTokenRepository) Delete(_ context.Context, token string) error { return nil }

type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, username, role string, _ time.Duration) (string, error) {
	return "token-" + userID, nil
}

type fakeVerifier struct {
	claims map[string]*sec.AuthClaims
}

func (f *fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	claims, ok := f.claims[token]
	if !ok {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	return claims, nil
}

// # Fixture

type fixture struct {
	schema  gql.Schema
	authors *fakeAuthorRepository
	books   *fakeBookRepository
	reviews *fakeReviewRepository
	users   *fakeUserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	authorRepo := &fakeAuthorRepository{authors: map[int]*author.Author{}}
	bookRepo := &fakeBookRepository{books: map[string]*book.Book{}, images: map[string]*book.Image{}}
	reviewRepo := &fakeReviewRepository{reviews: map[string]*review.Review{}}
	userRepo := &fakeUserRepository{users: map[string]*auth.User{}}
	sessionRepo := &fakeSessionRepository{sessions: map[string]*auth.Session{}}

	logger := slog.Default()
	authorService := author.NewService(authorRepo, logger)
	bookService := book.NewService(bookRepo, authorService, nil, logger)
	reviewService := review.NewService(reviewRepo, logger)
	authService := auth.NewService(userRepo, sessionRepo, fakeTokenRepository{}, fakeTokenRepository{}, fakeTokenProvider{}, logger)

	schema, err := graphql.NewSchema(graphql.Services{
		Authors:  authorService,
		Books:    bookService,
		Reviews:  reviewService,
		Auth:     authService,
		Verifier: &fakeVerifier{claims: map[string]*sec.AuthClaims{"valid-token": {UserID: "u1", Username: "alice", Role: "member"}}},
	})
	require.NoError(t, err)

	return &fixture{schema: schema, authors: authorRepo, books: bookRepo, reviews: reviewRepo, users: userRepo}
}

func (f *fixture) exec(ctx context.Context, query string, vars map[string]interface{}) *gql.Result {
	return gql.Do(gql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        ctx,
	})
}

func contextWithRole(role sec.UserRole) context.Context {
	return ctxutil.WithAuthUser(context.Background(), &sec.AuthClaims{
		UserID:   "u1",
		Username: "alice",
		Role:     string(role),
	})
}

func (f *fixture) seedBook(t *testing.T) *book.Book {
	t.Helper()
	f.authors.authors[1] = &author.Author{ID: 1, Name: "Leo Tolstoy"}
	f.authors.nextID = 1
	seeded := &book.Book{
		ID:         "11111111-1111-4111-8111-111111111111",
		Title:      "War and Peace",
		Slug:       "war-and-peace",
		AuthorID:   1,
		AuthorName: "Leo Tolstoy",
	}
	f.books.books[seeded.ID] = seeded
	return seeded
}

// # Query Tests

func TestQuery_BooksWithNestedAuthor(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t)

	result := f.exec(context.Background(), `
		{
			books(search: "war") {
				totalCount
				items {
					title
					slug
					author { id name }
				}
			}
		}
	`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})["books"].(map[string]interface{})
	assert.Equal(t, 1, data["totalCount"])

	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "War and Peace", item["title"])
	assert.Equal(t, "Leo Tolstoy", item["author"].(map[string]interface{})["name"])
}

func TestQuery_BookBySlug(t *testing.T) {
	f := newFixture(t)
	f.seedBook(t)

	result := f.exec(context.Background(), `
		{
			book(slug: "war-and-peace") { id title }
		}
	`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})["book"].(map[string]interface{})
	assert.Equal(t, "War and Peace", data["title"])
}

func TestQuery_BookNeedsIdentifier(t *testing.T) {
	f := newFixture(t)

	result := f.exec(context.Background(), `{ book { id } }`, nil)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "id or slug")
}

func TestQuery_MeRequiresAuth(t *testing.T) {
	f := newFixture(t)

	anonymous := f.exec(context.Background(), `{ me { userId } }`, nil)
	require.NotEmpty(t, anonymous.Errors)

	authed := f.exec(contextWithRole(sec.RoleMember), `{ me { userId username role } }`, nil)
	require.Empty(t, authed.Errors)
	data := authed.Data.(map[string]interface{})["me"].(map[string]interface{})
	assert.Equal(t, "alice", data["username"])
}

// # Mutation Tests

func TestMutation_CreateBookRequiresLibrarian(t *testing.T) {
	f := newFixture(t)

	mutation := `
		mutation {
			createBook(title: "Anna Karenina", authorName: "Leo Tolstoy") {
				id
				title
				slug
				authorName
			}
		}
	`

	anonymous := f.exec(context.Background(), mutation, nil)
	require.NotEmpty(t, anonymous.Errors)

	member := f.exec(contextWithRole(sec.RoleMember), mutation, nil)
	require.NotEmpty(t, member.Errors)

	librarian := f.exec(contextWithRole(sec.RoleLibrarian), mutation, nil)
	require.Empty(t, librarian.Errors)

	data := librarian.Data.(map[string]interface{})["createBook"].(map[string]interface{})
	assert.Equal(t, "anna-karenina", data["slug"])
	assert.Equal(t, "Leo Tolstoy", data["authorName"])
	assert.Len(t, f.books.books, 1)
}

func TestMutation_CreateReviewUsesClaimsIdentity(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedBook(t)

	result := f.exec(contextWithRole(sec.RoleMember), `
		mutation($bookId: ID!) {
			createReview(bookId: $bookId, rating: 5, body: "A masterpiece.") {
				id
				userId
				username
				rating
			}
		}
	`, map[string]interface{}{"bookId": seeded.ID})
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})["createReview"].(map[string]interface{})
	assert.Equal(t, "u1", data["userId"])
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, 5, data["rating"])
}

func TestMutation_TokenAuthAndVerify(t *testing.T) {
	f := newFixture(t)

	hash, err := sec.HashPassword("long enough pw")
	require.NoError(t, err)
	f.users.users["u1"] = &auth.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         sec.RoleMember,
	}

	login := f.exec(context.Background(), `
		mutation {
			tokenAuth(login: "alice", password: "long enough pw") {
				token
				refreshToken
				user { username }
			}
		}
	`, nil)
	require.Empty(t, login.Errors)

	data := login.Data.(map[string]interface{})["tokenAuth"].(map[string]interface{})
	assert.Equal(t, "token-u1", data["token"])
	assert.NotEmpty(t, data["refreshToken"])

	verified := f.exec(context.Background(), `
		mutation {
			verifyToken(token: "valid-token") { userId username }
		}
	`, nil)
	require.Empty(t, verified.Errors)
	claims := verified.Data.(map[string]interface{})["verifyToken"].(map[string]interface{})
	assert.Equal(t, "u1", claims["userId"])

	rejected := f.exec(context.Background(), `
		mutation {
			verifyToken(token: "garbage") { userId }
		}
	`, nil)
	require.NotEmpty(t, rejected.Errors)
}

func TestMutation_WrongPasswordFails(t *testing.T) {
	f := newFixture(t)

	result := f.exec(context.Background(), `
		mutation {
			tokenAuth(login: "ghost", password: "whatever") { token }
		}
	`, nil)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "Invalid login credentials")
}
