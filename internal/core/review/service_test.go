package review_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/core/review"
	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/dberr"
	"github.com/libbyhq/libby/pkg/uuid"
)

// fakeRepository is an in-memory Repository enforcing the
// one-review-per-reader constraint the way the database would.
type fakeRepository struct {
	reviews map[string]*review.Review
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{reviews: map[string]*review.Review{}}
}

func (f *fakeRepository) ListByBook(_ context.Context, bookID string, limit, offset int) ([]*review.Review, int, error) {
	var out []*review.Review
	for _, r := range f.reviews {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*review.Review, int, error) {
	var out []*review.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) Get(_ context.Context, id string) (*review.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepository) Create(_ context.Context, r *review.Review) error {
	for _, existing := range f.reviews {
		if existing.BookID == r.BookID && existing.UserID == r.UserID {
			return apperr.Conflict("Resource already exists")
		}
	}
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeRepository) Update(_ context.Context, r *review.Review) error {
	if _, ok := f.reviews[r.ID]; !ok {
		return dberr.ErrNotFound
	}
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.reviews[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func newService(repo review.Repository) *review.Service {
	return review.NewService(repo, slog.Default())
}

func TestCreateReview_RatingBounds(t *testing.T) {
	service := newService(newFakeRepository())
	bookID := uuid.New()

	cases := []struct {
		name    string
		rating  int
		wantErr bool
	}{
		{"below minimum", 0, true},
		{"minimum", 1, false},
		{"maximum", 5, false},
		{"above maximum", 6, true},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			err := service.CreateReview(context.Background(), &review.Review{
				BookID: bookID,
				UserID: "reader-" + testCase.name,
				Rating: testCase.rating,
			})
			if testCase.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateReview_OnePerReader(t *testing.T) {
	service := newService(newFakeRepository())
	bookID := uuid.New()

	first := &review.Review{BookID: bookID, UserID: "reader-1", Rating: 4}
	require.NoError(t, service.CreateReview(context.Background(), first))

	second := &review.Review{BookID: bookID, UserID: "reader-1", Rating: 2}
	err := service.CreateReview(context.Background(), second)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// A different reader is still free to review
	third := &review.Review{BookID: bookID, UserID: "reader-2", Rating: 5}
	assert.NoError(t, service.CreateReview(context.Background(), third))
}

func TestUpdateReview_OwnerOnly(t *testing.T) {
	service := newService(newFakeRepository())
	bookID := uuid.New()

	original := &review.Review{BookID: bookID, UserID: "owner", Rating: 3, Body: "fine"}
	require.NoError(t, service.CreateReview(context.Background(), original))

	// Stranger is rejected
	_, err := service.UpdateReview(context.Background(), original.ID, "stranger", 5, "great")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Owner succeeds
	updated, err := service.UpdateReview(context.Background(), original.ID, "owner", 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "great", updated.Body)
}

func TestDeleteReview_OwnerOrModerator(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	bookID := uuid.New()

	mine := &review.Review{BookID: bookID, UserID: "owner", Rating: 4}
	require.NoError(t, service.CreateReview(context.Background(), mine))

	// Stranger without moderator rights is rejected
	err := service.DeleteReview(context.Background(), mine.ID, "stranger", false)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Moderator may remove anyone's review
	require.NoError(t, service.DeleteReview(context.Background(), mine.ID, "stranger", true))
	assert.Empty(t, repo.reviews)
}
