package review

import (
	"context"
	"log/slog"

	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/validate"
	"github.com/libbyhq/libby/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListByBook(context context.Context, bookID string, limit, offset int) ([]*Review, int, error) {
	return service.repo.ListByBook(context, bookID, limit, offset)
}

func (service *Service) ListByUser(context context.Context, userID string, limit, offset int) ([]*Review, int, error) {
	return service.repo.ListByUser(context, userID, limit, offset)
}

func (service *Service) GetReview(context context.Context, id string) (*Review, error) {
	return service.repo.Get(context, id)
}

// CreateReview records a reader's rating for a book. The one-review-per-
// reader rule is enforced by a unique constraint; a second attempt
// surfaces as a Conflict.
func (service *Service) CreateReview(context context.Context, review *Review) error {
	validator := &validate.Validator{}
	validator.Required(FieldBookID, review.BookID).UUID(FieldBookID, review.BookID)
	validator.Required(FieldUserID, review.UserID)
	validator.Range(FieldRating, review.Rating, MinRating, MaxRating)
	validator.MaxLen(FieldBody, review.Body, 5000)

	if err := validator.Err(); err != nil {
		return err
	}

	if review.ID == "" {
		review.ID = uuid.New()
	}

	if err := service.repo.Create(context, review); err != nil {
		return err
	}

	service.logger.Info("review_created",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
		slog.Int("rating", review.Rating),
	)
	return nil
}

// UpdateReview lets the review's owner revise their rating or commentary.
func (service *Service) UpdateReview(context context.Context, id, actorID string, rating int, body string) (*Review, error) {
	validator := &validate.Validator{}
	validator.Range(FieldRating, rating, MinRating, MaxRating)
	validator.MaxLen(FieldBody, body, 5000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.repo.Get(context, id)
	if err != nil {
		return nil, err
	}

	if existing.UserID != actorID {
		return nil, apperr.Forbidden("You can only edit your own reviews")
	}

	existing.Rating = rating
	existing.Body = body

	if err := service.repo.Update(context, existing); err != nil {
		return nil, err
	}

	service.logger.Info("review_updated", slog.String("review_id", id))
	return existing, nil
}

// DeleteReview removes a review. Owners may always remove their own;
// moderators may remove anyone's.
func (service *Service) DeleteReview(context context.Context, id, actorID string, actorIsModerator bool) error {
	existing, err := service.repo.Get(context, id)
	if err != nil {
		return err
	}

	if existing.UserID != actorID && !actorIsModerator {
		return apperr.Forbidden("You can only delete your own reviews")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("review_deleted",
		slog.String("review_id", id),
		slog.String("actor_id", actorID),
	)
	return nil
}
