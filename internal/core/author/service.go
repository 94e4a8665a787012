package author

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/libbyhq/libby/internal/platform/dberr"
	"github.com/libbyhq/libby/internal/platform/validate"
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

func (service *Service) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	return service.repo.ListAuthors(context, filter, limit, offset)
}

func (service *Service) GetAuthor(context context.Context, id int) (*Author, error) {
	return service.repo.GetAuthor(context, id)
}

func (service *Service) CreateAuthor(context context.Context, author *Author) error {
	validator := &validate.Validator{}

	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, 200)
	if author.ImageURL != nil {
		validator.URL(FieldImageURL, *author.ImageURL)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateAuthor(context, author); err != nil {
		return err
	}

	service.logger.Info("author_created", slog.String("name", author.Name))
	return nil
}

func (service *Service) UpdateAuthor(context context.Context, id int, author *Author) error {
	author.ID = id
	validator := &validate.Validator{}

	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, 200)
	if author.ImageURL != nil {
		validator.URL(FieldImageURL, *author.ImageURL)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateAuthor(context, author); err != nil {
		return err
	}

	service.logger.Info("author_updated", slog.Int("author_id", author.ID))
	return nil
}

func (service *Service) DeleteAuthor(context context.Context, id int) error {
	if err := service.repo.DeleteAuthor(context, id); err != nil {
		return err
	}

	service.logger.Warn("author_deleted", slog.Int("author_id", id))
	return nil
}

// ResolveByName finds an author by exact name, creating one when absent.
//
// Book create/update accepts an author name instead of an ID; this keeps that
// path race-tolerant enough for catalogue workflows (a lost race surfaces as
// a unique-violation Conflict from the store).
func (service *Service) ResolveByName(context context.Context, name string) (*Author, error) {
	trimmed := strings.TrimSpace(name)

	validator := &validate.Validator{}
	validator.Required(FieldName, trimmed).MaxLen(FieldName, trimmed, 200)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.repo.FindByName(context, trimmed)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, err
	}

	created := &Author{Name: trimmed}
	if err := service.repo.CreateAuthor(context, created); err != nil {
		return nil, err
	}

	service.logger.Info("author_autocreated", slog.String("name", trimmed))
	return created, nil
}
