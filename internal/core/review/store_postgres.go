package review

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libbyhq/libby/internal/platform/database/schema"
	"github.com/libbyhq/libby/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListByBook(context context.Context, bookID string, limit, offset int) ([]*Review, int, error) {
	return repository.list(context, schema.RefReview.BookID, bookID, limit, offset)
}

func (repository *PostgresRepository) ListByUser(context context.Context, userID string, limit, offset int) ([]*Review, int, error) {
	return repository.list(context, schema.RefReview.UserID, userID, limit, offset)
}

// list is the shared paginated lookup keyed on a single column, joining
// the account table for the reviewer's display username.
func (repository *PostgresRepository) list(context context.Context, column, value string, limit, offset int) ([]*Review, int, error) {
	query := fmt.Sprintf(`
		SELECT
			r.%s, r.%s, r.%s, r.%s, r.%s, r.%s, r.%s,
			u.%s AS username,
			COUNT(*) OVER() AS total_count
		FROM %s r
		JOIN %s u ON u.%s = r.%s
		WHERE r.%s = $1
		ORDER BY r.%s DESC
		LIMIT $2 OFFSET $3
	`,
		schema.RefReview.ID, schema.RefReview.BookID, schema.RefReview.UserID, schema.RefReview.Rating,
		schema.RefReview.Body, schema.RefReview.CreatedAt, schema.RefReview.UpdatedAt,
		schema.RefAccount.Username,
		schema.RefReview.Table,
		schema.RefAccount.Table, schema.RefAccount.ID, schema.RefReview.UserID,
		column,
		schema.RefReview.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, value, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reviews")
	}
	defer rows.Close()

	var reviews []*Review
	var total int
	for rows.Next() {
		review := &Review{}
		err := rows.Scan(
			&review.ID,
			&review.BookID,
			&review.UserID,
			&review.Rating,
			&review.Body,
			&review.CreatedAt,
			&review.UpdatedAt,
			&review.Username,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_review")
		}
		reviews = append(reviews, review)
	}

	return reviews, total, nil
}

func (repository *PostgresRepository) Get(context context.Context, id string) (*Review, error) {
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s, r.%s, r.%s, r.%s, u.%s AS username
		FROM %s r
		JOIN %s u ON u.%s = r.%s
		WHERE r.%s = $1
	`,
		schema.RefReview.ID, schema.RefReview.BookID, schema.RefReview.UserID, schema.RefReview.Rating,
		schema.RefReview.Body, schema.RefReview.CreatedAt, schema.RefReview.UpdatedAt,
		schema.RefAccount.Username,
		schema.RefReview.Table,
		schema.RefAccount.Table, schema.RefAccount.ID, schema.RefReview.UserID,
		schema.RefReview.ID,
	)

	review := &Review{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&review.ID,
		&review.BookID,
		&review.UserID,
		&review.Rating,
		&review.Body,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.Username,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_review")
	}

	return review, nil
}

func (repository *PostgresRepository) Create(context context.Context, review *Review) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s
	`,
		schema.RefReview.Table,
		schema.RefReview.ID, schema.RefReview.BookID, schema.RefReview.UserID, schema.RefReview.Rating, schema.RefReview.Body,
		schema.RefReview.CreatedAt, schema.RefReview.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		review.ID,
		review.BookID,
		review.UserID,
		review.Rating,
		review.Body,
	).Scan(&review.CreatedAt, &review.UpdatedAt)

	return dberr.Wrap(err, "create_review")
}

func (repository *PostgresRepository) Update(context context.Context, review *Review) error {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $1, %s = $2, %s = NOW() WHERE %s = $3",
		schema.RefReview.Table,
		schema.RefReview.Rating, schema.RefReview.Body, schema.RefReview.UpdatedAt,
		schema.RefReview.ID,
	)

	result, err := repository.db.Exec(context, query, review.Rating, review.Body, review.ID)
	if err != nil {
		return dberr.Wrap(err, "update_review")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.RefReview.Table, schema.RefReview.ID)

	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_review")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
