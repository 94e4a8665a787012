package review

import "context"

type Repository interface {
	ListByBook(context context.Context, bookID string, limit, offset int) ([]*Review, int, error)
	ListByUser(context context.Context, userID string, limit, offset int) ([]*Review, int, error)
	Get(context context.Context, id string) (*Review, error)
	Create(context context.Context, review *Review) error
	Update(context context.Context, review *Review) error
	Delete(context context.Context, id string) error
}
