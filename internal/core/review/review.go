package review

import "time"

// Review is a reader's rating and commentary on a book. A reader may
// review a given book at most once.
type Review struct {
	ID       string `json:"id"`
	BookID   string `json:"book_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"` // Denormalized for display
	Rating   int    `json:"rating"`             // 1..5 stars
	Body     string `json:"body,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rating bounds enforced at both the service and schema level.
const (
	MinRating = 1
	MaxRating = 5
)

const (
	FieldID     = "id"
	FieldBookID = "book_id"
	FieldUserID = "user_id"
	FieldRating = "rating"
	FieldBody   = "body"
)
