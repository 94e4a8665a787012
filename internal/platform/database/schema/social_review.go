package schema

// RefReviewTable represents the 'social.review' table
type RefReviewTable struct {
	Table     string
	ID        string
	BookID    string
	UserID    string
	Rating    string
	Body      string
	CreatedAt string
	UpdatedAt string
}

// RefReview is the schema definition for social.review
var RefReview = RefReviewTable{
	Table:     "social.review",
	ID:        "id",
	BookID:    "bookid",
	UserID:    "userid",
	Rating:    "rating",
	Body:      "body",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t RefReviewTable) Columns() []string {
	return []string{t.ID, t.BookID, t.UserID, t.Rating, t.Body, t.CreatedAt, t.UpdatedAt}
}
