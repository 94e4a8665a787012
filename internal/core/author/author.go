package author

import "time"

// Author represents the writer of one or more books in the catalogue.
type Author struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Bio       *string    `json:"bio"`
	ImageURL  *string    `json:"image_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // soft-delete tracker
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Case-insensitive search against name
}

// Global field names for validation
const (
	FieldName     = "name"
	FieldBio      = "bio"
	FieldImageURL = "image_url"
)
