package schema

// RefBookTable represents the 'core.book' table
type RefBookTable struct {
	Table       string
	ID          string
	Title       string
	Slug        string
	Subtitle    string
	Description string
	AuthorID    string
	ISBN        string
	Pages       string
	PublishedAt string
	CoverURL    string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// RefBook is the schema definition for core.book
var RefBook = RefBookTable{
	Table:       "core.book",
	ID:          "id",
	Title:       "title",
	Slug:        "slug",
	Subtitle:    "subtitle",
	Description: "description",
	AuthorID:    "authorid",
	ISBN:        "isbn",
	Pages:       "pages",
	PublishedAt: "publishedat",
	CoverURL:    "coverurl",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

func (t RefBookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Subtitle, t.Description, t.AuthorID,
		t.ISBN, t.Pages, t.PublishedAt, t.CoverURL, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
