package schema

// RefPreferencesTable represents the 'users.preferences' table
type RefPreferencesTable struct {
	Table        string
	UserID       string
	Theme        string
	BooksPerPage string
	DefaultSort  string
	EmailDigest  string
	HideSpoilers string
	UpdatedAt    string
}

// RefPreferences is the schema definition for users.preferences
var RefPreferences = RefPreferencesTable{
	Table:        "users.preferences",
	UserID:       "userid",
	Theme:        "theme",
	BooksPerPage: "booksperpage",
	DefaultSort:  "defaultsort",
	EmailDigest:  "emaildigest",
	HideSpoilers: "hidespoilers",
	UpdatedAt:    "updatedat",
}

func (t RefPreferencesTable) Columns() []string {
	return []string{t.UserID, t.Theme, t.BooksPerPage, t.DefaultSort, t.EmailDigest, t.HideSpoilers, t.UpdatedAt}
}
