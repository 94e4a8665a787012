package schema

// RefBookImageTable represents the 'core.bookimage' table
type RefBookImageTable struct {
	Table     string
	ID        string
	BookID    string
	URL       string
	ObjectKey string
	Caption   string
	Position  string
	CreatedAt string
}

// RefBookImage is the schema definition for core.bookimage
var RefBookImage = RefBookImageTable{
	Table:     "core.bookimage",
	ID:        "id",
	BookID:    "bookid",
	URL:       "url",
	ObjectKey: "objectkey",
	Caption:   "caption",
	Position:  "position",
	CreatedAt: "createdat",
}

func (t RefBookImageTable) Columns() []string {
	return []string{t.ID, t.BookID, t.URL, t.ObjectKey, t.Caption, t.Position, t.CreatedAt}
}
