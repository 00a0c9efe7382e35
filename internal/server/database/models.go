package database

// Book is one catalog entry.
type Book struct {
	ID          int64
	Name        string
	AuthorName  string
	Category    *string // nil when not set
	Description *string
}

// StaticResource holds the asset URLs associated with a book.
type StaticResource struct {
	BookID      int64
	PictureURL  *string
	DownloadURL *string
}

// BookWithStatic joins a book with its optional static resources.
type BookWithStatic struct {
	Book
	Static *StaticResource // nil when no row exists
}
