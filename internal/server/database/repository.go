package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrBookExists     = errors.New("book id already exists")
	ErrStaticNotFound = errors.New("static resources not found")
	ErrStaticExists   = errors.New("static entry for this book id already exists")
)

// uniqueViolation is the Postgres error code for duplicate primary keys.
const uniqueViolation = "23505"

// Repository provides CRUD operations for books and their static resources.
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a new book record.
func (r *Repository) CreateBook(ctx context.Context, book *Book) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO books (books_id, name, author_name, category, description)
		VALUES ($1, $2, $3, $4, $5)
	`,
		book.ID,
		book.Name,
		book.AuthorName,
		book.Category,
		book.Description,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrBookExists
		}
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBook retrieves a book with its static resources, if any.
func (r *Repository) GetBook(ctx context.Context, id int64) (*BookWithStatic, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT b.books_id, b.name, b.author_name, b.category, b.description,
			   s.books_id, s.picture_url, s.download_url
		FROM books b
		LEFT JOIN books_static s ON s.books_id = b.books_id
		WHERE b.books_id = $1
	`, id)

	book, err := scanBookWithStatic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// ListBooks retrieves all books, each joined with its static resources.
func (r *Repository) ListBooks(ctx context.Context) ([]*BookWithStatic, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT b.books_id, b.name, b.author_name, b.category, b.description,
			   s.books_id, s.picture_url, s.download_url
		FROM books b
		LEFT JOIN books_static s ON s.books_id = b.books_id
		ORDER BY b.books_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*BookWithStatic
	for rows.Next() {
		book, err := scanBookWithStatic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// UpdateBook updates the provided (non-nil) fields of a book.
func (r *Repository) UpdateBook(ctx context.Context, id int64, name, authorName, category, description *string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE books SET
			name        = COALESCE($2, name),
			author_name = COALESCE($3, author_name),
			category    = COALESCE($4, category),
			description = COALESCE($5, description)
		WHERE books_id = $1
	`, id, name, authorName, category, description)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// DeleteBook removes a book; its static resources row is removed by the
// foreign-key cascade.
func (r *Repository) DeleteBook(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, "DELETE FROM books WHERE books_id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// CountBooks returns the number of catalog entries.
func (r *Repository) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// CreateStatic inserts the static-resources row for a book.
func (r *Repository) CreateStatic(ctx context.Context, res *StaticResource) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO books_static (books_id, picture_url, download_url)
		VALUES ($1, $2, $3)
	`, res.BookID, res.PictureURL, res.DownloadURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrStaticExists
		}
		return fmt.Errorf("failed to create static resources: %w", err)
	}
	return nil
}

// GetStatic retrieves the static-resources row for a book.
func (r *Repository) GetStatic(ctx context.Context, bookID int64) (*StaticResource, error) {
	res := &StaticResource{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT books_id, picture_url, download_url
		FROM books_static WHERE books_id = $1
	`, bookID).Scan(&res.BookID, &res.PictureURL, &res.DownloadURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaticNotFound
		}
		return nil, fmt.Errorf("failed to get static resources: %w", err)
	}
	return res, nil
}

// UpdateStatic updates the provided (non-nil) URLs of a static-resources row.
func (r *Repository) UpdateStatic(ctx context.Context, bookID int64, pictureURL, downloadURL *string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE books_static SET
			picture_url  = COALESCE($2, picture_url),
			download_url = COALESCE($3, download_url)
		WHERE books_id = $1
	`, bookID, pictureURL, downloadURL)
	if err != nil {
		return fmt.Errorf("failed to update static resources: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaticNotFound
	}
	return nil
}

// DeleteStatic removes the static-resources row for a book.
func (r *Repository) DeleteStatic(ctx context.Context, bookID int64) error {
	tag, err := r.db.Pool.Exec(ctx, "DELETE FROM books_static WHERE books_id = $1", bookID)
	if err != nil {
		return fmt.Errorf("failed to delete static resources: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaticNotFound
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookWithStatic(row rowScanner) (*BookWithStatic, error) {
	book := &BookWithStatic{}
	var staticID *int64
	var pictureURL, downloadURL *string

	if err := row.Scan(
		&book.ID,
		&book.Name,
		&book.AuthorName,
		&book.Category,
		&book.Description,
		&staticID,
		&pictureURL,
		&downloadURL,
	); err != nil {
		return nil, err
	}

	if staticID != nil {
		book.Static = &StaticResource{
			BookID:      *staticID,
			PictureURL:  pictureURL,
			DownloadURL: downloadURL,
		}
	}
	return book, nil
}
