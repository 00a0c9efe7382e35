package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shelf/internal/server/database"
)

// ErrMissingFields is returned when a book payload lacks required fields.
var ErrMissingFields = errors.New("missing required fields")

// BookInput is the inbound payload for creating or updating a book.
// Pointer fields distinguish "absent" from "empty".
type BookInput struct {
	ID          *int64  `json:"books_id"`
	Name        *string `json:"name"`
	AuthorName  *string `json:"author_name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	PictureURL  *string `json:"picture_url"`
	DownloadURL *string `json:"download_url"`
}

// StaticView is the JSON shape of a book's static resources.
type StaticView struct {
	PictureURL  *string `json:"picture_url"`
	DownloadURL *string `json:"download_url"`
}

// BookView is the JSON shape of a catalog entry.
type BookView struct {
	ID              int64       `json:"books_id"`
	Name            string      `json:"name"`
	AuthorName      string      `json:"author_name"`
	Category        *string     `json:"category"`
	Description     *string     `json:"description"`
	StaticResources *StaticView `json:"static_resources"`
}

// BookService wraps the catalog repository and owns the default static-URL
// patterns used when a resource row is created without explicit URLs.
type BookService struct {
	repo    *database.Repository
	baseURL string
}

// NewBookService creates a new book service.
func NewBookService(repo *database.Repository, baseURL string) *BookService {
	return &BookService{repo: repo, baseURL: baseURL}
}

// AddBook creates a catalog entry and, when asset URLs are supplied,
// its static-resources row.
func (s *BookService) AddBook(ctx context.Context, in *BookInput) error {
	if in.ID == nil || in.Name == nil || in.AuthorName == nil {
		return ErrMissingFields
	}

	book := &database.Book{
		ID:          *in.ID,
		Name:        *in.Name,
		AuthorName:  *in.AuthorName,
		Category:    in.Category,
		Description: in.Description,
	}
	if err := s.repo.CreateBook(ctx, book); err != nil {
		return err
	}

	if in.PictureURL != nil || in.DownloadURL != nil {
		if err := s.AddStatic(ctx, book.ID, in.PictureURL, in.DownloadURL); err != nil {
			return err
		}
	}

	slog.Info("book added", "books_id", book.ID, "name", book.Name)
	return nil
}

// ListBooks returns all catalog entries with nested static resources.
func (s *BookService) ListBooks(ctx context.Context) ([]*BookView, error) {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*BookView, 0, len(books))
	for _, b := range books {
		views = append(views, toBookView(b))
	}
	return views, nil
}

// GetBook returns one catalog entry with nested static resources.
func (s *BookService) GetBook(ctx context.Context, id int64) (*BookView, error) {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookView(book), nil
}

// UpdateBook applies the provided fields to a book; static URLs, when
// present, are applied to its resources row.
func (s *BookService) UpdateBook(ctx context.Context, id int64, in *BookInput) error {
	if err := s.repo.UpdateBook(ctx, id, in.Name, in.AuthorName, in.Category, in.Description); err != nil {
		return err
	}

	if in.PictureURL != nil || in.DownloadURL != nil {
		if err := s.repo.UpdateStatic(ctx, id, in.PictureURL, in.DownloadURL); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBook removes a book; the static-resources row goes with it via the
// foreign-key cascade.
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	slog.Info("book deleted", "books_id", id)
	return nil
}

// AddStatic creates the static-resources row for a book. Omitted URLs
// default to the conventional asset locations for that book id.
func (s *BookService) AddStatic(ctx context.Context, bookID int64, pictureURL, downloadURL *string) error {
	if pictureURL == nil {
		u := fmt.Sprintf("%s/db/pictures/%d.png", s.baseURL, bookID)
		pictureURL = &u
	}
	if downloadURL == nil {
		u := fmt.Sprintf("%s/db/downloads/%d.pdf", s.baseURL, bookID)
		downloadURL = &u
	}

	return s.repo.CreateStatic(ctx, &database.StaticResource{
		BookID:      bookID,
		PictureURL:  pictureURL,
		DownloadURL: downloadURL,
	})
}

// GetStatic returns the static-resources row for a book.
func (s *BookService) GetStatic(ctx context.Context, bookID int64) (*database.StaticResource, error) {
	return s.repo.GetStatic(ctx, bookID)
}

// UpdateStatic applies the provided URLs to a static-resources row.
func (s *BookService) UpdateStatic(ctx context.Context, bookID int64, pictureURL, downloadURL *string) error {
	return s.repo.UpdateStatic(ctx, bookID, pictureURL, downloadURL)
}

// DeleteStatic removes the static-resources row for a book.
func (s *BookService) DeleteStatic(ctx context.Context, bookID int64) error {
	return s.repo.DeleteStatic(ctx, bookID)
}

// CountBooks returns the catalog size for the stats endpoint.
func (s *BookService) CountBooks(ctx context.Context) (int64, error) {
	return s.repo.CountBooks(ctx)
}

func toBookView(b *database.BookWithStatic) *BookView {
	view := &BookView{
		ID:          b.ID,
		Name:        b.Name,
		AuthorName:  b.AuthorName,
		Category:    b.Category,
		Description: b.Description,
	}
	if b.Static != nil {
		view.StaticResources = &StaticView{
			PictureURL:  b.Static.PictureURL,
			DownloadURL: b.Static.DownloadURL,
		}
	}
	return view
}
