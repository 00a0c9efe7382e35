package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"shelf/internal/server/storage"
)

// Sentinel errors for the asset service. Handlers map these to HTTP codes.
var (
	ErrNotFound            = errors.New("file not found")
	ErrMissingFile         = errors.New("no file provided")
	ErrInvalidFilename     = errors.New("invalid filename")
	ErrInvalidBookID       = errors.New("invalid book id")
	ErrExtensionNotAllowed = errors.New("file type not allowed")
	ErrContentNotAllowed   = errors.New("invalid file content")
	ErrMissingIdentifier   = errors.New("neither filename nor book_id provided")
)

// AssetResult is returned after a successful save.
type AssetResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// ClassStats aggregates the stored assets of one class.
type ClassStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// AssetService owns the upload, listing, deletion and path-resolution
// logic for every asset class.
type AssetService struct {
	stores map[storage.Class]*storage.Store
}

// NewAssetService creates an asset service over the given class stores.
func NewAssetService(stores ...*storage.Store) *AssetService {
	m := make(map[storage.Class]*storage.Store, len(stores))
	for _, s := range stores {
		m[s.Class()] = s
	}
	return &AssetService{stores: m}
}

// Save validates an upload and writes it into the class directory.
// Acceptance requires both the extension allow-list and the content sniff
// to pass. A duplicate resolved name silently overwrites the previous
// bytes; the filesystem namespace is the uniqueness authority.
func (s *AssetService) Save(class storage.Class, clientName, bookID string, data io.ReadSeeker) (*AssetResult, error) {
	filename, err := resolveFilename(clientName, bookID, class)
	if err != nil {
		return nil, err
	}

	if !isAcceptableContent(data, class) {
		return nil, ErrContentNotAllowed
	}

	store := s.stores[class]
	n, err := store.Save(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store asset: %w", err)
	}

	slog.Info("asset stored",
		"class", class,
		"filename", filename,
		"bytes", n,
	)

	return &AssetResult{
		Filename: filename,
		URL:      store.URL(filename),
		Size:     n,
	}, nil
}

// List enumerates the assets of a class.
func (s *AssetService) List(class storage.Class) ([]storage.Entry, error) {
	entries, err := s.stores[class].List()
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return entries, nil
}

// DeleteByFilename removes a single asset by its exact (sanitized) name.
func (s *AssetService) DeleteByFilename(class storage.Class, filename string) error {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return err
	}

	if err := s.stores[class].Delete(name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	slog.Info("asset deleted", "class", class, "filename", name)
	return nil
}

// DeleteByBookID removes every asset named {bookID}.* in the class
// directory. The returned slice always reflects what was actually removed,
// including on partial failure, so callers can report it.
func (s *AssetService) DeleteByBookID(class storage.Class, bookID string) ([]string, error) {
	if !bookIDPattern.MatchString(bookID) {
		return nil, ErrInvalidBookID
	}

	deleted, err := s.stores[class].DeleteByBookID(bookID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return deleted, fmt.Errorf("failed to delete assets for book %s: %w", bookID, err)
	}

	slog.Info("assets deleted by book id",
		"class", class,
		"book_id", bookID,
		"deleted", deleted,
	)
	return deleted, nil
}

// ResolvePath sanitizes a requested filename and returns its on-disk path
// for serving, or ErrNotFound.
func (s *AssetService) ResolvePath(class storage.Class, filename string) (string, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	path, err := s.stores[class].Path(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve asset path: %w", err)
	}
	return path, nil
}

// Stats reports per-class asset counts and byte totals.
func (s *AssetService) Stats() (map[storage.Class]ClassStats, error) {
	stats := make(map[storage.Class]ClassStats, len(s.stores))
	for class, store := range s.stores {
		entries, err := store.List()
		if err != nil {
			return nil, fmt.Errorf("failed to collect stats for %s: %w", class, err)
		}
		cs := ClassStats{Count: len(entries)}
		for _, e := range entries {
			cs.Bytes += e.Size
		}
		stats[class] = cs
	}
	return stats, nil
}
