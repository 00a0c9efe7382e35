package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Class identifies one of the two asset categories. Each class owns its
// own directory and validation rules.
type Class string

const (
	ClassPictures  Class = "pictures"
	ClassDownloads Class = "downloads"
)

// ParseClass converts a URL path segment into a Class.
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case ClassPictures, ClassDownloads:
		return Class(s), nil
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}

var (
	// ErrNotFound is returned when a filename or book-id scan matches nothing.
	ErrNotFound = errors.New("file not found")
	// ErrUnsafeName is returned for names that could escape the class directory.
	ErrUnsafeName = errors.New("unsafe filename")
)

// Entry describes one stored asset as reported by List.
type Entry struct {
	Filename string    `json:"filename"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store owns the directory for a single asset class. Every operation is
// confined to that directory; names carrying separators or dot-dot are
// rejected before any filesystem call.
type Store struct {
	class Class
	dir   string
}

// NewStore creates a store rooted at {basePath}/{class}.
func NewStore(class Class, basePath string) *Store {
	return &Store{
		class: class,
		dir:   filepath.Join(basePath, string(class)),
	}
}

// Class returns the asset class this store owns.
func (s *Store) Class() Class {
	return s.class
}

// EnsureDir creates the class directory if it doesn't exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create asset directory %s: %w", s.dir, err)
	}
	return nil
}

// URL returns the public serving path for a stored filename.
func (s *Store) URL(filename string) string {
	return fmt.Sprintf("/db/%s/%s", s.class, filename)
}

// List enumerates the stored assets. Order is whatever the filesystem
// reports; callers must not rely on it.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset directory %s: %w", s.dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", de.Name(), err)
		}
		entries = append(entries, Entry{
			Filename: de.Name(),
			URL:      s.URL(de.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return entries, nil
}

// Save writes data to {dir}/{filename}, truncating any existing file with
// that name. Returns the number of bytes written.
func (s *Store) Save(filename string, data io.Reader) (int64, error) {
	filePath, err := s.safePath(filename)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up partial file on error
		os.Remove(filePath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return n, nil
}

// Path returns the absolute path to a stored asset, or ErrNotFound.
func (s *Store) Path(filename string) (string, error) {
	filePath, err := s.safePath(filename)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	return filePath, nil
}

// Delete removes a single stored asset. Returns ErrNotFound if it is absent.
func (s *Store) Delete(filename string) error {
	filePath, err := s.safePath(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// DeleteByBookID removes every file named {bookID}.<anything> and returns
// the removed names. A name like "10.png" never matches bookID "1": the
// match is on the full "{bookID}." prefix. Returns ErrNotFound when the
// scan matches nothing. On a mid-scan failure the names removed so far are
// returned alongside the error.
func (s *Store) DeleteByBookID(bookID string) ([]string, error) {
	if bookID == "" || strings.ContainsAny(bookID, `/\.`) {
		return nil, fmt.Errorf("%w: %q", ErrUnsafeName, bookID)
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset directory %s: %w", s.dir, err)
	}

	prefix := bookID + "."
	var deleted []string
	matched := false
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasPrefix(de.Name(), prefix) {
			continue
		}
		matched = true
		if err := os.Remove(filepath.Join(s.dir, de.Name())); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", de.Name(), err)
		}
		deleted = append(deleted, de.Name())
	}

	if !matched {
		return nil, ErrNotFound
	}
	return deleted, nil
}

// safePath joins filename onto the class directory, rejecting anything
// that could resolve outside it.
func (s *Store) safePath(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, filename)
	}
	return filepath.Join(s.dir, filename), nil
}
