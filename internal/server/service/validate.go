package service

import (
	"errors"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"shelf/internal/server/storage"

	"github.com/gabriel-vasile/mimetype"
)

// Extension allow-lists per asset class. An upload must pass this check
// AND the content sniff: a filename can lie, the sniffed bytes must agree.
var allowedExtensions = map[storage.Class]map[string]bool{
	storage.ClassPictures: {
		"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
	},
	storage.ClassDownloads: {
		"pdf": true, "doc": true, "docx": true, "txt": true, "zip": true, "rar": true,
	},
}

var allowedMIMEPrefixes = map[storage.Class][]string{
	storage.ClassPictures:  {"image/"},
	storage.ClassDownloads: {"application/", "text/"},
}

// sniffLen is how many leading bytes are inspected to infer the MIME type.
const sniffLen = 1024

var bookIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// fileExtension returns the lower-cased extension without the leading dot,
// or "" when the name has none.
func fileExtension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// hasAllowedExtension checks the filename extension against the class allow-list.
func hasAllowedExtension(filename string, class storage.Class) bool {
	return allowedExtensions[class][fileExtension(filename)]
}

// isAcceptableContent sniffs the leading bytes of data and checks the
// detected MIME type against the class allow-list. The reader is rewound
// to the start afterwards so the caller can hand it straight to storage.
// Returns false on any read or seek failure, never an error.
func isAcceptableContent(data io.ReadSeeker, class storage.Class) bool {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(data, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		slog.Error("failed to read upload for content sniffing", "error", err)
		return false
	}

	if _, err := data.Seek(0, io.SeekStart); err != nil {
		slog.Error("failed to rewind upload after content sniffing", "error", err)
		return false
	}

	mime := mimetype.Detect(buf[:n]).String()
	for _, prefix := range allowedMIMEPrefixes[class] {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	return false
}

// sanitizeFilename strips directory components and reduces the name to a
// safe character set (letters, digits, '.', '_', '-'; spaces become '_').
// Leading and trailing dots are dropped, so "." and ".." can never survive.
func sanitizeFilename(name string) (string, error) {
	// Normalize Windows-style backslashes before path.Base, which only
	// understands forward slashes.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	name = strings.Trim(b.String(), "._")
	if name == "" {
		return "", ErrInvalidFilename
	}
	return name, nil
}

// resolveFilename derives the on-disk name for an upload. With a book id
// the asset is stored as {bookID}.{ext}, so each book holds at most one
// current asset per class and re-uploads overwrite the previous one.
func resolveFilename(clientName, bookID string, class storage.Class) (string, error) {
	name, err := sanitizeFilename(clientName)
	if err != nil {
		return "", err
	}
	if !hasAllowedExtension(name, class) {
		return "", ErrExtensionNotAllowed
	}

	if bookID == "" {
		return name, nil
	}
	if !bookIDPattern.MatchString(bookID) {
		return "", ErrInvalidBookID
	}
	return bookID + "." + fileExtension(name), nil
}
