package service

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"shelf/internal/server/storage"
)

// pngHeader is the PNG file signature; enough for MIME detection.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"cover.png", "png"},
		{"COVER.PNG", "png"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"trailingdot.", ""},
	}

	for _, tt := range tests {
		if got := fileExtension(tt.name); got != tt.expected {
			t.Errorf("fileExtension(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestHasAllowedExtension(t *testing.T) {
	t.Run("pictures", func(t *testing.T) {
		for _, name := range []string{"a.png", "a.jpg", "a.jpeg", "a.gif", "a.webp", "A.JPG"} {
			if !hasAllowedExtension(name, storage.ClassPictures) {
				t.Errorf("expected %s to be allowed for pictures", name)
			}
		}
		for _, name := range []string{"a.pdf", "a.txt", "a.exe", "a", "a.png.exe"} {
			if hasAllowedExtension(name, storage.ClassPictures) {
				t.Errorf("expected %s to be rejected for pictures", name)
			}
		}
	})

	t.Run("downloads", func(t *testing.T) {
		for _, name := range []string{"a.pdf", "a.doc", "a.docx", "a.txt", "a.zip", "a.rar"} {
			if !hasAllowedExtension(name, storage.ClassDownloads) {
				t.Errorf("expected %s to be allowed for downloads", name)
			}
		}
		for _, name := range []string{"a.png", "a.exe", "a"} {
			if hasAllowedExtension(name, storage.ClassDownloads) {
				t.Errorf("expected %s to be rejected for downloads", name)
			}
		}
	})
}

func TestIsAcceptableContent(t *testing.T) {
	t.Run("png bytes accepted for pictures", func(t *testing.T) {
		if !isAcceptableContent(bytes.NewReader(pngHeader), storage.ClassPictures) {
			t.Error("expected PNG content to be accepted for pictures")
		}
	})

	t.Run("jpeg bytes accepted for pictures", func(t *testing.T) {
		jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
		if !isAcceptableContent(bytes.NewReader(jpeg), storage.ClassPictures) {
			t.Error("expected JPEG content to be accepted for pictures")
		}
	})

	t.Run("text content rejected for pictures", func(t *testing.T) {
		if isAcceptableContent(bytes.NewReader([]byte("just some text")), storage.ClassPictures) {
			t.Error("expected text content to be rejected for pictures")
		}
	})

	t.Run("pdf bytes accepted for downloads", func(t *testing.T) {
		if !isAcceptableContent(bytes.NewReader([]byte("%PDF-1.4\n")), storage.ClassDownloads) {
			t.Error("expected PDF content to be accepted for downloads")
		}
	})

	t.Run("text content accepted for downloads", func(t *testing.T) {
		if !isAcceptableContent(bytes.NewReader([]byte("plain text document")), storage.ClassDownloads) {
			t.Error("expected text content to be accepted for downloads")
		}
	})

	t.Run("image content rejected for downloads", func(t *testing.T) {
		if isAcceptableContent(bytes.NewReader(pngHeader), storage.ClassDownloads) {
			t.Error("expected image content to be rejected for downloads")
		}
	})

	t.Run("reader is rewound after sniffing", func(t *testing.T) {
		r := bytes.NewReader(pngHeader)
		if !isAcceptableContent(r, storage.ClassPictures) {
			t.Fatal("expected PNG content to be accepted")
		}

		rest, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(rest, pngHeader) {
			t.Error("expected reader position reset to the start")
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "cover.png", "cover.png"},
		{"strips directory", "/path/to/cover.png", "cover.png"},
		{"strips windows path", `C:\Users\test\cover.png`, "cover.png"},
		{"traversal collapses to base", "../../etc/passwd", "passwd"},
		{"spaces become underscores", "my cover.png", "my_cover.png"},
		{"odd characters dropped", "co?ver*.png", "cover.png"},
		{"leading dots stripped", "..hidden.png", "hidden.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeFilename(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	t.Run("empty results error", func(t *testing.T) {
		for _, input := range []string{"", ".", "..", "///", "???"} {
			if _, err := sanitizeFilename(input); !errors.Is(err, ErrInvalidFilename) {
				t.Errorf("sanitizeFilename(%q): expected ErrInvalidFilename, got %v", input, err)
			}
		}
	})
}

func TestResolveFilename(t *testing.T) {
	t.Run("without book id keeps sanitized name", func(t *testing.T) {
		name, err := resolveFilename("my cover.png", "", storage.ClassPictures)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "my_cover.png" {
			t.Errorf("expected my_cover.png, got %s", name)
		}
	})

	t.Run("with book id derives {id}.{ext}", func(t *testing.T) {
		name, err := resolveFilename("anything.jpg", "42", storage.ClassPictures)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "42.jpg" {
			t.Errorf("expected 42.jpg, got %s", name)
		}
	})

	t.Run("disallowed extension", func(t *testing.T) {
		if _, err := resolveFilename("notes.txt", "42", storage.ClassPictures); !errors.Is(err, ErrExtensionNotAllowed) {
			t.Errorf("expected ErrExtensionNotAllowed, got %v", err)
		}
	})

	t.Run("invalid book id", func(t *testing.T) {
		for _, id := range []string{"../42", "4 2", "42.", "a/b"} {
			if _, err := resolveFilename("cover.png", id, storage.ClassPictures); !errors.Is(err, ErrInvalidBookID) {
				t.Errorf("resolveFilename with book id %q: expected ErrInvalidBookID, got %v", id, err)
			}
		}
	})

	t.Run("invalid filename", func(t *testing.T) {
		if _, err := resolveFilename("..", "42", storage.ClassPictures); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("expected ErrInvalidFilename, got %v", err)
		}
	})
}
