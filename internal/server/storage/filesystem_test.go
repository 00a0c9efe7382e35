package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T, class Class) *Store {
	t.Helper()
	store := NewStore(class, t.TempDir())
	if err := store.EnsureDir(); err != nil {
		t.Fatalf("failed to create store dir: %v", err)
	}
	return store
}

func writeAsset(t *testing.T, store *Store, name, content string) {
	t.Helper()
	if _, err := store.Save(name, bytes.NewReader([]byte(content))); err != nil {
		t.Fatalf("failed to seed asset %s: %v", name, err)
	}
}

func TestParseClass(t *testing.T) {
	t.Run("known classes", func(t *testing.T) {
		for _, name := range []string{"pictures", "downloads"} {
			class, err := ParseClass(name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(class) != name {
				t.Errorf("expected %s, got %s", name, class)
			}
		}
	})

	t.Run("unknown class", func(t *testing.T) {
		if _, err := ParseClass("videos"); err == nil {
			t.Error("expected error for unknown class")
		}
	})
}

func TestStore_Save(t *testing.T) {
	t.Run("saves file to disk", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)

		n, err := store.Save("42.png", bytes.NewReader([]byte("png bytes")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 9 {
			t.Errorf("expected 9 bytes written, got %d", n)
		}

		content, err := os.ReadFile(filepath.Join(store.dir, "42.png"))
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "png bytes" {
			t.Errorf("expected 'png bytes', got %q", content)
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)
		writeAsset(t, store, "42.png", "old bytes")

		if _, err := store.Save("42.png", bytes.NewReader([]byte("new"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, _ := os.ReadFile(filepath.Join(store.dir, "42.png"))
		if string(content) != "new" {
			t.Errorf("expected overwrite, got %q", content)
		}
	})

	t.Run("rejects traversal names", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)

		for _, name := range []string{"../escape.png", "..", "a/b.png", `a\b.png`, ""} {
			if _, err := store.Save(name, bytes.NewReader([]byte("x"))); !errors.Is(err, ErrUnsafeName) {
				t.Errorf("Save(%q): expected ErrUnsafeName, got %v", name, err)
			}
		}
	})
}

func TestStore_List(t *testing.T) {
	t.Run("lists entries with urls and sizes", func(t *testing.T) {
		store := newTestStore(t, ClassDownloads)
		writeAsset(t, store, "42.pdf", "pdf content")

		entries, err := store.List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}

		e := entries[0]
		if e.Filename != "42.pdf" {
			t.Errorf("expected filename 42.pdf, got %s", e.Filename)
		}
		if e.URL != "/db/downloads/42.pdf" {
			t.Errorf("expected url /db/downloads/42.pdf, got %s", e.URL)
		}
		if e.Size != int64(len("pdf content")) {
			t.Errorf("expected size %d, got %d", len("pdf content"), e.Size)
		}
		if e.Modified.IsZero() {
			t.Error("expected a modified timestamp")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)

		entries, err := store.List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %d", len(entries))
		}
	})
}

func TestStore_Path(t *testing.T) {
	t.Run("returns path for existing file", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)
		writeAsset(t, store, "cover.jpg", "data")

		path, err := store.Path("cover.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != filepath.Join(store.dir, "cover.jpg") {
			t.Errorf("unexpected path %s", path)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)

		if _, err := store.Path("missing.png"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("traversal name", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)

		if _, err := store.Path("../../etc/passwd"); !errors.Is(err, ErrUnsafeName) {
			t.Errorf("expected ErrUnsafeName, got %v", err)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("deletes existing file", func(t *testing.T) {
		store := newTestStore(t, ClassDownloads)
		writeAsset(t, store, "manual.pdf", "data")

		if err := store.Delete("manual.pdf"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(store.dir, "manual.pdf")); !os.IsNotExist(err) {
			t.Error("expected file to be deleted")
		}
	})

	t.Run("missing file is NotFound", func(t *testing.T) {
		store := newTestStore(t, ClassDownloads)

		if err := store.Delete("missing.pdf"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_DeleteByBookID(t *testing.T) {
	t.Run("removes all matching files", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)
		writeAsset(t, store, "42.png", "a")
		writeAsset(t, store, "42.jpg", "b")
		writeAsset(t, store, "7.png", "c")

		deleted, err := store.DeleteByBookID("42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deleted) != 2 {
			t.Fatalf("expected 2 deleted files, got %v", deleted)
		}
		if _, err := store.Path("7.png"); err != nil {
			t.Errorf("unrelated file should survive: %v", err)
		}
	})

	t.Run("prefix match does not catch substring ids", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)
		writeAsset(t, store, "1.png", "a")
		writeAsset(t, store, "10.png", "b")

		deleted, err := store.DeleteByBookID("1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deleted) != 1 || deleted[0] != "1.png" {
			t.Fatalf("expected only 1.png deleted, got %v", deleted)
		}
		if _, err := store.Path("10.png"); err != nil {
			t.Errorf("10.png should survive deleting book 1: %v", err)
		}
	})

	t.Run("no matches is NotFound", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)
		writeAsset(t, store, "7.png", "a")

		if _, err := store.DeleteByBookID("42"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects unsafe book ids", func(t *testing.T) {
		store := newTestStore(t, ClassPictures)

		for _, id := range []string{"", "..", "a/b", "42.png"} {
			if _, err := store.DeleteByBookID(id); !errors.Is(err, ErrUnsafeName) {
				t.Errorf("DeleteByBookID(%q): expected ErrUnsafeName, got %v", id, err)
			}
		}
	})
}

func TestStore_EnsureDir(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "nested", "db")
		store := NewStore(ClassDownloads, base)

		if err := store.EnsureDir(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(filepath.Join(base, "downloads"))
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected a directory")
		}
	})
}
