package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-booksgen")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-booksgen" {
			t.Errorf("expected path /tmp/test-booksgen, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-booksgen")

	t.Run("BooksPath", func(t *testing.T) {
		expected := "/tmp/test-booksgen/books"
		if dir.BooksPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.BooksPath())
		}
	})

	t.Run("BookPath", func(t *testing.T) {
		expected := "/tmp/test-booksgen/books/abc123.json"
		if dir.BookPath("abc123") != expected {
			t.Errorf("expected %s, got %s", expected, dir.BookPath("abc123"))
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-booksgen/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	homeDir := filepath.Join(tmpDir, "booksgen-test")

	dir, err := New(homeDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Fatal("directory should not exist yet")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	info, err := os.Stat(dir.BooksPath())
	if err != nil {
		t.Fatalf("books directory missing: %v", err)
	}
	if !info.IsDir() {
		t.Error("books path is not a directory")
	}
}
