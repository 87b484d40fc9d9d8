package store

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mudra-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	s, err := New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestWordRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	word := &Word{ID: "word-1", Name: "CAT"}
	if err := repo.Create(word); err != nil {
		t.Fatalf("failed to create word: %v", err)
	}

	if word.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}
	if word.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set after create")
	}

	retrieved, err := repo.GetByID("word-1")
	if err != nil {
		t.Fatalf("failed to get word by ID: %v", err)
	}
	if retrieved.Name != "CAT" {
		t.Errorf("Name mismatch: got %q, want %q", retrieved.Name, "CAT")
	}
	if retrieved.Sequences != 0 || retrieved.Features != 0 {
		t.Errorf("new word should have no sequences: got %d sequences, %d features",
			retrieved.Sequences, retrieved.Features)
	}

	byName, err := repo.GetByName("CAT")
	if err != nil {
		t.Fatalf("failed to get word by name: %v", err)
	}
	if byName.ID != word.ID {
		t.Errorf("GetByName returned wrong word: got ID %q, want %q", byName.ID, word.ID)
	}
}

func TestWordRepository_Create_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	if err := repo.Create(&Word{ID: "word-1", Name: "CAT"}); err != nil {
		t.Fatalf("failed to create first word: %v", err)
	}
	if err := repo.Create(&Word{ID: "word-2", Name: "CAT"}); err == nil {
		t.Error("creating word with duplicate name should fail")
	}
}

func TestWordRepository_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	if _, err := repo.GetByID("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByName("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWordRepository_ListPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	names := []string{"JOHN", "CAT", "FISH", "DOG"}
	for i, name := range names {
		if err := repo.Create(&Word{ID: string(rune('a' + i)), Name: name}); err != nil {
			t.Fatalf("failed to create word %q: %v", name, err)
		}
	}

	words, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list words: %v", err)
	}
	if len(words) != len(names) {
		t.Fatalf("expected %d words, got %d", len(names), len(words))
	}
	for i, w := range words {
		if w.Name != names[i] {
			t.Errorf("word %d: got %q, want %q", i, w.Name, names[i])
		}
	}
}

func TestWordRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	if err := repo.Create(&Word{ID: "word-1", Name: "CAT"}); err != nil {
		t.Fatalf("failed to create word: %v", err)
	}

	if err := repo.Delete("word-1"); err != nil {
		t.Fatalf("failed to delete word: %v", err)
	}
	if _, err := repo.GetByID("word-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete("word-1"); err != ErrNotFound {
		t.Errorf("deleting missing word should return ErrNotFound, got %v", err)
	}
}
