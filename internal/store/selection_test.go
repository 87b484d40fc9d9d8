package store

import (
	"testing"
)

func TestSelectionRepository_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.Selections()

	score := -412.5
	sels := []*Selection{
		{ID: "s1", RunID: "run-1", Word: "CAT", Strategy: "bic", States: 4, Score: &score, Outcome: "selected"},
		{ID: "s2", RunID: "run-1", Word: "DOG", Strategy: "bic", States: 3, Outcome: "fallback", Reason: "bic: selection exhausted"},
		{ID: "s3", RunID: "run-2", Word: "CAT", Strategy: "cv", States: 3, Outcome: "constant"},
	}
	for _, sel := range sels {
		if err := repo.Create(sel); err != nil {
			t.Fatalf("failed to create selection %q: %v", sel.ID, err)
		}
		if sel.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set after create")
		}
	}

	got, err := repo.ListByRun("run-1")
	if err != nil {
		t.Fatalf("failed to list selections: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 selections, got %d", len(got))
	}
	if got[0].Word != "CAT" || got[1].Word != "DOG" {
		t.Errorf("order mismatch: got %q, %q", got[0].Word, got[1].Word)
	}
	if got[0].Score == nil || *got[0].Score != score {
		t.Errorf("Score mismatch: got %v, want %v", got[0].Score, score)
	}
	if got[1].Score != nil {
		t.Errorf("fallback selection should have no score, got %v", *got[1].Score)
	}
	if got[1].Reason != "bic: selection exhausted" {
		t.Errorf("Reason mismatch: got %q", got[1].Reason)
	}
}

func TestSelectionRepository_ListByRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Selections().ListByRun("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSelectionRepository_RejectsUnknownOutcome(t *testing.T) {
	s := newTestStore(t)

	err := s.Selections().Create(&Selection{ID: "s1", RunID: "run-1", Word: "CAT", Strategy: "bic", Outcome: "maybe"})
	if err == nil {
		t.Error("unknown outcome should violate the check constraint")
	}
}

func TestSelectionRepository_LatestRun(t *testing.T) {
	s := newTestStore(t)
	repo := s.Selections()

	if _, err := repo.LatestRun(); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on empty store, got %v", err)
	}

	for i, runID := range []string{"run-1", "run-2"} {
		sel := &Selection{ID: string(rune('a' + i)), RunID: runID, Word: "CAT", Strategy: "dic", States: 2, Outcome: "selected"}
		if err := repo.Create(sel); err != nil {
			t.Fatalf("failed to create selection: %v", err)
		}
	}

	latest, err := repo.LatestRun()
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest != "run-2" {
		t.Errorf("latest run mismatch: got %q, want %q", latest, "run-2")
	}
}

func TestSelectionRepository_CreateRun(t *testing.T) {
	s := newTestStore(t)
	repo := s.Selections()

	sels := []*Selection{
		{ID: "s1", RunID: "run-1", Word: "CAT", Strategy: "dic", States: 3, Outcome: "selected"},
		{ID: "s2", RunID: "run-1", Word: "DOG", Strategy: "dic", States: 3, Outcome: "absent", Reason: "fit 3 states: no data"},
	}
	if err := repo.CreateRun(sels); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	got, err := repo.ListByRun("run-1")
	if err != nil {
		t.Fatalf("failed to list selections: %v", err)
	}
	if len(got) != 2 || got[0].Word != "CAT" || got[1].Word != "DOG" {
		t.Fatalf("unexpected selections %+v", got)
	}
	for _, sel := range sels {
		if sel.CreatedAt.IsZero() {
			t.Errorf("CreatedAt should be set on %q", sel.ID)
		}
	}
}

func TestSelectionRepository_CreateRun_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	repo := s.Selections()

	err := repo.CreateRun([]*Selection{
		{ID: "s1", RunID: "run-1", Word: "CAT", Strategy: "bic", States: 3, Outcome: "selected"},
		{ID: "s2", RunID: "run-1", Word: "DOG", Strategy: "bic", States: 3, Outcome: "maybe"},
	})
	if err == nil {
		t.Fatal("expected the second insert to fail")
	}

	if _, err := repo.ListByRun("run-1"); err != ErrNotFound {
		t.Errorf("expected no selections after a failed run, got err = %v", err)
	}
	if _, err := repo.LatestRun(); err != ErrNotFound {
		t.Errorf("expected no latest run, got err = %v", err)
	}
}
