package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/selector"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/testdata"
)

func newRunHandler(t *testing.T) (*RunHandler, *store.Store) {
	t.Helper()

	s := newTestStore(t)
	c := testdata.Vocabulary(3)
	for _, w := range c.Words() {
		if _, err := s.ImportWord("id-"+w, w, c.Sequences(w)); err != nil {
			t.Fatalf("failed to import %q: %v", w, err)
		}
	}

	runner := app.New(app.Config{
		Store: s,
		Selection: config.SelectionConfig{
			MinStates: 2,
			MaxStates: 3,
			Constant:  2,
			Seed:      14,
			Workers:   2,
		},
	})
	return NewRunHandler(s, runner, selector.StrategyBIC), s
}

func TestRunHandler_CreateAndGet(t *testing.T) {
	handler, _ := newRunHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/runs", createRunRequest{Strategy: "dic"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created runResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("run should have an ID")
	}
	if created.Strategy != "dic" {
		t.Errorf("expected strategy dic, got %q", created.Strategy)
	}
	if created.Summary == nil || created.Summary.Words != len(testdata.VocabularyWords) {
		t.Errorf("summary should cover every word: %+v", created.Summary)
	}
	if len(created.Selections) != len(testdata.VocabularyWords) {
		t.Fatalf("expected %d selections, got %d", len(testdata.VocabularyWords), len(created.Selections))
	}
	for i, sel := range created.Selections {
		if sel.Word != testdata.VocabularyWords[i] {
			t.Errorf("selection %d: expected word %q, got %q", i, testdata.VocabularyWords[i], sel.Word)
		}
		if len(sel.Candidates) == 0 {
			t.Errorf("selection %d should report its candidates", i)
		}
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/runs/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var fetched runResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(fetched.Selections) != len(created.Selections) {
		t.Errorf("expected %d stored selections, got %d", len(created.Selections), len(fetched.Selections))
	}
	for i := range fetched.Selections {
		if fetched.Selections[i].States != created.Selections[i].States {
			t.Errorf("selection %d: stored states %d, run states %d", i, fetched.Selections[i].States, created.Selections[i].States)
		}
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/runs/latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var latest runResponse
	if err := json.NewDecoder(rec.Body).Decode(&latest); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if latest.ID != created.ID {
		t.Errorf("expected latest run %q, got %q", created.ID, latest.ID)
	}
}

func TestRunHandler_DefaultStrategyAndSingleWord(t *testing.T) {
	handler, _ := newRunHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/runs", createRunRequest{Word: "DOG"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var run runResponse
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if run.Strategy != "bic" {
		t.Errorf("expected default strategy bic, got %q", run.Strategy)
	}
	if len(run.Selections) != 1 || run.Selections[0].Word != "DOG" {
		t.Errorf("expected a single DOG selection, got %+v", run.Selections)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/runs", createRunRequest{Word: "HORSE"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown word: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestRunHandler_Errors(t *testing.T) {
	handler, _ := newRunHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/runs", createRunRequest{Strategy: "aic"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown strategy: expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/runs/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing run: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/runs", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET collection: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestRunHandler_LatestWithoutRuns(t *testing.T) {
	s := newTestStore(t)
	handler := NewRunHandler(s, app.New(app.Config{Store: s}), selector.StrategyBIC)

	rec := doJSON(t, handler, http.MethodGet, "/api/runs/latest", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/runs", createRunRequest{})
	if rec.Code != http.StatusConflict {
		t.Errorf("empty vocabulary: expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}
