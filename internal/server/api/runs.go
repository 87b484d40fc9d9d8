package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/selector"
	"github.com/ayusman/mudra/internal/store"
)

// RunHandler starts selection runs and reports stored results.
type RunHandler struct {
	store    *store.Store
	runner   *app.Runner
	strategy selector.Strategy
}

// NewRunHandler creates a RunHandler. Requests that name no strategy use
// defaultStrategy.
func NewRunHandler(s *store.Store, r *app.Runner, defaultStrategy selector.Strategy) *RunHandler {
	return &RunHandler{store: s, runner: r, strategy: defaultStrategy}
}

// ServeHTTP routes /api/runs, /api/runs/latest and /api/runs/{id}.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/runs")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.create(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if path == "latest" {
		h.latest(w, r)
		return
	}
	h.get(w, r, path)
}

type createRunRequest struct {
	Strategy string `json:"strategy"`
	// Word restricts the run to one word when set.
	Word string `json:"word"`
}

type candidateResponse struct {
	States int      `json:"states"`
	Score  *float64 `json:"score"`
	Status string   `json:"status"`
	Error  string   `json:"error,omitempty"`
}

type selectionResponse struct {
	Word       string              `json:"word"`
	Strategy   string              `json:"strategy"`
	States     int                 `json:"states"`
	Score      *float64            `json:"score"`
	Outcome    string              `json:"outcome"`
	Reason     string              `json:"reason,omitempty"`
	Candidates []candidateResponse `json:"candidates,omitempty"`
}

type runResponse struct {
	ID         string              `json:"id"`
	Strategy   string              `json:"strategy,omitempty"`
	StartedAt  string              `json:"started_at,omitempty"`
	FinishedAt string              `json:"finished_at,omitempty"`
	Summary    *app.Summary        `json:"summary,omitempty"`
	Selections []selectionResponse `json:"selections"`
}

// create handles POST /api/runs.
func (h *RunHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	strategy := h.strategy
	if req.Strategy != "" {
		s, err := selector.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		strategy = s
	}

	var (
		run *app.Run
		err error
	)
	if req.Word != "" {
		run, err = h.runner.SelectWord(strategy, req.Word)
	} else {
		run, err = h.runner.Run(strategy)
	}
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Word not found")
		case errors.Is(err, app.ErrEmptyVocabulary):
			writeError(w, http.StatusConflict, "No words with sequences")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to run selection")
		}
		return
	}

	summary := run.Summary()
	response := runResponse{
		ID:         run.ID,
		Strategy:   string(run.Strategy),
		StartedAt:  run.StartedAt.Format(timeFormat),
		FinishedAt: run.FinishedAt.Format(timeFormat),
		Summary:    &summary,
		Selections: make([]selectionResponse, 0, len(run.Results)),
	}
	for _, res := range run.Results {
		response.Selections = append(response.Selections, toResultResponse(run.ID, res))
	}

	writeJSON(w, http.StatusCreated, response)
}

// get handles GET /api/runs/{id}.
func (h *RunHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sels, err := h.store.Selections().ListByRun(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}

	response := runResponse{
		ID:         id,
		Selections: make([]selectionResponse, 0, len(sels)),
	}
	for _, sel := range sels {
		response.Strategy = sel.Strategy
		response.Selections = append(response.Selections, toSelectionResponse(sel))
	}

	writeJSON(w, http.StatusOK, response)
}

// latest handles GET /api/runs/latest.
func (h *RunHandler) latest(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.Selections().LatestRun()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No runs yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get latest run")
		return
	}
	h.get(w, r, id)
}

func toSelectionResponse(sel *store.Selection) selectionResponse {
	return selectionResponse{
		Word:     sel.Word,
		Strategy: sel.Strategy,
		States:   sel.States,
		Score:    sel.Score,
		Outcome:  sel.Outcome,
		Reason:   sel.Reason,
	}
}

func toResultResponse(runID string, res selector.Result) selectionResponse {
	resp := toSelectionResponse(app.NewSelection(runID, res))
	for _, c := range res.Candidates {
		cr := candidateResponse{
			States: c.States,
			Status: string(c.Status),
		}
		// Only scored candidates carry a finite value.
		if c.Status == selector.CandidateScored {
			score := c.Score
			cr.Score = &score
		}
		if c.Err != nil {
			cr.Error = c.Err.Error()
		}
		resp.Candidates = append(resp.Candidates, cr)
	}
	return resp
}
