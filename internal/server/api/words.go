package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/sequence"
	"github.com/ayusman/mudra/internal/store"
)

// WordHandler handles HTTP requests for word resources and their sequences.
type WordHandler struct {
	store *store.Store
}

// NewWordHandler creates a new WordHandler with the given store.
func NewWordHandler(s *store.Store) *WordHandler {
	return &WordHandler{store: s}
}

// ServeHTTP routes /api/words, /api/words/{name} and
// /api/words/{name}/sequences.
func (h *WordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/words")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	name := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, name)
		case http.MethodDelete:
			h.delete(w, r, name)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "sequences":
		switch r.Method {
		case http.MethodGet:
			h.listSequences(w, r, name)
		case http.MethodPost:
			h.appendSequences(w, r, name)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type createWordRequest struct {
	Name      string              `json:"name"`
	Sequences []sequence.Sequence `json:"sequences"`
}

type appendSequencesRequest struct {
	Sequences []sequence.Sequence `json:"sequences"`
}

type wordResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Features  int    `json:"features"`
	Sequences int    `json:"sequences"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listWordsResponse struct {
	Words []wordResponse `json:"words"`
}

type sequenceResponse struct {
	Index  int               `json:"index"`
	Frames sequence.Sequence `json:"frames"`
}

type listSequencesResponse struct {
	Word      string             `json:"word"`
	Sequences []sequenceResponse `json:"sequences"`
}

func toWordResponse(wd *store.Word) wordResponse {
	return wordResponse{
		ID:        wd.ID,
		Name:      wd.Name,
		Features:  wd.Features,
		Sequences: wd.Sequences,
		CreatedAt: wd.CreatedAt.Format(timeFormat),
		UpdatedAt: wd.UpdatedAt.Format(timeFormat),
	}
}

// list handles GET /api/words.
func (h *WordHandler) list(w http.ResponseWriter, r *http.Request) {
	words, err := h.store.Words().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list words")
		return
	}

	response := listWordsResponse{
		Words: make([]wordResponse, 0, len(words)),
	}
	for _, wd := range words {
		response.Words = append(response.Words, toWordResponse(wd))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/words/{name}.
func (h *WordHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	word, ok := h.lookup(w, name)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toWordResponse(word))
}

// create handles POST /api/words.
func (h *WordHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if _, err := h.store.Words().GetByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, "Word already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to check word")
		return
	}

	word, err := h.store.ImportWord(uuid.New().String(), req.Name, req.Sequences)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toWordResponse(word))
}

// delete handles DELETE /api/words/{name}.
func (h *WordHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	word, ok := h.lookup(w, name)
	if !ok {
		return
	}

	if err := h.store.Words().Delete(word.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete word")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listSequences handles GET /api/words/{name}/sequences.
func (h *WordHandler) listSequences(w http.ResponseWriter, r *http.Request, name string) {
	word, ok := h.lookup(w, name)
	if !ok {
		return
	}

	stored, err := h.store.Sequences().GetByWordID(word.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sequences")
		return
	}

	response := listSequencesResponse{
		Word:      word.Name,
		Sequences: make([]sequenceResponse, 0, len(stored)),
	}
	for _, s := range stored {
		response.Sequences = append(response.Sequences, sequenceResponse{
			Index:  s.SequenceIndex,
			Frames: s.Frames,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// appendSequences handles POST /api/words/{name}/sequences.
func (h *WordHandler) appendSequences(w http.ResponseWriter, r *http.Request, name string) {
	word, ok := h.lookup(w, name)
	if !ok {
		return
	}

	var req appendSequencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Sequences) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sequence is required")
		return
	}

	if err := h.store.Sequences().Append(word.ID, req.Sequences); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.store.Words().GetByID(word.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get word")
		return
	}

	writeJSON(w, http.StatusCreated, toWordResponse(updated))
}

// lookup fetches a word by name, writing the error response when it fails.
func (h *WordHandler) lookup(w http.ResponseWriter, name string) (*store.Word, bool) {
	word, err := h.store.Words().GetByName(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Word not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get word")
		return nil, false
	}
	return word, true
}
