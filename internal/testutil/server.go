package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gridpilot/gridpilot/internal/api"
)

// FakeBackend is an httptest server speaking the inference backend's
// HTTP contract. It serves one session at a time from a step script.
type FakeBackend struct {
	*httptest.Server

	mu        sync.Mutex
	sessionID string
	script    []api.StepResponse
	nextStep  int
	active    map[string]bool
	deleted   []string

	// Models and Files are returned by the listing endpoints.
	Models []api.Model
	Files  []api.TestDataFile

	// Puzzle is returned by the generate endpoint.
	Puzzle [][]int
}

// NewFakeBackend starts a fake backend that hands out sessionID and
// plays back the given step script. Callers must Close it.
func NewFakeBackend(sessionID string, script []api.StepResponse) *FakeBackend {
	fb := &FakeBackend{
		sessionID: sessionID,
		script:    script,
		active:    make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/initialize", fb.handleInitialize)
	mux.HandleFunc("POST /api/step/{id}", fb.handleStep)
	mux.HandleFunc("POST /api/solve_complete/{id}", fb.handleSolveComplete)
	mux.HandleFunc("DELETE /api/session/{id}", fb.handleDelete)
	mux.HandleFunc("GET /api/health", fb.handleHealth)
	mux.HandleFunc("GET /api/models", fb.handleModels)
	mux.HandleFunc("GET /api/test_data_files", fb.handleTestData)
	mux.HandleFunc("POST /api/generate_puzzle", fb.handleGenerate)

	fb.Server = httptest.NewServer(mux)
	return fb
}

// Deleted returns the session ids that were torn down.
func (fb *FakeBackend) Deleted() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]string, len(fb.deleted))
	copy(out, fb.deleted)
	return out
}

func (fb *FakeBackend) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req api.InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if len(req.Puzzle) != 9 || strings.TrimSpace(req.CheckpointPath) == "" {
		http.Error(w, "invalid puzzle or checkpoint", http.StatusUnprocessableEntity)
		return
	}

	fb.mu.Lock()
	fb.active[fb.sessionID] = true
	fb.nextStep = 0
	fb.mu.Unlock()

	writeJSON(w, api.InitializeResponse{
		SessionID:   fb.sessionID,
		InitialGrid: req.Puzzle,
		Status:      "initialized",
	})
}

func (fb *FakeBackend) handleStep(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if !fb.active[r.PathValue("id")] {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if len(fb.script) == 0 {
		http.Error(w, "no steps scripted", http.StatusInternalServerError)
		return
	}
	idx := fb.nextStep
	if idx >= len(fb.script) {
		idx = len(fb.script) - 1
	} else {
		fb.nextStep++
	}
	writeJSON(w, fb.script[idx])
}

func (fb *FakeBackend) handleSolveComplete(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if !fb.active[r.PathValue("id")] {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	steps := make([]api.StepResponse, len(fb.script))
	copy(steps, fb.script)
	fb.nextStep = len(fb.script)
	writeJSON(w, api.SolveCompleteResponse{Steps: steps})
}

func (fb *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if !fb.active[id] {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	delete(fb.active, id)
	fb.deleted = append(fb.deleted, id)
	writeJSON(w, map[string]string{"status": "deleted"})
}

func (fb *FakeBackend) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.HealthResponse{Status: "healthy", ModelLoaded: true})
}

func (fb *FakeBackend) handleModels(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	models := fb.Models
	fb.mu.Unlock()
	writeJSON(w, api.ModelsResponse{Models: models, Count: len(models)})
}

func (fb *FakeBackend) handleTestData(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	files := fb.Files
	fb.mu.Unlock()
	writeJSON(w, api.TestDataResponse{Files: files})
}

func (fb *FakeBackend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req api.GeneratePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	puzzle := fb.Puzzle
	fb.mu.Unlock()
	if puzzle == nil {
		puzzle = SamplePuzzle().Rows()
	}
	writeJSON(w, api.GeneratePuzzleResponse{Puzzle: puzzle, Source: req.Source})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
