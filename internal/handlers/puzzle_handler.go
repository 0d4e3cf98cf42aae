package handlers

import (
	"net/http"

	"chesscoach/internal/service"
)

// PuzzleHandler handles puzzle CRUD endpoints for coaches
type PuzzleHandler struct {
	puzzleService *service.PuzzleService
}

// NewPuzzleHandler creates a new puzzle handler
func NewPuzzleHandler(puzzleService *service.PuzzleService) *PuzzleHandler {
	return &PuzzleHandler{puzzleService: puzzleService}
}

type puzzleRequest struct {
	FEN      string   `json:"fen"`
	Solution []string `json:"solution"`
	Themes   []string `json:"themes"`
}

// List returns the coach's puzzles with assignment counts
func (h *PuzzleHandler) List(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	puzzles, err := h.puzzleService.ListByCoach(coach)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, puzzles)
}

// Create stores a new puzzle after checking the solution line is legal
func (h *PuzzleHandler) Create(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	var req puzzleRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	puzzle, err := h.puzzleService.Create(coach, req.FEN, req.Solution, req.Themes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, puzzle)
}

// Get returns a single puzzle with its solution
func (h *PuzzleHandler) Get(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid puzzle ID")
		return
	}

	puzzle, err := h.puzzleService.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if puzzle == nil {
		errorResponse(w, http.StatusNotFound, "Puzzle not found")
		return
	}
	if puzzle.CoachID != coach.ID {
		errorResponse(w, http.StatusForbidden, "Not allowed")
		return
	}
	jsonResponse(w, http.StatusOK, puzzle)
}

// Update replaces a puzzle's position, solution and themes
func (h *PuzzleHandler) Update(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid puzzle ID")
		return
	}

	var req puzzleRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	puzzle, err := h.puzzleService.Update(coach, id, req.FEN, req.Solution, req.Themes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if puzzle == nil {
		errorResponse(w, http.StatusNotFound, "Puzzle not found")
		return
	}
	jsonResponse(w, http.StatusOK, puzzle)
}

// Delete removes a puzzle. Pass ?force=true to delete despite open
// assignments; those assignments are removed with it.
func (h *PuzzleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid puzzle ID")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if err := h.puzzleService.Delete(coach, id, force); err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}
