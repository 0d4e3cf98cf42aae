package handlers

import (
	"net/http"

	"chesscoach/internal/service"
)

// AssignmentHandler handles assignment and attempt endpoints
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

type assignRequest struct {
	PuzzleID  int64 `json:"puzzle_id"`
	StudentID int64 `json:"student_id"`
}

// Create assigns one of the coach's puzzles to one of their students
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	var req assignRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	assignment, err := h.assignmentService.Assign(coach, req.PuzzleID, req.StudentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, assignment)
}

// List returns assignments scoped by role: students see their own with
// solutions stripped, coaches see everything they assigned with attempts
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if user.IsCoach() {
		details, err := h.assignmentService.ListForCoach(user)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, details)
		return
	}

	assignments, err := h.assignmentService.ListForStudent(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, assignments)
}

// Get returns one assignment with its attempt log
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid assignment ID")
		return
	}

	detail, err := h.assignmentService.Get(user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, detail)
}

// Delete withdraws an assignment
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid assignment ID")
		return
	}

	if err := h.assignmentService.Delete(coach, id); err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

type attemptRequest struct {
	Moves []string `json:"moves"`
}

// SubmitAttempt grades and records a student's solve attempt
func (h *AssignmentHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	student := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid assignment ID")
		return
	}

	var req attemptRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Moves) == 0 {
		errorResponse(w, http.StatusBadRequest, "Attempt must contain at least one move")
		return
	}

	outcome, err := h.assignmentService.SubmitAttempt(student, id, req.Moves)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, outcome)
}
