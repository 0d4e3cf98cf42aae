package handlers

import (
	"net/http"
	"strconv"

	"chesscoach/internal/service"
	"chesscoach/internal/validation"
)

// StudentHandler handles coach-side student management endpoints
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// List returns all students belonging to the authenticated coach
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	students, err := h.studentService.ListStudents(coach)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, students)
}

type createStudentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create adds a student account under the authenticated coach. The
// generated credentials are returned once; the password is not stored
// in clear and cannot be retrieved again.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	var req createStudentRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validation.ValidateName(req.Name); err != nil {
		respondServiceError(w, err)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	student, creds, err := h.studentService.CreateStudent(coach, req.Name, req.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"student":     student,
		"credentials": creds,
	})
}

// Get returns one of the coach's students
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	studentID, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	student, err := h.studentService.GetStudent(coach, studentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if student == nil {
		errorResponse(w, http.StatusNotFound, "Student not found")
		return
	}
	jsonResponse(w, http.StatusOK, student)
}

type updateStudentRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// Update edits a student's name, email and active flag
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	studentID, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	var req updateStudentRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validation.ValidateName(req.Name); err != nil {
		respondServiceError(w, err)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	student, err := h.studentService.UpdateStudent(coach, studentID, req.Name, req.Email, req.Active)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if student == nil {
		errorResponse(w, http.StatusNotFound, "Student not found")
		return
	}
	jsonResponse(w, http.StatusOK, student)
}

// RegeneratePassword issues a new password for a student. The old
// password stops working immediately.
func (h *StudentHandler) RegeneratePassword(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	studentID, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	creds, err := h.studentService.RegeneratePassword(coach, studentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if creds == nil {
		errorResponse(w, http.StatusNotFound, "Student not found")
		return
	}
	jsonResponse(w, http.StatusOK, creds)
}

// pathID parses a numeric path value
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
