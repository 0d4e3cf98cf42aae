package handlers

import (
	"net/http"
	"time"

	"chesscoach/internal/service"
)

// ScheduleHandler handles class scheduling and lifecycle endpoints
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

type classRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Timezone        string    `json:"timezone"`
	MeetingURL      string    `json:"meeting_url"`
	MeetingProvider string    `json:"meeting_provider"`
	StudentIDs      []int64   `json:"student_ids"`
}

func (req classRequest) toInput() service.ClassInput {
	return service.ClassInput{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Timezone:        req.Timezone,
		MeetingURL:      req.MeetingURL,
		MeetingProvider: req.MeetingProvider,
		StudentIDs:      req.StudentIDs,
	}
}

// List returns the classes visible to the authenticated user
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	classes, err := h.scheduleService.List(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, classes)
}

// Create schedules a new class
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	var req classRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	class, err := h.scheduleService.Create(coach, req.toInput())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, class)
}

// Get returns a class with enrollment and attendance
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	class, err := h.scheduleService.Get(user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, class)
}

// Update edits a class
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	var req classRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	class, err := h.scheduleService.Update(coach, id, req.toInput())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, class)
}

// Delete cancels a class
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	if err := h.scheduleService.Delete(coach, id); err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// Start marks a class as in progress
func (h *ScheduleHandler) Start(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	class, err := h.scheduleService.Start(coach, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, class)
}

// End marks a class as completed
func (h *ScheduleHandler) End(w http.ResponseWriter, r *http.Request) {
	coach := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	class, err := h.scheduleService.End(coach, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, class)
}

// Join records attendance and returns the meeting link to the student
func (h *ScheduleHandler) Join(w http.ResponseWriter, r *http.Request) {
	student := GetUserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	class, err := h.scheduleService.Join(student, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, class)
}
