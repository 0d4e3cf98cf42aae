package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chesscoach/internal/service"
	"chesscoach/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	var body errorBody
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "Teapot" {
		t.Fatalf("expected message 'Teapot', got %q", body.Message)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondServiceErrorMapsStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"account disabled", service.ErrAccountDisabled, http.StatusForbidden},
		{"username taken", service.ErrUsernameTaken, http.StatusConflict},
		{"not your student", service.ErrNotYourStudent, http.StatusForbidden},
		{"wrapped not your student", fmt.Errorf("context: %w", service.ErrNotYourStudent), http.StatusForbidden},
		{"already assigned", service.ErrAlreadyAssigned, http.StatusConflict},
		{"puzzle in use", service.ErrPuzzleInUse, http.StatusConflict},
		{"join window closed", service.ErrJoinWindowClosed, http.StatusConflict},
		{"class not found", service.ErrClassNotFound, http.StatusNotFound},
		{"puzzle not found", service.ErrPuzzleNotFound, http.StatusNotFound},
		{"assignment completed", service.ErrAssignmentCompleted, http.StatusConflict},
		{"invalid solution", fmt.Errorf("%w: bad line", service.ErrInvalidSolution), http.StatusBadRequest},
		{"validation error", validation.ValidationError{Field: "name", Message: "required"}, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, tt.err)
			if recorder.Code != tt.status {
				t.Errorf("status = %d, want %d", recorder.Code, tt.status)
			}
			if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}
