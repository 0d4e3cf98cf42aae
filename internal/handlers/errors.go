package handlers

import (
	"errors"
	"log"
	"net/http"

	"chesscoach/internal/service"
	"chesscoach/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	errorResponse(w, status, userMsg)
}

// respondServiceError maps known service errors to HTTP statuses and falls
// back to a 500 for everything else.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		errorResponse(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		errorResponse(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, service.ErrAccountDisabled):
		errorResponse(w, http.StatusForbidden, "Account is disabled")
	case errors.Is(err, service.ErrUsernameTaken):
		errorResponse(w, http.StatusConflict, "Username is already taken")
	case errors.Is(err, service.ErrNotYourStudent),
		errors.Is(err, service.ErrNotPuzzleOwner),
		errors.Is(err, service.ErrNotYourAssignment),
		errors.Is(err, service.ErrNotYourClass),
		errors.Is(err, service.ErrNotEnrolled):
		errorResponse(w, http.StatusForbidden, "Not allowed")
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrPuzzleNotFound),
		errors.Is(err, service.ErrClassNotFound):
		errorResponse(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrAlreadyAssigned):
		errorResponse(w, http.StatusConflict, "Puzzle is already assigned to this student")
	case errors.Is(err, service.ErrAssignmentCompleted):
		errorResponse(w, http.StatusConflict, "Assignment is already completed")
	case errors.Is(err, service.ErrPuzzleInUse):
		errorResponse(w, http.StatusConflict, "Puzzle has open assignments")
	case errors.Is(err, service.ErrJoinWindowClosed):
		errorResponse(w, http.StatusConflict, "Class is not open for joining")
	case errors.Is(err, service.ErrInvalidSolution):
		errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidTimeRange):
		errorResponse(w, http.StatusBadRequest, "End time must be after start time")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "service error", err)
	}
}
