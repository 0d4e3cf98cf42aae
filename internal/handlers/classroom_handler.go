package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"chesscoach/internal/classroom"
	"chesscoach/internal/security"
	"chesscoach/internal/service"
)

// ClassroomHandler issues room tokens and upgrades classroom websockets
type ClassroomHandler struct {
	scheduleService *service.ScheduleService
	tokenIssuer     *security.RoomTokenIssuer
	hub             *classroom.Hub
	upgrader        websocket.Upgrader
}

// NewClassroomHandler creates a new classroom handler
func NewClassroomHandler(scheduleService *service.ScheduleService, tokenIssuer *security.RoomTokenIssuer, hub *classroom.Hub) *ClassroomHandler {
	return &ClassroomHandler{
		scheduleService: scheduleService,
		tokenIssuer:     tokenIssuer,
		hub:             hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cookie auth is not used on the socket; the room token is the credential
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RoomToken mints a short-lived token granting access to a class's
// board channel. The caller must own or be enrolled in the class.
func (h *ClassroomHandler) RoomToken(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	classID, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	// Get enforces ownership for coaches and enrollment for students
	if _, err := h.scheduleService.Get(user, classID); err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := h.tokenIssuer.Issue(user.ID, user.Name, user.Role, classID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to issue room token", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"token": token})
}

// Connect upgrades the connection to a websocket and attaches the client
// to the class's board room. The room token is passed as a query
// parameter because browsers cannot set headers on websocket dials.
func (h *ClassroomHandler) Connect(w http.ResponseWriter, r *http.Request) {
	classID, err := pathID(r, "id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid class ID")
		return
	}

	claims, err := h.tokenIssuer.Validate(r.URL.Query().Get("token"), classID)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Invalid room token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response
		return
	}

	client := classroom.NewClient(h.hub, conn, claims.UserID, claims.Name, claims.Role, classID)
	client.Start()
}
