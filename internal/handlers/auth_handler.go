package handlers

import (
	"net/http"

	"golang.org/x/oauth2"

	"chesscoach/internal/models"
	"chesscoach/internal/security"
	"chesscoach/internal/service"
	"chesscoach/internal/validation"
)

// AuthHandler handles registration, login and profile endpoints
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRFGenerator
	googleOAuth          *oauth2.Config
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, googleOAuth *oauth2.Config, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		googleOAuth:          googleOAuth,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Register creates a new coach account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		respondServiceError(w, err)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		respondServiceError(w, err)
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

	if _, err := h.authService.RegisterCoach(req.Username, req.Password, req.Name, req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	session, user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, "session_id", session.ID, session.ExpiresAt))
	jsonResponse(w, http.StatusCreated, h.sessionPayload(session, user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a coach or student with username and password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, "session_id", session.ID, session.ExpiresAt))
	jsonResponse(w, http.StatusOK, h.sessionPayload(session, user))
}

// Logout invalidates the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_id"); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to delete session", err)
			return
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, "session_id"))
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated user's profile and a CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	sessionID, _ := r.Context().Value(SessionContextKey).(string)

	csrfToken, err := h.csrf.GenerateToken(sessionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to generate CSRF token", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"user":       user,
		"csrf_token": csrfToken,
	})
}

type updateProfileRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	MeetingProvider string `json:"meeting_provider"`
	MeetingRoomURL  string `json:"meeting_room_url"`
}

// UpdateMe updates the authenticated user's profile
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req updateProfileRequest
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

	updated, err := h.authService.UpdateProfile(user.ID, req.Name, req.Email, models.MeetingPrefs{
		Provider: req.MeetingProvider,
		RoomURL:  req.MeetingRoomURL,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

func (h *AuthHandler) sessionPayload(session *models.Session, user *models.User) map[string]interface{} {
	payload := map[string]interface{}{
		"user":       user,
		"expires_at": session.ExpiresAt,
	}
	if token, err := h.csrf.GenerateToken(session.ID); err == nil {
		payload["csrf_token"] = token
	}
	return payload
}
