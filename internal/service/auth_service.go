package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chesscoach/internal/models"
	"chesscoach/internal/repository"
	"chesscoach/internal/security"
	"chesscoach/internal/validation"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrAccountDisabled    = errors.New("account disabled")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionDuration: sessionDuration,
	}
}

// RegisterCoach creates a new coach account
func (s *AuthService) RegisterCoach(username, password, name, email string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateCoach(username, passwordHash, name, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create coach: %w", err)
	}

	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(username, password string) (*models.Session, *models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	return s.createSession(user)
}

// OAuthLogin authenticates or creates a coach using a Google identity.
// Students always use username/password credentials issued by their coach.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up oauth identity: %w", err)
	}

	if user == nil {
		username, err := s.usernameFromEmail(email)
		if err != nil {
			return nil, nil, err
		}
		if name == "" {
			name = username
		}
		user, err = s.userRepo.CreateCoach(username, "", name, email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create coach from oauth: %w", err)
		}
		if err := s.userRepo.LinkOAuth(user.ID, provider, subject); err != nil {
			return nil, nil, err
		}
	}

	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	return s.createSession(user)
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// UpdateProfile updates a user's name, email and meeting preferences
func (s *AuthService) UpdateProfile(userID int64, name, email string, prefs models.MeetingPrefs) (*models.User, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfile(userID, name, email, prefs); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserByID(userID)
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

func (s *AuthService) createSession(user *models.User) (*models.Session, *models.User, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, user, nil
}

// usernameFromEmail derives a free username from an email local part,
// appending a numeric suffix on collision.
func (s *AuthService) usernameFromEmail(email string) (string, error) {
	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, local)
	if len(base) < 3 {
		base = "coach-" + base
	}

	candidate := base
	for i := 2; ; i++ {
		existing, err := s.userRepo.GetUserByUsername(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
