package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chesscoach/internal/database"
	"chesscoach/internal/models"
)

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, username, password_hash, name, role, COALESCE(email, ''),
	coach_id, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
	active, COALESCE(meeting_provider, ''), COALESCE(meeting_room_url, ''),
	created_at, updated_at
`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Email,
		&user.CoachID,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.Active,
		&user.MeetingPrefs.Provider,
		&user.MeetingPrefs.RoomURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCoach inserts a new coach account
func (r *UserRepository) CreateCoach(username, passwordHash, name, email string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, name, role, email, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, username, passwordHash, name, models.RoleCoach, email, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create coach: %w", err)
	}
	return r.GetUserByID(id)
}

// CreateStudent inserts a new student account owned by a coach
func (r *UserRepository) CreateStudent(coachID int64, username, passwordHash, name, email string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, name, role, email, coach_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, username, passwordHash, name, models.RoleStudent, email, coachID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return r.GetUserByID(id)
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	user, err := scanUser(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE oauth_provider = ? AND oauth_subject = ?"
	user, err := scanUser(r.db.QueryRow(query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// LinkOAuth attaches an OAuth identity to an existing user
func (r *UserRepository) LinkOAuth(userID int64, provider, subject string) error {
	query := "UPDATE users SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, provider, subject, userID); err != nil {
		return fmt.Errorf("failed to link oauth identity: %w", err)
	}
	return nil
}

// UpdateProfile updates a user's name, email and meeting preferences
func (r *UserRepository) UpdateProfile(userID int64, name, email string, prefs models.MeetingPrefs) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, meeting_provider = ?, meeting_room_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, name, email, prefs.Provider, prefs.RoomURL, userID); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	query := "UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, passwordHash, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetActive enables or disables an account. Accounts are never hard-deleted.
func (r *UserRepository) SetActive(userID int64, active bool) error {
	query := "UPDATE users SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, active, userID); err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	return nil
}

// ListStudentsByCoach retrieves all students belonging to a coach
func (r *UserRepository) ListStudentsByCoach(coachID int64) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE coach_id = ? AND role = ? ORDER BY name"
	rows, err := r.db.Query(query, coachID, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *user)
	}
	return students, rows.Err()
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *UserRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
