package models

import "time"

// User roles. A user is either a coach or a student; coaches create and
// manage their own students.
const (
	RoleCoach   = "coach"
	RoleStudent = "student"
)

// User represents an account in the system
type User struct {
	ID            int64        `json:"id"`
	Username      string       `json:"username"`
	PasswordHash  string       `json:"-"`
	Name          string       `json:"name"`
	Role          string       `json:"role"`
	Email         string       `json:"email,omitempty"`
	CoachID       *int64       `json:"coach_id,omitempty"` // set for students: the coach who created them
	OAuthProvider string       `json:"-"`
	OAuthSubject  string       `json:"-"`
	Active        bool         `json:"active"`
	MeetingPrefs  MeetingPrefs `json:"meeting_prefs"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// MeetingPrefs holds a user's preferred video-meeting setup
type MeetingPrefs struct {
	Provider string `json:"provider,omitempty"` // e.g. "zoom", "meet", "jitsi"
	RoomURL  string `json:"room_url,omitempty"` // personal meeting room, if any
}

// IsCoach reports whether the user has the coach role
func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

// IsStudent reports whether the user has the student role
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// Session represents an authenticated session
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
