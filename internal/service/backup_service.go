package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"chesscoach/internal/database"
)

// BackupData represents the complete database backup structure. Sessions
// are ephemeral and excluded.
type BackupData struct {
	Version      string             `json:"version"`
	ExportedAt   time.Time          `json:"exported_at"`
	DatabaseType string             `json:"database_type"`
	Users        []UserBackup       `json:"users"`
	Puzzles      []PuzzleBackup     `json:"puzzles"`
	Assignments  []AssignmentBackup `json:"assignments"`
	Attempts     []AttemptBackup    `json:"attempts"`
	Classes      []ClassBackup      `json:"classes"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"password_hash"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Email           string    `json:"email"`
	CoachID         *int64    `json:"coach_id"`
	OAuthProvider   string    `json:"oauth_provider"`
	OAuthSubject    string    `json:"oauth_subject"`
	Active          bool      `json:"active"`
	MeetingProvider string    `json:"meeting_provider"`
	MeetingRoomURL  string    `json:"meeting_room_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PuzzleBackup represents a puzzle record for backup
type PuzzleBackup struct {
	ID        int64     `json:"id"`
	CoachID   int64     `json:"coach_id"`
	FEN       string    `json:"fen"`
	Solution  string    `json:"solution"`
	Themes    string    `json:"themes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentBackup represents an assignment record for backup
type AssignmentBackup struct {
	ID          int64      `json:"id"`
	PuzzleID    int64      `json:"puzzle_id"`
	StudentID   int64      `json:"student_id"`
	AssignedBy  int64      `json:"assigned_by"`
	Completed   bool       `json:"completed"`
	AssignedAt  time.Time  `json:"assigned_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// AttemptBackup represents an attempt record for backup
type AttemptBackup struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	Moves        string    `json:"moves"`
	Correct      bool      `json:"correct"`
	AttemptedAt  time.Time `json:"attempted_at"`
}

// ClassBackup represents a class schedule with enrollment and attendance
type ClassBackup struct {
	ID              int64              `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	CoachID         int64              `json:"coach_id"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         time.Time          `json:"end_time"`
	Timezone        string             `json:"timezone"`
	MeetingURL      string             `json:"meeting_url"`
	MeetingProvider string             `json:"meeting_provider"`
	Status          string             `json:"status"`
	ActualStart     *time.Time         `json:"actual_start"`
	ActualEnd       *time.Time         `json:"actual_end"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	StudentIDs      []int64            `json:"student_ids"`
	Attendance      []AttendanceBackup `json:"attendance"`
}

// AttendanceBackup represents one student's join record
type AttendanceBackup struct {
	StudentID int64     `json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportPuzzles(backup); err != nil {
		return fmt.Errorf("failed to export puzzles: %w", err)
	}
	if err := s.exportAssignments(backup); err != nil {
		return fmt.Errorf("failed to export assignments: %w", err)
	}
	if err := s.exportAttempts(backup); err != nil {
		return fmt.Errorf("failed to export attempts: %w", err)
	}
	if err := s.exportClasses(backup); err != nil {
		return fmt.Errorf("failed to export classes: %w", err)
	}

	log.Printf("Exported: %d users, %d puzzles, %d assignments, %d attempts, %d classes",
		len(backup.Users), len(backup.Puzzles), len(backup.Assignments),
		len(backup.Attempts), len(backup.Classes))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importPuzzles(backup.Puzzles); err != nil {
		return fmt.Errorf("failed to import puzzles: %w", err)
	}
	if err := s.importAssignments(backup.Assignments); err != nil {
		return fmt.Errorf("failed to import assignments: %w", err)
	}
	if err := s.importAttempts(backup.Attempts); err != nil {
		return fmt.Errorf("failed to import attempts: %w", err)
	}
	if err := s.importClasses(backup.Classes); err != nil {
		return fmt.Errorf("failed to import classes: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := `SELECT id, username, password_hash, name, role, COALESCE(email, ''), coach_id,
		COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), active,
		COALESCE(meeting_provider, ''), COALESCE(meeting_room_url, ''), created_at, updated_at
		FROM users ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var coachID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role, &u.Email, &coachID,
			&u.OAuthProvider, &u.OAuthSubject, &u.Active,
			&u.MeetingProvider, &u.MeetingRoomURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		if coachID.Valid {
			u.CoachID = &coachID.Int64
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportPuzzles(backup *BackupData) error {
	query := "SELECT id, coach_id, fen, solution, COALESCE(themes, ''), created_at, updated_at FROM puzzles ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PuzzleBackup
		if err := rows.Scan(&p.ID, &p.CoachID, &p.FEN, &p.Solution, &p.Themes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Puzzles = append(backup.Puzzles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportAssignments(backup *BackupData) error {
	query := "SELECT id, puzzle_id, student_id, assigned_by, completed, assigned_at, completed_at FROM assignments ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AssignmentBackup
		var completedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.PuzzleID, &a.StudentID, &a.AssignedBy, &a.Completed, &a.AssignedAt, &completedAt); err != nil {
			return err
		}
		if completedAt.Valid {
			a.CompletedAt = &completedAt.Time
		}
		backup.Assignments = append(backup.Assignments, a)
	}
	return rows.Err()
}

func (s *BackupService) exportAttempts(backup *BackupData) error {
	query := "SELECT id, assignment_id, moves, correct, attempted_at FROM attempts ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AttemptBackup
		if err := rows.Scan(&a.ID, &a.AssignmentID, &a.Moves, &a.Correct, &a.AttemptedAt); err != nil {
			return err
		}
		backup.Attempts = append(backup.Attempts, a)
	}
	return rows.Err()
}

func (s *BackupService) exportClasses(backup *BackupData) error {
	query := `SELECT id, title, COALESCE(description, ''), coach_id, start_time, end_time, timezone,
		COALESCE(meeting_url, ''), COALESCE(meeting_provider, ''), status, actual_start, actual_end,
		created_at, updated_at FROM class_schedules ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ClassBackup
		var actualStart, actualEnd sql.NullTime
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CoachID, &c.StartTime, &c.EndTime, &c.Timezone,
			&c.MeetingURL, &c.MeetingProvider, &c.Status, &actualStart, &actualEnd,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		if actualStart.Valid {
			c.ActualStart = &actualStart.Time
		}
		if actualEnd.Valid {
			c.ActualEnd = &actualEnd.Time
		}
		backup.Classes = append(backup.Classes, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Classes {
		classID := backup.Classes[i].ID

		studentRows, err := s.db.Query("SELECT student_id FROM class_students WHERE class_id = ? ORDER BY student_id", classID)
		if err != nil {
			return err
		}
		for studentRows.Next() {
			var studentID int64
			if err := studentRows.Scan(&studentID); err != nil {
				studentRows.Close()
				return err
			}
			backup.Classes[i].StudentIDs = append(backup.Classes[i].StudentIDs, studentID)
		}
		studentRows.Close()

		attendRows, err := s.db.Query("SELECT student_id, joined_at FROM class_attendance WHERE class_id = ? ORDER BY student_id", classID)
		if err != nil {
			return err
		}
		for attendRows.Next() {
			var a AttendanceBackup
			if err := attendRows.Scan(&a.StudentID, &a.JoinedAt); err != nil {
				attendRows.Close()
				return err
			}
			backup.Classes[i].Attendance = append(backup.Classes[i].Attendance, a)
		}
		attendRows.Close()
	}
	return nil
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		var coachID interface{}
		if u.CoachID != nil {
			coachID = *u.CoachID
		}
		query := `INSERT INTO users (id, username, password_hash, name, role, email, coach_id,
			oauth_provider, oauth_subject, active, meeting_provider, meeting_room_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, u.ID, u.Username, u.PasswordHash, u.Name, u.Role, nullIfEmpty(u.Email), coachID,
			nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.Active,
			nullIfEmpty(u.MeetingProvider), nullIfEmpty(u.MeetingRoomURL), u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importPuzzles(puzzles []PuzzleBackup) error {
	log.Printf("Importing %d puzzles...", len(puzzles))
	for _, p := range puzzles {
		query := "INSERT INTO puzzles (id, coach_id, fen, solution, themes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, p.ID, p.CoachID, p.FEN, p.Solution, nullIfEmpty(p.Themes), p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import puzzle %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAssignments(assignments []AssignmentBackup) error {
	log.Printf("Importing %d assignments...", len(assignments))
	for _, a := range assignments {
		var completedAt interface{}
		if a.CompletedAt != nil {
			completedAt = *a.CompletedAt
		}
		query := "INSERT INTO assignments (id, puzzle_id, student_id, assigned_by, completed, assigned_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, a.ID, a.PuzzleID, a.StudentID, a.AssignedBy, a.Completed, a.AssignedAt, completedAt)
		if err != nil {
			return fmt.Errorf("failed to import assignment %d: %w", a.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAttempts(attempts []AttemptBackup) error {
	log.Printf("Importing %d attempts...", len(attempts))
	for _, a := range attempts {
		query := "INSERT INTO attempts (id, assignment_id, moves, correct, attempted_at) VALUES (?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, a.ID, a.AssignmentID, a.Moves, a.Correct, a.AttemptedAt)
		if err != nil {
			return fmt.Errorf("failed to import attempt %d: %w", a.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importClasses(classes []ClassBackup) error {
	log.Printf("Importing %d classes...", len(classes))
	for _, c := range classes {
		var actualStart, actualEnd interface{}
		if c.ActualStart != nil {
			actualStart = *c.ActualStart
		}
		if c.ActualEnd != nil {
			actualEnd = *c.ActualEnd
		}
		query := `INSERT INTO class_schedules (id, title, description, coach_id, start_time, end_time, timezone,
			meeting_url, meeting_provider, status, actual_start, actual_end, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, c.ID, c.Title, nullIfEmpty(c.Description), c.CoachID, c.StartTime, c.EndTime, c.Timezone,
			nullIfEmpty(c.MeetingURL), nullIfEmpty(c.MeetingProvider), c.Status, actualStart, actualEnd,
			c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import class %d: %w", c.ID, err)
		}

		for _, studentID := range c.StudentIDs {
			_, err := s.db.Exec("INSERT INTO class_students (class_id, student_id) VALUES (?, ?)", c.ID, studentID)
			if err != nil {
				return fmt.Errorf("failed to import enrollment for class %d, student %d: %w", c.ID, studentID, err)
			}
		}
		for _, a := range c.Attendance {
			_, err := s.db.Exec("INSERT INTO class_attendance (class_id, student_id, joined_at) VALUES (?, ?, ?)", c.ID, a.StudentID, a.JoinedAt)
			if err != nil {
				return fmt.Errorf("failed to import attendance for class %d, student %d: %w", c.ID, a.StudentID, err)
			}
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
