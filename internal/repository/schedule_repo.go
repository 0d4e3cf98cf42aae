package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chesscoach/internal/database"
	"chesscoach/internal/models"
)

// ScheduleRepository handles database operations for class schedules,
// enrollment and attendance
type ScheduleRepository struct {
	db *database.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *database.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const classColumns = `
	id, title, COALESCE(description, ''), coach_id, start_time, end_time,
	timezone, COALESCE(meeting_url, ''), COALESCE(meeting_provider, ''),
	status, actual_start, actual_end, created_at, updated_at
`

func scanClass(row interface{ Scan(...interface{}) error }) (*models.ClassSchedule, error) {
	c := &models.ClassSchedule{}
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.CoachID,
		&c.StartTime,
		&c.EndTime,
		&c.Timezone,
		&c.MeetingURL,
		&c.MeetingProvider,
		&c.Status,
		&c.ActualStart,
		&c.ActualEnd,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new class schedule and enrolls the given students
func (r *ScheduleRepository) Create(class *models.ClassSchedule, studentIDs []int64) (*models.ClassSchedule, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO class_schedules
			(title, description, coach_id, start_time, end_time, timezone, meeting_url, meeting_provider, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := tx.ExecReturningID(query,
		class.Title, class.Description, class.CoachID,
		class.StartTime, class.EndTime, class.Timezone,
		class.MeetingURL, class.MeetingProvider, models.ClassNotStarted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	for _, studentID := range studentIDs {
		if _, err := tx.Exec("INSERT INTO class_students (class_id, student_id) VALUES (?, ?)", id, studentID); err != nil {
			return nil, fmt.Errorf("failed to enroll student %d: %w", studentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return r.GetByID(id)
}

// GetByID retrieves a class schedule by ID
func (r *ScheduleRepository) GetByID(id int64) (*models.ClassSchedule, error) {
	query := "SELECT " + classColumns + " FROM class_schedules WHERE id = ?"
	class, err := scanClass(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return class, nil
}

// ListByCoach retrieves all classes created by a coach, soonest first
func (r *ScheduleRepository) ListByCoach(coachID int64) ([]models.ClassSchedule, error) {
	query := "SELECT " + classColumns + " FROM class_schedules WHERE coach_id = ? ORDER BY start_time"
	return r.list(query, coachID)
}

// ListByStudent retrieves all classes a student is enrolled in, soonest first
func (r *ScheduleRepository) ListByStudent(studentID int64) ([]models.ClassSchedule, error) {
	query := `
		SELECT ` + classColumns + `
		FROM class_schedules
		WHERE id IN (SELECT class_id FROM class_students WHERE student_id = ?)
		ORDER BY start_time
	`
	return r.list(query, studentID)
}

func (r *ScheduleRepository) list(query string, args ...interface{}) ([]models.ClassSchedule, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	var classes []models.ClassSchedule
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, *class)
	}
	return classes, rows.Err()
}

// Update replaces a class's editable fields and enrollment
func (r *ScheduleRepository) Update(class *models.ClassSchedule, studentIDs []int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE class_schedules
		SET title = ?, description = ?, start_time = ?, end_time = ?, timezone = ?,
		    meeting_url = ?, meeting_provider = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := tx.Exec(query,
		class.Title, class.Description, class.StartTime, class.EndTime,
		class.Timezone, class.MeetingURL, class.MeetingProvider, class.ID,
	); err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}

	if studentIDs != nil {
		if _, err := tx.Exec("DELETE FROM class_students WHERE class_id = ?", class.ID); err != nil {
			return fmt.Errorf("failed to clear enrollment: %w", err)
		}
		for _, studentID := range studentIDs {
			if _, err := tx.Exec("INSERT INTO class_students (class_id, student_id) VALUES (?, ?)", class.ID, studentID); err != nil {
				return fmt.Errorf("failed to enroll student %d: %w", studentID, err)
			}
		}
	}

	return tx.Commit()
}

// Delete removes a class schedule, its enrollment and attendance
func (r *ScheduleRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM class_schedules WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}
	return nil
}

// ListStudents retrieves the students enrolled in a class
func (r *ScheduleRepository) ListStudents(classID int64) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id IN (SELECT student_id FROM class_students WHERE class_id = ?)
		ORDER BY name
	`
	rows, err := r.db.Query(query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to query class students: %w", err)
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

// IsEnrolled reports whether a student is enrolled in a class
func (r *ScheduleRepository) IsEnrolled(classID, studentID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM class_students WHERE class_id = ? AND student_id = ?"
	if err := r.db.QueryRow(query, classID, studentID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

// MarkStarted records a coach starting a class
func (r *ScheduleRepository) MarkStarted(id int64, at time.Time) error {
	query := `
		UPDATE class_schedules
		SET status = ?, actual_start = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	if _, err := r.db.Exec(query, models.ClassInProgress, at, id, models.ClassNotStarted); err != nil {
		return fmt.Errorf("failed to mark class started: %w", err)
	}
	return nil
}

// MarkCompleted records a class ending
func (r *ScheduleRepository) MarkCompleted(id int64, at time.Time) error {
	query := `
		UPDATE class_schedules
		SET status = ?, actual_end = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != ?
	`
	if _, err := r.db.Exec(query, models.ClassCompleted, at, id, models.ClassCompleted); err != nil {
		return fmt.Errorf("failed to mark class completed: %w", err)
	}
	return nil
}

// AutoCompleteElapsed marks every class whose end time has passed as
// completed. Returns the number of classes transitioned. Called by the
// background poller.
func (r *ScheduleRepository) AutoCompleteElapsed(now time.Time) (int64, error) {
	query := `
		UPDATE class_schedules
		SET status = ?, actual_end = COALESCE(actual_end, end_time), updated_at = CURRENT_TIMESTAMP
		WHERE status != ? AND end_time < ?
	`
	result, err := r.db.Exec(query, models.ClassCompleted, models.ClassCompleted, now)
	if err != nil {
		return 0, fmt.Errorf("failed to auto-complete classes: %w", err)
	}
	return result.RowsAffected()
}

// AddAttendance records a student joining a class. Re-joining is not an
// error; only the first join is kept.
func (r *ScheduleRepository) AddAttendance(classID, studentID int64) error {
	var count int
	query := "SELECT COUNT(*) FROM class_attendance WHERE class_id = ? AND student_id = ?"
	if err := r.db.QueryRow(query, classID, studentID).Scan(&count); err != nil {
		return fmt.Errorf("failed to check attendance: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := r.db.Exec("INSERT INTO class_attendance (class_id, student_id) VALUES (?, ?)", classID, studentID); err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}

// ListAttendance retrieves the ids of students who joined a class
func (r *ScheduleRepository) ListAttendance(classID int64) ([]int64, error) {
	query := "SELECT student_id FROM class_attendance WHERE class_id = ? ORDER BY joined_at"
	rows, err := r.db.Query(query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
