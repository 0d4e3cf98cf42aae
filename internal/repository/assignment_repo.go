package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chesscoach/internal/database"
	"chesscoach/internal/models"
)

// AssignmentRepository handles database operations for assignments and attempts
type AssignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create assigns a puzzle to a student
func (r *AssignmentRepository) Create(puzzleID, studentID, assignedBy int64) (*models.Assignment, error) {
	query := `
		INSERT INTO assignments (puzzle_id, student_id, assigned_by, completed)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, puzzleID, studentID, assignedBy, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return r.GetByID(id)
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(id int64) (*models.Assignment, error) {
	query := `
		SELECT id, puzzle_id, student_id, assigned_by, completed, assigned_at, completed_at
		FROM assignments
		WHERE id = ?
	`
	a := &models.Assignment{}
	err := r.db.QueryRow(query, id).Scan(
		&a.ID,
		&a.PuzzleID,
		&a.StudentID,
		&a.AssignedBy,
		&a.Completed,
		&a.AssignedAt,
		&a.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

// Exists reports whether a puzzle is already assigned to a student
func (r *AssignmentRepository) Exists(puzzleID, studentID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM assignments WHERE puzzle_id = ? AND student_id = ?"
	if err := r.db.QueryRow(query, puzzleID, studentID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}

// ListByStudent retrieves a student's assignments with their puzzles
func (r *AssignmentRepository) ListByStudent(studentID int64) ([]models.AssignmentWithPuzzle, error) {
	query := `
		SELECT a.id, a.puzzle_id, a.student_id, a.assigned_by, a.completed, a.assigned_at, a.completed_at,
		       p.id, p.coach_id, p.fen, p.solution, COALESCE(p.themes, ''), p.created_at, p.updated_at
		FROM assignments a
		JOIN puzzles p ON p.id = a.puzzle_id
		WHERE a.student_id = ?
		ORDER BY a.assigned_at DESC
	`
	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.AssignmentWithPuzzle
	for rows.Next() {
		var a models.AssignmentWithPuzzle
		var solution, themes string
		if err := rows.Scan(
			&a.ID,
			&a.PuzzleID,
			&a.StudentID,
			&a.AssignedBy,
			&a.Completed,
			&a.AssignedAt,
			&a.CompletedAt,
			&a.Puzzle.ID,
			&a.Puzzle.CoachID,
			&a.Puzzle.FEN,
			&solution,
			&themes,
			&a.Puzzle.CreatedAt,
			&a.Puzzle.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Puzzle.Solution = splitMoves(solution)
		a.Puzzle.Themes = splitThemes(themes)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListByCoach retrieves assignments created by a coach, newest first
func (r *AssignmentRepository) ListByCoach(coachID int64) ([]models.AssignmentDetail, error) {
	query := `
		SELECT a.id, a.puzzle_id, a.student_id, a.assigned_by, a.completed, a.assigned_at, a.completed_at,
		       p.id, p.coach_id, p.fen, p.solution, COALESCE(p.themes, ''), p.created_at, p.updated_at,
		       u.name
		FROM assignments a
		JOIN puzzles p ON p.id = a.puzzle_id
		JOIN users u ON u.id = a.student_id
		WHERE a.assigned_by = ?
		ORDER BY a.assigned_at DESC
	`
	rows, err := r.db.Query(query, coachID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.AssignmentDetail
	for rows.Next() {
		var a models.AssignmentDetail
		var solution, themes string
		if err := rows.Scan(
			&a.ID,
			&a.PuzzleID,
			&a.StudentID,
			&a.AssignedBy,
			&a.Completed,
			&a.AssignedAt,
			&a.CompletedAt,
			&a.Puzzle.ID,
			&a.Puzzle.CoachID,
			&a.Puzzle.FEN,
			&solution,
			&themes,
			&a.Puzzle.CreatedAt,
			&a.Puzzle.UpdatedAt,
			&a.StudentName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Puzzle.Solution = splitMoves(solution)
		a.Puzzle.Themes = splitThemes(themes)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// MarkCompleted sets the completed flag. Completion is monotonic: a row
// that is already completed is left untouched.
func (r *AssignmentRepository) MarkCompleted(id int64, at time.Time) error {
	query := `
		UPDATE assignments
		SET completed = ?, completed_at = ?
		WHERE id = ? AND NOT completed
	`
	if _, err := r.db.Exec(query, true, at, id); err != nil {
		return fmt.Errorf("failed to mark assignment completed: %w", err)
	}
	return nil
}

// Delete removes an incomplete assignment and its attempts. Completed
// rows are never deleted here; their history stays for review.
func (r *AssignmentRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM assignments WHERE id = ? AND NOT completed", id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// AddAttempt records a solve attempt
func (r *AssignmentRepository) AddAttempt(assignmentID int64, moves []string, correct bool) (*models.Attempt, error) {
	query := `
		INSERT INTO attempts (assignment_id, moves, correct)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, assignmentID, joinMoves(moves), correct)
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	return &models.Attempt{
		ID:           id,
		AssignmentID: assignmentID,
		Moves:        moves,
		Correct:      correct,
		AttemptedAt:  time.Now(),
	}, nil
}

// ListAttempts retrieves all attempts for an assignment, oldest first
func (r *AssignmentRepository) ListAttempts(assignmentID int64) ([]models.Attempt, error) {
	query := `
		SELECT id, assignment_id, moves, correct, attempted_at
		FROM attempts
		WHERE assignment_id = ?
		ORDER BY attempted_at
	`
	rows, err := r.db.Query(query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		var moves string
		if err := rows.Scan(&a.ID, &a.AssignmentID, &moves, &a.Correct, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.Moves = splitMoves(moves)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
