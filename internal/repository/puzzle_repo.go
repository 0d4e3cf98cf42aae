package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"chesscoach/internal/database"
	"chesscoach/internal/models"
)

// PuzzleRepository handles database operations for puzzles
type PuzzleRepository struct {
	db *database.DB
}

// NewPuzzleRepository creates a new puzzle repository
func NewPuzzleRepository(db *database.DB) *PuzzleRepository {
	return &PuzzleRepository{db: db}
}

// joinMoves serializes a UCI move list for storage
func joinMoves(moves []string) string {
	return strings.Join(moves, " ")
}

// splitMoves parses a stored UCI move list
func splitMoves(s string) []string {
	return strings.Fields(s)
}

// joinThemes serializes theme tags for storage
func joinThemes(themes []string) string {
	return strings.Join(themes, ",")
}

// splitThemes parses stored theme tags
func splitThemes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	themes := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			themes = append(themes, trimmed)
		}
	}
	return themes
}

// Create inserts a new puzzle
func (r *PuzzleRepository) Create(coachID int64, fen string, solution, themes []string) (*models.Puzzle, error) {
	query := `
		INSERT INTO puzzles (coach_id, fen, solution, themes)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, coachID, fen, joinMoves(solution), joinThemes(themes))
	if err != nil {
		return nil, fmt.Errorf("failed to create puzzle: %w", err)
	}
	return r.GetByID(id)
}

// GetByID retrieves a puzzle by ID
func (r *PuzzleRepository) GetByID(id int64) (*models.Puzzle, error) {
	query := `
		SELECT id, coach_id, fen, solution, COALESCE(themes, ''), created_at, updated_at
		FROM puzzles
		WHERE id = ?
	`
	puzzle := &models.Puzzle{}
	var solution, themes string
	err := r.db.QueryRow(query, id).Scan(
		&puzzle.ID,
		&puzzle.CoachID,
		&puzzle.FEN,
		&solution,
		&themes,
		&puzzle.CreatedAt,
		&puzzle.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle: %w", err)
	}
	puzzle.Solution = splitMoves(solution)
	puzzle.Themes = splitThemes(themes)
	return puzzle, nil
}

// ListByCoach retrieves all puzzles owned by a coach with assignment counts
func (r *PuzzleRepository) ListByCoach(coachID int64) ([]models.PuzzleSummary, error) {
	query := `
		SELECT p.id, p.coach_id, p.fen, p.solution, COALESCE(p.themes, ''),
		       p.created_at, p.updated_at,
		       COUNT(a.id),
		       COALESCE(SUM(CASE WHEN a.completed THEN 1 ELSE 0 END), 0)
		FROM puzzles p
		LEFT JOIN assignments a ON a.puzzle_id = p.id
		WHERE p.coach_id = ?
		GROUP BY p.id, p.coach_id, p.fen, p.solution, p.themes, p.created_at, p.updated_at
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(query, coachID)
	if err != nil {
		return nil, fmt.Errorf("failed to query puzzles: %w", err)
	}
	defer rows.Close()

	var puzzles []models.PuzzleSummary
	for rows.Next() {
		var p models.PuzzleSummary
		var solution, themes string
		if err := rows.Scan(
			&p.ID,
			&p.CoachID,
			&p.FEN,
			&solution,
			&themes,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.AssignedCount,
			&p.CompletedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan puzzle: %w", err)
		}
		p.Solution = splitMoves(solution)
		p.Themes = splitThemes(themes)
		puzzles = append(puzzles, p)
	}
	return puzzles, rows.Err()
}

// Update replaces a puzzle's position, solution and themes
func (r *PuzzleRepository) Update(id int64, fen string, solution, themes []string) error {
	query := `
		UPDATE puzzles
		SET fen = ?, solution = ?, themes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, fen, joinMoves(solution), joinThemes(themes), id); err != nil {
		return fmt.Errorf("failed to update puzzle: %w", err)
	}
	return nil
}

// Delete removes a puzzle
func (r *PuzzleRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM puzzles WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete puzzle: %w", err)
	}
	return nil
}

// CountOpenAssignments counts incomplete assignments referencing a puzzle
func (r *PuzzleRepository) CountOpenAssignments(puzzleID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM assignments WHERE puzzle_id = ? AND NOT completed"
	if err := r.db.QueryRow(query, puzzleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}
