package models

import "time"

// Puzzle represents a training position: a starting FEN plus the known
// correct move sequence in UCI notation (e.g. "e2e4", "e7e8q").
type Puzzle struct {
	ID        int64     `json:"id"`
	FEN       string    `json:"fen"`
	Solution  []string  `json:"solution"`
	Themes    []string  `json:"themes"`
	CoachID   int64     `json:"coach_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PuzzleSummary extends Puzzle with assignment usage for coach listings
type PuzzleSummary struct {
	Puzzle
	AssignedCount  int `json:"assigned_count"`
	CompletedCount int `json:"completed_count"`
}
