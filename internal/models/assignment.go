package models

import "time"

// Assignment links one puzzle to one student and tracks completion.
// Completion is monotonic: once set it is never cleared.
type Assignment struct {
	ID          int64      `json:"id"`
	PuzzleID    int64      `json:"puzzle_id"`
	StudentID   int64      `json:"student_id"`
	AssignedBy  int64      `json:"assigned_by"`
	Completed   bool       `json:"completed"`
	AssignedAt  time.Time  `json:"assigned_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Attempt records one solve attempt against an assignment
type Attempt struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	Moves        []string  `json:"moves"` // UCI move strings as submitted
	Correct      bool      `json:"correct"`
	AttemptedAt  time.Time `json:"attempted_at"`
}

// AssignmentWithPuzzle combines an assignment with its puzzle for student views
type AssignmentWithPuzzle struct {
	Assignment
	Puzzle Puzzle `json:"puzzle"`
}

// AssignmentDetail combines an assignment with its puzzle and attempt log
// for coach review
type AssignmentDetail struct {
	Assignment
	Puzzle      Puzzle    `json:"puzzle"`
	StudentName string    `json:"student_name"`
	Attempts    []Attempt `json:"attempts"`
}
