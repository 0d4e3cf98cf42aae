package service

import (
	"errors"
	"fmt"
	"time"

	"chesscoach/internal/models"
	"chesscoach/internal/repository"
	"chesscoach/internal/rules"
)

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAssignmentCompleted = errors.New("assignment already completed")
	ErrAlreadyAssigned     = errors.New("puzzle already assigned to student")
	ErrNotYourAssignment   = errors.New("assignment belongs to someone else")
)

// AttemptOutcome is what a student gets back after submitting an attempt
type AttemptOutcome struct {
	Attempt        models.Attempt `json:"attempt"`
	Completed      bool           `json:"completed"`
	FirstDeviation int            `json:"first_deviation"` // -1 when the line matched
	IllegalMove    string         `json:"illegal_move,omitempty"`
}

// AssignmentService handles puzzle assignment and attempt grading
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	puzzleRepo     *repository.PuzzleRepository
	userRepo       *repository.UserRepository
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(assignmentRepo *repository.AssignmentRepository, puzzleRepo *repository.PuzzleRepository, userRepo *repository.UserRepository) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		puzzleRepo:     puzzleRepo,
		userRepo:       userRepo,
	}
}

// Assign gives one of the coach's puzzles to one of their students.
// Assigning the same puzzle to the same student twice is rejected.
func (s *AssignmentService) Assign(coach *models.User, puzzleID, studentID int64) (*models.Assignment, error) {
	puzzle, err := s.puzzleRepo.GetByID(puzzleID)
	if err != nil {
		return nil, err
	}
	if puzzle == nil {
		return nil, ErrPuzzleNotFound
	}
	if puzzle.CoachID != coach.ID {
		return nil, ErrNotPuzzleOwner
	}

	student, err := s.userRepo.GetUserByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || !student.IsStudent() || student.CoachID == nil || *student.CoachID != coach.ID {
		return nil, ErrNotYourStudent
	}

	exists, err := s.assignmentRepo.Exists(puzzleID, studentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyAssigned
	}

	return s.assignmentRepo.Create(puzzleID, studentID, coach.ID)
}

// ListForStudent returns a student's assignments with their puzzles.
// Solutions are stripped so the client cannot peek.
func (s *AssignmentService) ListForStudent(student *models.User) ([]models.AssignmentWithPuzzle, error) {
	assignments, err := s.assignmentRepo.ListByStudent(student.ID)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		assignments[i].Puzzle.Solution = nil
	}
	return assignments, nil
}

// ListForCoach returns all assignments made by a coach, with attempt logs
func (s *AssignmentService) ListForCoach(coach *models.User) ([]models.AssignmentDetail, error) {
	details, err := s.assignmentRepo.ListByCoach(coach.ID)
	if err != nil {
		return nil, err
	}
	for i := range details {
		attempts, err := s.assignmentRepo.ListAttempts(details[i].ID)
		if err != nil {
			return nil, err
		}
		details[i].Attempts = attempts
	}
	return details, nil
}

// Get returns one assignment with its attempts. Coaches see their own
// assignments, students see theirs with the solution stripped.
func (s *AssignmentService) Get(user *models.User, id int64) (*models.AssignmentDetail, error) {
	assignment, err := s.assignmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if err := s.authorize(user, assignment); err != nil {
		return nil, err
	}

	puzzle, err := s.puzzleRepo.GetByID(assignment.PuzzleID)
	if err != nil {
		return nil, err
	}
	if puzzle == nil {
		return nil, fmt.Errorf("assignment %d: %w", id, ErrPuzzleNotFound)
	}
	if user.IsStudent() {
		puzzle.Solution = nil
	}

	student, err := s.userRepo.GetUserByID(assignment.StudentID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.assignmentRepo.ListAttempts(id)
	if err != nil {
		return nil, err
	}

	detail := &models.AssignmentDetail{
		Assignment: *assignment,
		Puzzle:     *puzzle,
		Attempts:   attempts,
	}
	if student != nil {
		detail.StudentName = student.Name
	}
	return detail, nil
}

// Delete withdraws an assignment. Only the coach who made it may
// delete, and only while it is incomplete; a completed assignment
// keeps its attempt history.
func (s *AssignmentService) Delete(coach *models.User, id int64) error {
	assignment, err := s.assignmentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if assignment == nil {
		return nil
	}
	if assignment.AssignedBy != coach.ID {
		return ErrNotYourAssignment
	}
	if assignment.Completed {
		return ErrAssignmentCompleted
	}
	return s.assignmentRepo.Delete(id)
}

// SubmitAttempt grades a student's move sequence against the puzzle
// solution and records it. A correct attempt completes the assignment;
// completion never reverts, and attempts on completed assignments are
// still recorded for review.
func (s *AssignmentService) SubmitAttempt(student *models.User, assignmentID int64, moves []string) (*AttemptOutcome, error) {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.StudentID != student.ID {
		return nil, ErrNotYourAssignment
	}

	puzzle, err := s.puzzleRepo.GetByID(assignment.PuzzleID)
	if err != nil {
		return nil, err
	}
	if puzzle == nil {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, ErrPuzzleNotFound)
	}

	result := rules.GradeAttempt(puzzle.FEN, puzzle.Solution, moves)

	attempt, err := s.assignmentRepo.AddAttempt(assignmentID, moves, result.Correct)
	if err != nil {
		return nil, err
	}

	completed := assignment.Completed
	if result.Correct && !assignment.Completed {
		if err := s.assignmentRepo.MarkCompleted(assignmentID, time.Now()); err != nil {
			return nil, err
		}
		completed = true
	}

	return &AttemptOutcome{
		Attempt:        *attempt,
		Completed:      completed,
		FirstDeviation: result.FirstDeviation,
		IllegalMove:    result.IllegalMove,
	}, nil
}

func (s *AssignmentService) authorize(user *models.User, assignment *models.Assignment) error {
	if user.IsCoach() {
		if assignment.AssignedBy != user.ID {
			return ErrNotYourAssignment
		}
		return nil
	}
	if assignment.StudentID != user.ID {
		return ErrNotYourAssignment
	}
	return nil
}
