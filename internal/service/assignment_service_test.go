package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chesscoach/internal/database"
	"chesscoach/internal/models"
	"chesscoach/internal/repository"
)

// Back-rank mate in one: Ra8#.
const backRankFEN = "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"

type assignmentEnv struct {
	assignments    *AssignmentService
	puzzles        *PuzzleService
	assignmentRepo *repository.AssignmentRepository
	puzzleRepo     *repository.PuzzleRepository
	coach          *models.User
	student        *models.User
}

func newAssignmentEnv(t *testing.T) *assignmentEnv {
	t.Helper()

	db, err := database.InitializeSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	puzzleRepo := repository.NewPuzzleRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	coach, err := userRepo.CreateCoach("testcoach", "hash", "Test Coach", "coach@club.test")
	if err != nil {
		t.Fatalf("Failed to create coach: %v", err)
	}
	student, err := userRepo.CreateStudent(coach.ID, "teststudent", "hash", "Test Student", "student@club.test")
	if err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}

	return &assignmentEnv{
		assignments:    NewAssignmentService(assignmentRepo, puzzleRepo, userRepo),
		puzzles:        NewPuzzleService(puzzleRepo),
		assignmentRepo: assignmentRepo,
		puzzleRepo:     puzzleRepo,
		coach:          coach,
		student:        student,
	}
}

func (e *assignmentEnv) assign(t *testing.T) *models.Assignment {
	t.Helper()

	puzzle, err := e.puzzles.Create(e.coach, backRankFEN, []string{"a1a8"}, []string{"mate"})
	if err != nil {
		t.Fatalf("Failed to create puzzle: %v", err)
	}
	assignment, err := e.assignments.Assign(e.coach, puzzle.ID, e.student.ID)
	if err != nil {
		t.Fatalf("Failed to assign puzzle: %v", err)
	}
	return assignment
}

func TestSubmitAttemptCompletesAssignment(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newAssignmentEnv(t)
	assignment := env.assign(t)

	outcome, err := env.assignments.SubmitAttempt(env.student, assignment.ID, []string{"a1a8"})
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	if !outcome.Attempt.Correct {
		t.Error("Expected attempt to be graded correct")
	}
	if !outcome.Completed {
		t.Error("Expected assignment to be completed")
	}
	if outcome.FirstDeviation != -1 {
		t.Errorf("FirstDeviation = %d, want -1", outcome.FirstDeviation)
	}

	stored, err := env.assignmentRepo.GetByID(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to reload assignment: %v", err)
	}
	if !stored.Completed {
		t.Error("Expected stored assignment to be completed")
	}
	if stored.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}
}

func TestAttemptOnCompletedAssignmentIsRecorded(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newAssignmentEnv(t)
	assignment := env.assign(t)

	if _, err := env.assignments.SubmitAttempt(env.student, assignment.ID, []string{"a1a8"}); err != nil {
		t.Fatalf("First SubmitAttempt failed: %v", err)
	}

	// A wrong line after completion is still recorded, and the
	// assignment stays completed.
	outcome, err := env.assignments.SubmitAttempt(env.student, assignment.ID, []string{"a1b1"})
	if err != nil {
		t.Fatalf("SubmitAttempt after completion failed: %v", err)
	}
	if outcome.Attempt.Correct {
		t.Error("Expected wrong line to be graded incorrect")
	}
	if !outcome.Completed {
		t.Error("Expected assignment to remain completed")
	}

	stored, err := env.assignmentRepo.GetByID(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to reload assignment: %v", err)
	}
	if !stored.Completed {
		t.Error("Completed assignment was un-completed by a wrong attempt")
	}

	attempts, err := env.assignmentRepo.ListAttempts(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to list attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Errorf("Got %d attempts, want 2", len(attempts))
	}
}

func TestDeleteAssignment(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Run("incomplete assignment is deleted", func(t *testing.T) {
		env := newAssignmentEnv(t)
		assignment := env.assign(t)

		if err := env.assignments.Delete(env.coach, assignment.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		stored, err := env.assignmentRepo.GetByID(assignment.ID)
		if err != nil {
			t.Fatalf("Failed to reload assignment: %v", err)
		}
		if stored != nil {
			t.Error("Expected assignment to be gone")
		}
	})

	t.Run("completed assignment is refused", func(t *testing.T) {
		env := newAssignmentEnv(t)
		assignment := env.assign(t)

		if _, err := env.assignments.SubmitAttempt(env.student, assignment.ID, []string{"a1a8"}); err != nil {
			t.Fatalf("SubmitAttempt failed: %v", err)
		}

		err := env.assignments.Delete(env.coach, assignment.ID)
		if !errors.Is(err, ErrAssignmentCompleted) {
			t.Fatalf("Delete on completed assignment = %v, want ErrAssignmentCompleted", err)
		}
		stored, err := env.assignmentRepo.GetByID(assignment.ID)
		if err != nil {
			t.Fatalf("Failed to reload assignment: %v", err)
		}
		if stored == nil {
			t.Error("Completed assignment was deleted")
		}
	})
}

func TestAssignDuplicateRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newAssignmentEnv(t)
	assignment := env.assign(t)

	_, err := env.assignments.Assign(env.coach, assignment.PuzzleID, env.student.ID)
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("Duplicate Assign = %v, want ErrAlreadyAssigned", err)
	}
}

func TestAssignUnknownPuzzle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newAssignmentEnv(t)

	_, err := env.assignments.Assign(env.coach, 9999, env.student.ID)
	if !errors.Is(err, ErrPuzzleNotFound) {
		t.Errorf("Assign with unknown puzzle = %v, want ErrPuzzleNotFound", err)
	}
}

func TestPuzzleDeleteWithOpenAssignments(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newAssignmentEnv(t)
	assignment := env.assign(t)

	err := env.puzzles.Delete(env.coach, assignment.PuzzleID, false)
	if !errors.Is(err, ErrPuzzleInUse) {
		t.Fatalf("Delete with open assignment = %v, want ErrPuzzleInUse", err)
	}

	if err := env.puzzles.Delete(env.coach, assignment.PuzzleID, true); err != nil {
		t.Fatalf("Forced delete failed: %v", err)
	}

	puzzle, err := env.puzzleRepo.GetByID(assignment.PuzzleID)
	if err != nil {
		t.Fatalf("Failed to reload puzzle: %v", err)
	}
	if puzzle != nil {
		t.Error("Expected puzzle to be gone")
	}
	stored, err := env.assignmentRepo.GetByID(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to reload assignment: %v", err)
	}
	if stored != nil {
		t.Error("Expected assignment to cascade with the puzzle")
	}
}

func TestMarkCompletedIsMonotonic(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newAssignmentEnv(t)
	assignment := env.assign(t)

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := env.assignmentRepo.MarkCompleted(assignment.ID, first); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if err := env.assignmentRepo.MarkCompleted(assignment.ID, first.Add(time.Hour)); err != nil {
		t.Fatalf("Second MarkCompleted failed: %v", err)
	}

	stored, err := env.assignmentRepo.GetByID(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to reload assignment: %v", err)
	}
	if stored.CompletedAt == nil {
		t.Fatal("Expected completed_at to be set")
	}
	if !stored.CompletedAt.Equal(first) {
		t.Errorf("completed_at = %v, want %v", stored.CompletedAt, first)
	}
}
