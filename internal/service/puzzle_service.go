package service

import (
	"errors"
	"fmt"
	"strings"

	"chesscoach/internal/models"
	"chesscoach/internal/repository"
	"chesscoach/internal/rules"
	"chesscoach/internal/validation"
)

var (
	ErrPuzzleNotFound  = errors.New("puzzle not found")
	ErrNotPuzzleOwner  = errors.New("puzzle belongs to another coach")
	ErrPuzzleInUse     = errors.New("puzzle has open assignments")
	ErrInvalidSolution = errors.New("solution is not a legal line")
)

// PuzzleService handles puzzle business logic
type PuzzleService struct {
	puzzleRepo *repository.PuzzleRepository
}

// NewPuzzleService creates a new puzzle service
func NewPuzzleService(puzzleRepo *repository.PuzzleRepository) *PuzzleService {
	return &PuzzleService{puzzleRepo: puzzleRepo}
}

// Create validates and stores a new puzzle for a coach. The solution line
// must be legal from the starting position.
func (s *PuzzleService) Create(coach *models.User, fen string, solution, themes []string) (*models.Puzzle, error) {
	if err := s.validate(fen, solution); err != nil {
		return nil, err
	}
	return s.puzzleRepo.Create(coach.ID, fen, solution, normalizeThemes(themes))
}

// Get retrieves a puzzle. Students receive puzzles through assignments,
// which strip the solution at the handler layer.
func (s *PuzzleService) Get(id int64) (*models.Puzzle, error) {
	return s.puzzleRepo.GetByID(id)
}

// ListByCoach retrieves a coach's puzzles with assignment counts
func (s *PuzzleService) ListByCoach(coach *models.User) ([]models.PuzzleSummary, error) {
	return s.puzzleRepo.ListByCoach(coach.ID)
}

// Update replaces a puzzle's position, solution and themes. Only the
// owning coach may edit.
func (s *PuzzleService) Update(coach *models.User, id int64, fen string, solution, themes []string) (*models.Puzzle, error) {
	puzzle, err := s.ownedPuzzle(coach, id)
	if err != nil || puzzle == nil {
		return nil, err
	}

	if err := s.validate(fen, solution); err != nil {
		return nil, err
	}

	if err := s.puzzleRepo.Update(id, fen, solution, normalizeThemes(themes)); err != nil {
		return nil, err
	}
	return s.puzzleRepo.GetByID(id)
}

// Delete removes a puzzle. Deletion is refused while incomplete
// assignments reference it, unless force is set.
func (s *PuzzleService) Delete(coach *models.User, id int64, force bool) error {
	puzzle, err := s.ownedPuzzle(coach, id)
	if err != nil {
		return err
	}
	if puzzle == nil {
		return nil
	}

	if !force {
		open, err := s.puzzleRepo.CountOpenAssignments(id)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrPuzzleInUse
		}
	}

	return s.puzzleRepo.Delete(id)
}

func (s *PuzzleService) ownedPuzzle(coach *models.User, id int64) (*models.Puzzle, error) {
	puzzle, err := s.puzzleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if puzzle == nil {
		return nil, nil
	}
	if puzzle.CoachID != coach.ID {
		return nil, ErrNotPuzzleOwner
	}
	return puzzle, nil
}

func (s *PuzzleService) validate(fen string, solution []string) error {
	if err := rules.ValidateFEN(fen); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSolution, err)
	}
	for _, move := range solution {
		if err := validation.ValidateUCIMove(move); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSolution, err)
		}
	}
	if err := rules.ValidateLine(fen, solution); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSolution, err)
	}
	return nil
}

// normalizeThemes lowercases, trims and de-duplicates theme tags
func normalizeThemes(themes []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, theme := range themes {
		theme = strings.ToLower(strings.TrimSpace(theme))
		if theme == "" || seen[theme] {
			continue
		}
		seen[theme] = true
		out = append(out, theme)
	}
	return out
}
