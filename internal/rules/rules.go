// Package rules is a thin wrapper around the notnil/chess rules engine.
// It parses FEN positions, checks UCI move legality and grades attempt
// lines against a puzzle solution. No chess logic lives here.
package rules

import (
	"fmt"

	"github.com/notnil/chess"
)

// ValidateFEN checks that fen describes a parseable position
func ValidateFEN(fen string) error {
	if _, err := chess.FEN(fen); err != nil {
		return fmt.Errorf("invalid FEN: %w", err)
	}
	return nil
}

// ValidateLine checks that every move in the line is legal when played in
// order from the starting position. Used to verify puzzle solutions on
// create and update.
func ValidateLine(fen string, moves []string) error {
	if len(moves) == 0 {
		return fmt.Errorf("solution must contain at least one move")
	}
	_, err := ApplyMoves(fen, moves)
	return err
}

// ApplyMoves plays a sequence of UCI moves from the starting position and
// returns the resulting FEN.
func ApplyMoves(fen string, moves []string) (string, error) {
	game, err := newGame(fen)
	if err != nil {
		return "", err
	}

	notation := chess.UCINotation{}
	for i, uci := range moves {
		move, err := notation.Decode(game.Position(), uci)
		if err != nil {
			return "", fmt.Errorf("move %d (%s): %w", i+1, uci, err)
		}
		if err := game.Move(move); err != nil {
			return "", fmt.Errorf("move %d (%s) is illegal: %w", i+1, uci, err)
		}
	}

	return game.Position().String(), nil
}

// AttemptResult is the outcome of grading an attempt against a solution
type AttemptResult struct {
	// Correct is true when the attempt reproduces the full solution line
	Correct bool `json:"correct"`
	// MovesPlayed counts the legal moves played before stopping
	MovesPlayed int `json:"moves_played"`
	// FirstDeviation is the zero-based index of the first move that
	// differs from the solution, or -1 if none
	FirstDeviation int `json:"first_deviation"`
	// IllegalMove is set when the attempt contained a move that is not
	// legal in its position
	IllegalMove string `json:"illegal_move,omitempty"`
}

// GradeAttempt plays the attempt from the starting position and compares it
// to the solution. Moves are normalized through the engine before comparing,
// so equivalent encodings of the same move match. An illegal or malformed
// move ends the attempt; it is never a server error.
func GradeAttempt(fen string, solution, attempt []string) AttemptResult {
	result := AttemptResult{FirstDeviation: -1}

	game, err := newGame(fen)
	if err != nil {
		result.IllegalMove = fen
		return result
	}

	notation := chess.UCINotation{}
	for i, uci := range attempt {
		move, err := notation.Decode(game.Position(), uci)
		if err != nil {
			result.IllegalMove = uci
			result.FirstDeviation = i
			return result
		}

		normalized := notation.Encode(game.Position(), move)

		if err := game.Move(move); err != nil {
			result.IllegalMove = uci
			result.FirstDeviation = i
			return result
		}

		if i >= len(solution) || normalized != solution[i] {
			result.FirstDeviation = i
			return result
		}
		result.MovesPlayed++
	}

	result.Correct = len(attempt) == len(solution)
	if !result.Correct && result.FirstDeviation == -1 {
		// Attempt is a strict prefix of the solution
		result.FirstDeviation = len(attempt)
	}
	return result
}

func newGame(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}
	return chess.NewGame(opt), nil
}
