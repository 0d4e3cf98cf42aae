package rules

import "testing"

const (
	startFEN     = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	scholarsFEN  = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"
	backRankFEN  = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	promotionFEN = "8/P7/8/8/8/8/k6K/8 w - - 0 1"
)

func TestValidateFEN(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		wantErr bool
	}{
		{"starting position", startFEN, false},
		{"midgame position", scholarsFEN, false},
		{"empty", "", true},
		{"garbage", "not a position", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFEN(tt.fen)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFEN() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLine(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		moves   []string
		wantErr bool
	}{
		{"legal line", startFEN, []string{"e2e4", "e7e5", "g1f3"}, false},
		{"mate in one", scholarsFEN, []string{"h5f7"}, false},
		{"promotion", promotionFEN, []string{"a7a8q"}, false},
		{"empty solution", startFEN, nil, true},
		{"illegal first move", startFEN, []string{"e2e5"}, true},
		{"illegal later move", startFEN, []string{"e2e4", "e7e5", "e4e5"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLine(tt.fen, tt.moves)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLine() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyMoves(t *testing.T) {
	fen, err := ApplyMoves(startFEN, []string{"e2e4"})
	if err != nil {
		t.Fatalf("ApplyMoves() error = %v", err)
	}
	expected := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if fen != expected {
		t.Errorf("ApplyMoves() = %q, want %q", fen, expected)
	}
}

func TestGradeAttempt(t *testing.T) {
	tests := []struct {
		name          string
		fen           string
		solution      []string
		attempt       []string
		wantCorrect   bool
		wantDeviation int
		wantIllegal   string
	}{
		{
			name:          "exact match single move",
			fen:           scholarsFEN,
			solution:      []string{"h5f7"},
			attempt:       []string{"h5f7"},
			wantCorrect:   true,
			wantDeviation: -1,
		},
		{
			name:          "exact match multi move",
			fen:           startFEN,
			solution:      []string{"e2e4", "e7e5", "g1f3"},
			attempt:       []string{"e2e4", "e7e5", "g1f3"},
			wantCorrect:   true,
			wantDeviation: -1,
		},
		{
			name:          "wrong first move",
			fen:           backRankFEN,
			solution:      []string{"a1a8"},
			attempt:       []string{"a1b1"},
			wantCorrect:   false,
			wantDeviation: 0,
		},
		{
			name:          "deviates mid line",
			fen:           startFEN,
			solution:      []string{"e2e4", "e7e5", "g1f3"},
			attempt:       []string{"e2e4", "e7e5", "b1c3"},
			wantCorrect:   false,
			wantDeviation: 2,
		},
		{
			name:          "prefix of solution is incomplete",
			fen:           startFEN,
			solution:      []string{"e2e4", "e7e5", "g1f3"},
			attempt:       []string{"e2e4", "e7e5"},
			wantCorrect:   false,
			wantDeviation: 2,
		},
		{
			name:          "illegal move recorded not errored",
			fen:           startFEN,
			solution:      []string{"e2e4"},
			attempt:       []string{"e2e5"},
			wantCorrect:   false,
			wantDeviation: 0,
			wantIllegal:   "e2e5",
		},
		{
			name:          "malformed move recorded not errored",
			fen:           startFEN,
			solution:      []string{"e2e4"},
			attempt:       []string{"Nf3"},
			wantCorrect:   false,
			wantDeviation: 0,
			wantIllegal:   "Nf3",
		},
		{
			name:          "extra moves beyond solution",
			fen:           startFEN,
			solution:      []string{"e2e4"},
			attempt:       []string{"e2e4", "e7e5"},
			wantCorrect:   false,
			wantDeviation: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GradeAttempt(tt.fen, tt.solution, tt.attempt)
			if result.Correct != tt.wantCorrect {
				t.Errorf("Correct = %v, want %v", result.Correct, tt.wantCorrect)
			}
			if result.FirstDeviation != tt.wantDeviation {
				t.Errorf("FirstDeviation = %d, want %d", result.FirstDeviation, tt.wantDeviation)
			}
			if result.IllegalMove != tt.wantIllegal {
				t.Errorf("IllegalMove = %q, want %q", result.IllegalMove, tt.wantIllegal)
			}
		})
	}
}
