package service

import (
	"reflect"
	"testing"
	"time"

	"chesscoach/internal/models"
)

func TestNormalizeThemes(t *testing.T) {
	tests := []struct {
		name     string
		themes   []string
		expected []string
	}{
		{
			name:     "nil slice",
			themes:   nil,
			expected: nil,
		},
		{
			name:     "lowercased and trimmed",
			themes:   []string{" Fork ", "PIN"},
			expected: []string{"fork", "pin"},
		},
		{
			name:     "duplicates removed",
			themes:   []string{"fork", "Fork", "fork "},
			expected: []string{"fork"},
		},
		{
			name:     "empty entries dropped",
			themes:   []string{"", "  ", "endgame"},
			expected: []string{"endgame"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeThemes(tt.themes)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("normalizeThemes() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestJoinWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	class := &models.ClassSchedule{
		StartTime: start,
		EndTime:   end,
		Status:    models.ClassNotStarted,
	}

	tests := []struct {
		name     string
		now      time.Time
		joinable bool
	}{
		{"well before start", start.Add(-2 * time.Hour), false},
		{"just outside lead time", start.Add(-joinLeadTime - time.Minute), false},
		{"inside lead time", start.Add(-joinLeadTime + time.Minute), true},
		{"during class", start.Add(30 * time.Minute), true},
		{"after end", end.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if joinable := joinWindowOpen(class, tt.now); joinable != tt.joinable {
				t.Errorf("joinWindowOpen at %v = %v, want %v", tt.now, joinable, tt.joinable)
			}
		})
	}
}
