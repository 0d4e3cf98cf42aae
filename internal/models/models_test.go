package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{
			name:      "future expiry",
			expiresAt: time.Now().Add(1 * time.Hour),
			expected:  false,
		},
		{
			name:      "past expiry",
			expiresAt: time.Now().Add(-1 * time.Hour),
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{ExpiresAt: tt.expiresAt}
			if got := s.IsExpired(); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserRoleChecks(t *testing.T) {
	coach := &User{Role: RoleCoach}
	student := &User{Role: RoleStudent}

	if !coach.IsCoach() || coach.IsStudent() {
		t.Error("coach role checks wrong")
	}
	if !student.IsStudent() || student.IsCoach() {
		t.Error("student role checks wrong")
	}
}

func TestClassEffectiveStatus(t *testing.T) {
	base := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	class := func(status string) *ClassSchedule {
		return &ClassSchedule{
			StartTime: base,
			EndTime:   base.Add(1 * time.Hour),
			Status:    status,
		}
	}

	tests := []struct {
		name     string
		class    *ClassSchedule
		now      time.Time
		expected string
	}{
		{
			name:     "before window",
			class:    class(ClassNotStarted),
			now:      base.Add(-30 * time.Minute),
			expected: ClassNotStarted,
		},
		{
			name:     "inside window",
			class:    class(ClassNotStarted),
			now:      base.Add(30 * time.Minute),
			expected: ClassInProgress,
		},
		{
			name:     "after window",
			class:    class(ClassNotStarted),
			now:      base.Add(2 * time.Hour),
			expected: ClassCompleted,
		},
		{
			name:     "started early by coach",
			class:    class(ClassInProgress),
			now:      base.Add(-10 * time.Minute),
			expected: ClassInProgress,
		},
		{
			name:     "in progress past end auto-completes",
			class:    class(ClassInProgress),
			now:      base.Add(90 * time.Minute),
			expected: ClassCompleted,
		},
		{
			name:     "completed stays completed",
			class:    class(ClassCompleted),
			now:      base.Add(-1 * time.Hour),
			expected: ClassCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.class.EffectiveStatus(tt.now); got != tt.expected {
				t.Errorf("EffectiveStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}
