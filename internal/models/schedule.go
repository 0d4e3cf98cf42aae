package models

import "time"

// Class schedule statuses. Status is derived from wall-clock time and coach
// start/end actions; there is no enforced state machine.
const (
	ClassNotStarted = "not_started"
	ClassInProgress = "in_progress"
	ClassCompleted  = "completed"
)

// ClassSchedule represents a coach-defined class time window with an
// external video-meeting link.
type ClassSchedule struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CoachID         int64      `json:"coach_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Timezone        string     `json:"timezone"` // IANA name, e.g. "Europe/Madrid"
	MeetingURL      string     `json:"meeting_url"`
	MeetingProvider string     `json:"meeting_provider"`
	Status          string     `json:"status"`
	ActualStart     *time.Time `json:"actual_start,omitempty"`
	ActualEnd       *time.Time `json:"actual_end,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EffectiveStatus returns the status as of now. A stored in_progress or
// completed status wins; otherwise the status is a pure function of the
// scheduled window.
func (c *ClassSchedule) EffectiveStatus(now time.Time) string {
	switch c.Status {
	case ClassCompleted:
		return ClassCompleted
	case ClassInProgress:
		if now.After(c.EndTime) {
			return ClassCompleted
		}
		return ClassInProgress
	}
	if now.Before(c.StartTime) {
		return ClassNotStarted
	}
	if now.After(c.EndTime) {
		return ClassCompleted
	}
	return ClassInProgress
}

// ClassWithStudents combines a class with its enrolled students and attendees
type ClassWithStudents struct {
	ClassSchedule
	Students  []User  `json:"students"`
	Attendees []int64 `json:"attendees"`
}

// Attendance records a student joining a class
type Attendance struct {
	ID        int64     `json:"id"`
	ClassID   int64     `json:"class_id"`
	StudentID int64     `json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
}
