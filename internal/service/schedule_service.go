package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"chesscoach/internal/models"
	"chesscoach/internal/repository"
	"chesscoach/internal/validation"
)

// Students may join this long before the scheduled start.
const joinLeadTime = 15 * time.Minute

var (
	ErrClassNotFound    = errors.New("class not found")
	ErrNotYourClass     = errors.New("class belongs to another coach")
	ErrNotEnrolled      = errors.New("student not enrolled in class")
	ErrJoinWindowClosed = errors.New("class is not open for joining")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
)

// ScheduleService handles class scheduling, lifecycle and attendance
type ScheduleService struct {
	scheduleRepo *repository.ScheduleRepository
	userRepo     *repository.UserRepository
	emailService *EmailService
}

// NewScheduleService creates a new schedule service
func NewScheduleService(scheduleRepo *repository.ScheduleRepository, userRepo *repository.UserRepository, emailService *EmailService) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// ClassInput carries the coach-editable fields of a class
type ClassInput struct {
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	Timezone        string
	MeetingURL      string
	MeetingProvider string
	StudentIDs      []int64
}

// Create schedules a new class and enrolls the given students. Enrolled
// students with an email address are notified.
func (s *ScheduleService) Create(coach *models.User, input ClassInput) (*models.ClassSchedule, error) {
	if err := s.validateInput(coach, &input); err != nil {
		return nil, err
	}

	class := &models.ClassSchedule{
		Title:           input.Title,
		Description:     input.Description,
		CoachID:         coach.ID,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Timezone:        input.Timezone,
		MeetingURL:      input.MeetingURL,
		MeetingProvider: input.MeetingProvider,
		Status:          models.ClassNotStarted,
	}

	created, err := s.scheduleRepo.Create(class, input.StudentIDs)
	if err != nil {
		return nil, err
	}

	s.notifyStudents(created)
	return created, nil
}

// Get returns a class with enrollment and attendance. Coaches see their
// own classes; students see classes they are enrolled in.
func (s *ScheduleService) Get(user *models.User, id int64) (*models.ClassWithStudents, error) {
	class, err := s.scheduleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	if user.IsCoach() {
		if class.CoachID != user.ID {
			return nil, ErrNotYourClass
		}
	} else {
		enrolled, err := s.scheduleRepo.IsEnrolled(id, user.ID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrNotEnrolled
		}
	}

	students, err := s.scheduleRepo.ListStudents(id)
	if err != nil {
		return nil, err
	}
	attendees, err := s.scheduleRepo.ListAttendance(id)
	if err != nil {
		return nil, err
	}

	class.Status = class.EffectiveStatus(time.Now())
	return &models.ClassWithStudents{
		ClassSchedule: *class,
		Students:      students,
		Attendees:     attendees,
	}, nil
}

// List returns the classes visible to a user: their own for coaches,
// enrolled ones for students. Statuses reflect the current time.
func (s *ScheduleService) List(user *models.User) ([]models.ClassSchedule, error) {
	var classes []models.ClassSchedule
	var err error
	if user.IsCoach() {
		classes, err = s.scheduleRepo.ListByCoach(user.ID)
	} else {
		classes, err = s.scheduleRepo.ListByStudent(user.ID)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range classes {
		classes[i].Status = classes[i].EffectiveStatus(now)
	}
	return classes, nil
}

// Update edits a class. A nil StudentIDs slice leaves enrollment alone.
func (s *ScheduleService) Update(coach *models.User, id int64, input ClassInput) (*models.ClassSchedule, error) {
	class, err := s.ownedClass(coach, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateInput(coach, &input); err != nil {
		return nil, err
	}

	class.Title = input.Title
	class.Description = input.Description
	class.StartTime = input.StartTime
	class.EndTime = input.EndTime
	class.Timezone = input.Timezone
	class.MeetingURL = input.MeetingURL
	class.MeetingProvider = input.MeetingProvider

	if err := s.scheduleRepo.Update(class, input.StudentIDs); err != nil {
		return nil, err
	}
	return s.scheduleRepo.GetByID(id)
}

// Delete cancels a class
func (s *ScheduleService) Delete(coach *models.User, id int64) error {
	if _, err := s.ownedClass(coach, id); err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return nil
		}
		return err
	}
	return s.scheduleRepo.Delete(id)
}

// Start marks a class as in progress. Starting an already started class
// is a no-op.
func (s *ScheduleService) Start(coach *models.User, id int64) (*models.ClassSchedule, error) {
	if _, err := s.ownedClass(coach, id); err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.MarkStarted(id, time.Now()); err != nil {
		return nil, err
	}
	return s.scheduleRepo.GetByID(id)
}

// End marks a class as completed. Completion never reverts.
func (s *ScheduleService) End(coach *models.User, id int64) (*models.ClassSchedule, error) {
	if _, err := s.ownedClass(coach, id); err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.MarkCompleted(id, time.Now()); err != nil {
		return nil, err
	}
	return s.scheduleRepo.GetByID(id)
}

// Join records a student's attendance and returns the meeting link.
// Joining is allowed from shortly before the scheduled start until the
// class ends.
func (s *ScheduleService) Join(student *models.User, id int64) (*models.ClassSchedule, error) {
	class, err := s.scheduleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	enrolled, err := s.scheduleRepo.IsEnrolled(id, student.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	now := time.Now()
	if !joinWindowOpen(class, now) {
		return nil, ErrJoinWindowClosed
	}

	if err := s.scheduleRepo.AddAttendance(id, student.ID); err != nil {
		return nil, err
	}

	class.Status = class.EffectiveStatus(now)
	return class, nil
}

// AutoCompleteElapsed marks classes whose scheduled window has passed as
// completed. Called periodically from the server's background loop.
func (s *ScheduleService) AutoCompleteElapsed() (int64, error) {
	return s.scheduleRepo.AutoCompleteElapsed(time.Now())
}

// joinWindowOpen reports whether a student may join: from joinLeadTime
// before the scheduled start until the class completes.
func joinWindowOpen(class *models.ClassSchedule, now time.Time) bool {
	if class.EffectiveStatus(now) == models.ClassCompleted {
		return false
	}
	return !now.Before(class.StartTime.Add(-joinLeadTime))
}

func (s *ScheduleService) ownedClass(coach *models.User, id int64) (*models.ClassSchedule, error) {
	class, err := s.scheduleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}
	if class.CoachID != coach.ID {
		return nil, ErrNotYourClass
	}
	return class, nil
}

func (s *ScheduleService) validateInput(coach *models.User, input *ClassInput) error {
	if input.Title == "" {
		return validation.ValidationError{Field: "title", Message: "title is required"}
	}
	if !input.EndTime.After(input.StartTime) {
		return ErrInvalidTimeRange
	}
	if err := validation.ValidateTimezone(input.Timezone); err != nil {
		return err
	}

	// Fall back to the coach's preferred meeting room when none is given
	if input.MeetingURL == "" {
		input.MeetingURL = coach.MeetingPrefs.RoomURL
		input.MeetingProvider = coach.MeetingPrefs.Provider
	}

	for _, studentID := range input.StudentIDs {
		student, err := s.userRepo.GetUserByID(studentID)
		if err != nil {
			return err
		}
		if student == nil || !student.IsStudent() || student.CoachID == nil || *student.CoachID != coach.ID {
			return fmt.Errorf("%w: student %d", ErrNotYourStudent, studentID)
		}
	}
	return nil
}

func (s *ScheduleService) notifyStudents(class *models.ClassSchedule) {
	if !s.emailService.IsEnabled() {
		return
	}
	students, err := s.scheduleRepo.ListStudents(class.ID)
	if err != nil {
		log.Printf("Warning: failed to list students for class %d notification: %v", class.ID, err)
		return
	}
	for _, student := range students {
		if student.Email == "" {
			continue
		}
		if err := s.emailService.SendClassScheduled(student.Email, student.Name, class.Title, class.StartTime, class.Timezone); err != nil {
			log.Printf("Warning: failed to notify %s about class %d: %v", student.Email, class.ID, err)
		}
	}
}
