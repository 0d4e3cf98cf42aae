package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"chesscoach/internal/credentials"
	"chesscoach/internal/models"
	"chesscoach/internal/repository"
	"chesscoach/internal/security"
	"chesscoach/internal/validation"
)

var ErrNotYourStudent = errors.New("student does not belong to this coach")

// StudentService handles coach-driven student account management
type StudentService struct {
	userRepo     *repository.UserRepository
	emailService *EmailService
}

// NewStudentService creates a new student service
func NewStudentService(userRepo *repository.UserRepository, emailService *EmailService) *StudentService {
	return &StudentService{
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// StudentCredentials are returned once, at account creation or password
// regeneration. The plaintext password is never stored.
type StudentCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateStudent creates a student account for a coach with generated
// credentials. If the student has an email and the email service is
// enabled, an invitation is sent.
func (s *StudentService) CreateStudent(coach *models.User, name, email string) (*models.User, *StudentCredentials, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	username, err := s.freeUsername()
	if err != nil {
		return nil, nil, err
	}

	password, err := credentials.GenerateStudentPassword()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate password: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student, err := s.userRepo.CreateStudent(coach.ID, username, passwordHash, name, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create student: %w", err)
	}

	creds := &StudentCredentials{Username: username, Password: password}

	if email != "" && s.emailService.IsEnabled() {
		if err := s.emailService.SendStudentInvitation(email, name, coach.Name, creds.Username, creds.Password); err != nil {
			// Account exists either way; the coach still sees the credentials
			log.Printf("Warning: failed to send invitation to %s: %v", email, err)
		}
	}

	return student, creds, nil
}

// GetStudent retrieves one of a coach's students
func (s *StudentService) GetStudent(coach *models.User, studentID int64) (*models.User, error) {
	student, err := s.userRepo.GetUserByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || !student.IsStudent() {
		return nil, nil
	}
	if student.CoachID == nil || *student.CoachID != coach.ID {
		return nil, ErrNotYourStudent
	}
	return student, nil
}

// ListStudents retrieves all of a coach's students
func (s *StudentService) ListStudents(coach *models.User) ([]models.User, error) {
	return s.userRepo.ListStudentsByCoach(coach.ID)
}

// UpdateStudent updates a student's name, email and active flag
func (s *StudentService) UpdateStudent(coach *models.User, studentID int64, name, email string, active bool) (*models.User, error) {
	student, err := s.GetStudent(coach, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, nil
	}

	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfile(studentID, name, email, student.MeetingPrefs); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetActive(studentID, active); err != nil {
		return nil, err
	}

	return s.userRepo.GetUserByID(studentID)
}

// RegeneratePassword issues a fresh password for a student
func (s *StudentService) RegeneratePassword(coach *models.User, studentID int64) (*StudentCredentials, error) {
	student, err := s.GetStudent(coach, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, nil
	}

	password, err := credentials.GenerateStudentPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(studentID, passwordHash); err != nil {
		return nil, err
	}

	return &StudentCredentials{Username: student.Username, Password: password}, nil
}

// freeUsername generates a username that is not yet taken
func (s *StudentService) freeUsername() (string, error) {
	for i := 0; i < 10; i++ {
		username, err := credentials.GenerateStudentUsername()
		if err != nil {
			return "", fmt.Errorf("failed to generate username: %w", err)
		}
		existing, err := s.userRepo.GetUserByUsername(username)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return username, nil
		}
	}

	// Word list nearly exhausted; fall back to a numeric suffix
	username, err := credentials.GenerateStudentUsername()
	if err != nil {
		return "", err
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", strings.TrimSpace(username), i)
		existing, err := s.userRepo.GetUserByUsername(candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}
}
