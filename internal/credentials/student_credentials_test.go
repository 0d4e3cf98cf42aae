package credentials

import (
	"strings"
	"testing"

	"chesscoach/internal/validation"
)

func TestGenerateStudentUsername(t *testing.T) {
	for i := 0; i < 50; i++ {
		username, err := GenerateStudentUsername()
		if err != nil {
			t.Fatalf("GenerateStudentUsername() error = %v", err)
		}
		if !strings.Contains(username, "-") {
			t.Errorf("username %q missing separator", username)
		}
		if err := validation.ValidateUsername(username); err != nil {
			t.Errorf("generated username %q fails validation: %v", username, err)
		}
	}
}

func TestGenerateStudentPassword(t *testing.T) {
	passwords := make(map[string]bool)

	for i := 0; i < 100; i++ {
		password, err := GenerateStudentPassword()
		if err != nil {
			t.Fatalf("GenerateStudentPassword() error = %v", err)
		}
		if len(password) != 10 {
			t.Errorf("password length = %d, want 10", len(password))
		}
		if err := validation.ValidatePassword(password); err != nil {
			t.Errorf("generated password fails validation: %v", err)
		}
		if passwords[password] {
			t.Errorf("duplicate password generated: %s", password)
		}
		passwords[password] = true
	}
}
