package security

import (
	"testing"
	"time"

	"chesscoach/internal/models"
)

func TestRoomTokenRoundTrip(t *testing.T) {
	issuer := NewRoomTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "Magnus", models.RoleCoach, 7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Validate(token, 7)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != models.RoleCoach {
		t.Errorf("Role = %q, want coach", claims.Role)
	}
	if claims.ClassID != 7 {
		t.Errorf("ClassID = %d, want 7", claims.ClassID)
	}
}

func TestRoomTokenWrongClass(t *testing.T) {
	issuer := NewRoomTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "Magnus", models.RoleStudent, 7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Validate(token, 8); err == nil {
		t.Error("Validate() should reject a token for a different class")
	}
}

func TestRoomTokenExpired(t *testing.T) {
	issuer := NewRoomTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(42, "Magnus", models.RoleStudent, 7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Validate(token, 7); err == nil {
		t.Error("Validate() should reject an expired token")
	}
}

func TestRoomTokenWrongSecret(t *testing.T) {
	issuer := NewRoomTokenIssuer("test-secret", time.Hour)
	other := NewRoomTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(42, "Magnus", models.RoleStudent, 7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Validate(token, 7); err == nil {
		t.Error("Validate() should reject a token signed with a different secret")
	}
}
