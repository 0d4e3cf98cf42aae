package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("knight-to-f3")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "knight-to-f3" {
		t.Fatal("hash should not equal the plaintext password")
	}

	if !CheckPassword("knight-to-f3", hash) {
		t.Error("CheckPassword() should accept the correct password")
	}
	if CheckPassword("knight-to-c3", hash) {
		t.Error("CheckPassword() should reject a wrong password")
	}
}

func TestCheckPasswordBadHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("CheckPassword() should reject a malformed hash")
	}
}
