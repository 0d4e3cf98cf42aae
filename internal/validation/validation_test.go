package validation

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "magnus", false},
		{"valid with digits", "coach2026", false},
		{"valid with hyphen", "anna-rudolf", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"uppercase rejected", "Magnus", true},
		{"spaces rejected", "two words", true},
		{"leading hyphen rejected", "-magnus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"valid", "coach@club.example", false},
		{"missing at", "coach.club.example", true},
		{"missing tld", "coach@club", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUCIMove(t *testing.T) {
	tests := []struct {
		name    string
		move    string
		wantErr bool
	}{
		{"simple move", "e2e4", false},
		{"promotion", "e7e8q", false},
		{"underpromotion", "a2a1n", false},
		{"empty", "", true},
		{"san rejected", "Nf3", true},
		{"bad square", "e2e9", true},
		{"bad promotion piece", "e7e8k", true},
		{"too long", "e2e4e5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUCIMove(tt.move)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUCIMove(%q) error = %v, wantErr %v", tt.move, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{"utc", "UTC", false},
		{"iana name", "Europe/Madrid", false},
		{"empty", "", true},
		{"garbage", "Mars/Olympus_Mons", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimezone(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
		})
	}
}
