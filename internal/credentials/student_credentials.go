package credentials

import (
	"crypto/rand"
	"math/big"
)

// Word lists for generating memorable student usernames
var adjectives = []string{
	"swift", "bold", "bright", "calm", "clever", "daring", "eager", "fierce",
	"gallant", "keen", "lucky", "mighty", "noble", "quick", "quiet", "rapid",
	"sharp", "silent", "solid", "steady", "stormy", "sturdy", "subtle", "wild",
	"golden", "silver", "crimson", "cosmic", "royal", "humble", "patient", "fearless",
}

var nouns = []string{
	"pawn", "knight", "bishop", "rook", "queen", "king", "gambit", "castle",
	"fork", "pin", "skewer", "tempo", "zugzwang", "endgame", "opening", "attack",
	"defender", "tactician", "strategist", "grandmaster", "prodigy", "challenger",
	"falcon", "tiger", "wolf", "eagle", "dragon", "phoenix", "panther", "lion",
}

const passwordChars = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateStudentUsername generates a random username in the format
// "adjective-noun", e.g. "swift-gambit". Collisions are handled by the
// caller appending a numeric suffix.
func GenerateStudentUsername() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	return adjective + "-" + noun, nil
}

// GenerateStudentPassword generates a random 10-character initial password.
// Ambiguous characters (l, 1, O, 0) are excluded.
func GenerateStudentPassword() (string, error) {
	password := make([]byte, 10)
	for i := range password {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", err
		}
		password[i] = passwordChars[num.Int64()]
	}
	return string(password), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
