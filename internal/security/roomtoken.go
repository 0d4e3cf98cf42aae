package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidRoomToken is returned when a room token fails validation
var ErrInvalidRoomToken = errors.New("invalid room token")

// RoomClaims are the claims carried by a classroom websocket token.
// The token is minted over an authenticated HTTP session and presented by
// the browser when opening the websocket, so the socket endpoint never
// touches cookies.
type RoomClaims struct {
	UserID  int64  `json:"uid"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	ClassID int64  `json:"cid"`
	jwt.RegisteredClaims
}

// RoomTokenIssuer mints and validates short-lived HS256 tokens granting
// access to a single classroom room.
type RoomTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewRoomTokenIssuer creates a room token issuer
func NewRoomTokenIssuer(secret string, ttl time.Duration) *RoomTokenIssuer {
	return &RoomTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token granting userID access to classID
func (i *RoomTokenIssuer) Issue(userID int64, name, role string, classID int64) (string, error) {
	now := time.Now()
	claims := RoomClaims{
		UserID:  userID,
		Name:    name,
		Role:    role,
		ClassID: classID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims if valid for classID
func (i *RoomTokenIssuer) Validate(tokenString string, classID int64) (*RoomClaims, error) {
	claims := &RoomClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidRoomToken
	}
	if claims.ClassID != classID {
		return nil, ErrInvalidRoomToken
	}
	return claims, nil
}
