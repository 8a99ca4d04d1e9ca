package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// InviteService issues and verifies signed table-invite tokens. A token
// binds a player to a match id so private tables can hand out joinable
// links without exposing the match listing.
type InviteService struct {
	secret string
	issuer string
	ttl    time.Duration
}

// NewInviteService constructs an InviteService. ttl <= 0 falls back to
// one hour.
func NewInviteService(secret, issuer string, ttl time.Duration) *InviteService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InviteService{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateToken signs an invite for the given player and match.
func (s *InviteService) GenerateToken(playerID, matchID string) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("invite service is not configured")
	}
	if playerID == "" {
		return "", fmt.Errorf("player id is required")
	}
	if matchID == "" {
		return "", fmt.Errorf("match id is required")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": playerID,
		"exp": time.Now().Add(s.ttl).Unix(),
		"mid": matchID,
		"jti": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Invite is the verified content of an invite token.
type Invite struct {
	PlayerID string
	MatchID  string
}

// VerifyToken parses and validates an invite token, returning its content.
func (s *InviteService) VerifyToken(raw string) (Invite, error) {
	if s == nil || s.secret == "" {
		return Invite{}, fmt.Errorf("invite service is not configured")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Invite{}, fmt.Errorf("invalid invite token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Invite{}, fmt.Errorf("invalid invite token")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return Invite{}, fmt.Errorf("invite token issuer mismatch")
	}

	playerID, _ := claims["sub"].(string)
	matchID, _ := claims["mid"].(string)
	if playerID == "" || matchID == "" {
		return Invite{}, fmt.Errorf("invite token claims incomplete")
	}
	return Invite{PlayerID: playerID, MatchID: matchID}, nil
}
