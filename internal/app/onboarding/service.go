package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"callbreak/internal/ports"
)

const (
	defaultWelcomeChips = 5000
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// WelcomeChipsGranted reports whether this call granted the one-time stack.
	WelcomeChipsGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	bonuses  ports.WelcomeBonusPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/bonuses must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bonuses ports.WelcomeBonusPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		bonuses:  bonuses,
		rng:      rng,
	}
}

// OnboardNewUser initializes profile and chip stack for a newly created
// account. Profile updates are best-effort; failing to grant the welcome
// chips is an error.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateTableName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.bonuses.GrantWelcomeBonusOnce(ctx, userID, defaultWelcomeChips, map[string]interface{}{
		"reason": "welcome_chips",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant welcome chips: %w", err)
	}
	result.WelcomeChipsGranted = granted

	return result, nil
}

func (s *Service) generateTableName() string {
	adjectives := []string{"Lucky", "Bold", "Quiet", "Sharp", "Keen", "Gilded", "Stormy", "Merry", "Slick", "Grand"}
	nouns := []string{"Dealer", "Baron", "Raven", "Gambit", "Joker", "Knight", "Drake", "Viper", "Magpie", "Ace"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
