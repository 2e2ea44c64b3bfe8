package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lostbeltno7/GameGuardian/internal/dependencies/random"
)

// failureJitterMs is the random spread added to the failure delay so the
// response time does not leak which check failed
const failureJitterMs = 50

// Errors
var (
	ErrInvalidAPIKey   = errors.New("missing or invalid API key")
	ErrInvalidAdminKey = errors.New("missing or invalid admin key")
)

// Config holds authentication configuration
type Config struct {
	// APIKey is the shared key game clients present on /api requests
	APIKey string
	// AdminKeyHash is the bcrypt hash of the management API key
	AdminKeyHash string
	// FailureDelay is applied before returning any auth failure to slow
	// down brute-force attempts
	FailureDelay time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		FailureDelay: 150 * time.Millisecond,
	}
}

// Service validates API credentials
type Service struct {
	cfg    Config
	random random.Random
	sleep  func(time.Duration)
}

// New creates a new auth service
func New(cfg Config, rnd random.Random) *Service {
	if cfg.FailureDelay == 0 {
		cfg.FailureDelay = DefaultConfig().FailureDelay
	}
	return &Service{cfg: cfg, random: rnd, sleep: time.Sleep}
}

// NewWithSleeper creates an auth service with an injected sleep function
// so tests are not slowed by the failure delay
func NewWithSleeper(cfg Config, rnd random.Random, sleep func(time.Duration)) *Service {
	s := New(cfg, rnd)
	s.sleep = sleep
	return s
}

// delayFailure sleeps the configured delay plus a random jitter
func (s *Service) delayFailure() {
	jitter := time.Duration(s.random.Intn(failureJitterMs)) * time.Millisecond
	s.sleep(s.cfg.FailureDelay + jitter)
}

// HashAdminKey produces the bcrypt hash stored in configuration
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ValidateAPIKey checks the client API key in constant time.
// Failures are delayed before returning.
func (s *Service) ValidateAPIKey(key string) error {
	if s.cfg.APIKey == "" {
		// No key configured: open mode, used in tests and local development
		return nil
	}
	if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) == 1 {
		return nil
	}
	s.delayFailure()
	return ErrInvalidAPIKey
}

// ValidateAdminKey checks the management key against the stored bcrypt hash.
// Failures are delayed before returning.
func (s *Service) ValidateAdminKey(key string) error {
	if s.cfg.AdminKeyHash == "" {
		s.delayFailure()
		return ErrInvalidAdminKey
	}
	if key != "" && bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminKeyHash), []byte(key)) == nil {
		return nil
	}
	s.delayFailure()
	return ErrInvalidAdminKey
}
