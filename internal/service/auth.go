package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stockpeek/edge-gateway/internal/util"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService implements the login protocol for the single configured
// credential pair: rate-limit check, credential verification, token
// issuance. All failures are terminal for the request, never fatal for
// the process.
type AuthService struct {
	username     string
	salt         string
	passwordHash string
	tokens       *TokenService
	limiter      *LoginRateLimiter
	log          *zap.SugaredLogger
	now          func() time.Time
}

func NewAuthService(cfg *util.AuthConfig, tokens *TokenService, limiter *LoginRateLimiter, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		username:     cfg.Username,
		salt:         cfg.Salt,
		passwordHash: cfg.PasswordHash,
		tokens:       tokens,
		limiter:      limiter,
		log:          log,
		now:          time.Now,
	}
}

type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
}

// Login verifies the credential pair for the given caller identity.
// Credential mismatches count against the identity's rate-limit
// window; a successful login clears it.
func (s *AuthService) Login(ctx context.Context, identity, username, password string) (*LoginResult, error) {
	if wait, ok := s.limiter.Allow(ctx, identity); !ok {
		s.log.Warnw("login rate limited", "identity", identity, "retry_after", wait)
		return nil, &RateLimitError{RetryAfter: wait}
	}

	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized != s.username || !VerifyPassword(password, s.salt, s.passwordHash) {
		s.limiter.RecordFailure(ctx, identity)
		s.log.Infow("login rejected", "identity", identity)
		return nil, ErrInvalidCredentials
	}

	s.limiter.Reset(ctx, identity)

	token, ttl, err := s.tokens.IssueToken(s.username, s.now())
	if err != nil {
		return nil, err
	}

	s.log.Infow("login succeeded", "identity", identity)
	return &LoginResult{Token: token, ExpiresIn: ttl}, nil
}

// Verify validates a bearer token and returns the embedded username.
func (s *AuthService) Verify(token string) (string, error) {
	return s.tokens.VerifyToken(token, s.now())
}
