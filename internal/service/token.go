package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stockpeek/edge-gateway/internal/util"
)

var (
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
)

// TokenService issues and verifies the stateless HMAC-signed access
// tokens. Nothing is stored server-side; validity is the signature
// plus the expiry claim.
type TokenService struct {
	jwtSecretKey []byte
	accessTTL    time.Duration
}

func NewTokenService(cfg *util.TokenConfig) *TokenService {
	return &TokenService{
		jwtSecretKey: cfg.JwtSecretKey,
		accessTTL:    cfg.AccessTTL,
	}
}

type gatewayClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken создает SHA512 signed access токен
func (ts *TokenService) IssueToken(username string, now time.Time) (string, time.Duration, error) {
	claims := &gatewayClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(ts.jwtSecretKey)
	if err != nil {
		return "", 0, fmt.Errorf("signed string: %w", err)
	}

	return signedToken, ts.accessTTL, nil
}

// VerifyToken recomputes the signature over header+payload, checks the
// expiry claim against now and returns the embedded username. Parse
// failures, signature mismatches and expiry all map to sentinel
// errors; nothing escapes as a panic.
func (ts *TokenService) VerifyToken(token string, now time.Time) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	parsedToken, err := jwt.ParseWithClaims(
		token,
		&gatewayClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
				return nil, ErrInvalidSigningMethod
			}
			return ts.jwtSecretKey, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if parsedToken == nil || !parsedToken.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(*gatewayClaims)
	if !ok || claims.Username == "" {
		return "", ErrTokenInvalid
	}

	return claims.Username, nil
}
