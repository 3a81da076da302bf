// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"

	"kinship/apperrors"
	"kinship/models"
)

// Kind selects the secret and lifetime a token is signed with.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// TokenConfig contains configuration for token generation
type TokenConfig struct {
	AccessSecret         string
	RefreshSecret        string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// DefaultTokenConfig holds the lifetimes used when none are configured.
var DefaultTokenConfig = TokenConfig{
	AccessTokenDuration:  7 * 24 * time.Hour,
	RefreshTokenDuration: 7 * 24 * time.Hour,
}

// Payload is the identity carried by both token kinds.
type Payload struct {
	UserID int64
	Email  string
}

// Claims is the signed body of a token.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IssuedAtTime returns the iat claim or the zero time.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns the exp claim or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenIssuer signs and verifies access and refresh tokens. Each kind has
// its own HMAC secret, so a token of one kind never verifies as the other.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer validates cfg and returns an issuer.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTokenDuration <= 0 {
		cfg.AccessTokenDuration = DefaultTokenConfig.AccessTokenDuration
	}
	if cfg.RefreshTokenDuration <= 0 {
		cfg.RefreshTokenDuration = DefaultTokenConfig.RefreshTokenDuration
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	clone := *i
	clone.now = now
	return &clone
}

func (i *TokenIssuer) keyFor(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return []byte(i.cfg.AccessSecret), i.cfg.AccessTokenDuration, nil
	case KindRefresh:
		return []byte(i.cfg.RefreshSecret), i.cfg.RefreshTokenDuration, nil
	default:
		return nil, 0, fmt.Errorf("unknown token kind %q", kind)
	}
}

// Issue signs a token of the given kind. The result depends only on the
// payload, the kind's secret and the clock.
func (i *TokenIssuer) Issue(payload Payload, kind Kind) (string, error) {
	secret, ttl, err := i.keyFor(kind)
	if err != nil {
		return "", err
	}
	now := i.now()
	claims := Claims{
		UserID: payload.UserID,
		Email:  payload.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(payload.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// IssuePair signs an access and a refresh token for the same payload
// concurrently. Either failure fails the pair, and a done ctx fails it
// before anything is signed.
func (i *TokenIssuer) IssuePair(ctx context.Context, payload Payload) (models.TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return models.TokenPair{}, err
	}
	var pair models.TokenPair
	var g errgroup.Group
	g.Go(func() error {
		token, err := i.Issue(payload, KindAccess)
		pair.AccessToken = token
		return err
	})
	g.Go(func() error {
		token, err := i.Issue(payload, KindRefresh)
		pair.RefreshToken = token
		return err
	})
	if err := g.Wait(); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// Verify parses a token of the given kind. Failures are apperrors with one
// of the token codes; Verify never panics on bad input.
func (i *TokenIssuer) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret, _, err := i.keyFor(kind)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTokenMalformed, "invalid token", err)
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	if claims.UserID <= 0 {
		return nil, apperrors.New(apperrors.CodeTokenMalformed, "token payload is invalid")
	}
	return &claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeTokenExpired, "token has expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(apperrors.CodeTokenSignatureInvalid, "token signature is invalid", err)
	default:
		return apperrors.Wrap(apperrors.CodeTokenMalformed, "token is malformed", err)
	}
}
