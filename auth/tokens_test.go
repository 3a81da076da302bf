package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kinship/apperrors"
)

func testIssuer(t *testing.T, now time.Time) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenConfig{
		AccessSecret:         "access-secret",
		RefreshSecret:        "refresh-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer.WithClock(func() time.Time { return now })
}

func TestNewTokenIssuerRequiresDistinctSecrets(t *testing.T) {
	tests := []struct {
		name string
		cfg  TokenConfig
	}{
		{name: "missing access", cfg: TokenConfig{RefreshSecret: "r"}},
		{name: "missing refresh", cfg: TokenConfig{AccessSecret: "a"}},
		{name: "same secret", cfg: TokenConfig{AccessSecret: "s", RefreshSecret: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenIssuer(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewTokenIssuerDefaultsDurations(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenConfig{AccessSecret: "a", RefreshSecret: "r"})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if issuer.cfg.AccessTokenDuration != 7*24*time.Hour || issuer.cfg.RefreshTokenDuration != 7*24*time.Hour {
		t.Fatalf("durations = %v/%v, want 7 days each", issuer.cfg.AccessTokenDuration, issuer.cfg.RefreshTokenDuration)
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := testIssuer(t, now)

	for _, kind := range []Kind{KindAccess, KindRefresh} {
		token, err := issuer.Issue(Payload{UserID: 42, Email: "jane@example.com"}, kind)
		if err != nil {
			t.Fatalf("issue %s: %v", kind, err)
		}
		claims, err := issuer.Verify(token, kind)
		if err != nil {
			t.Fatalf("verify %s: %v", kind, err)
		}
		if claims.UserID != 42 || claims.Email != "jane@example.com" {
			t.Fatalf("claims = %+v", claims)
		}
		if claims.Subject != "42" {
			t.Fatalf("subject = %q, want 42", claims.Subject)
		}
		if !claims.IssuedAtTime().Equal(now) {
			t.Fatalf("issued at = %v, want %v", claims.IssuedAtTime(), now)
		}
	}
}

func TestIssueUsesPerKindLifetime(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := testIssuer(t, now)

	access, _ := issuer.Issue(Payload{UserID: 1, Email: "a@example.com"}, KindAccess)
	refresh, _ := issuer.Issue(Payload{UserID: 1, Email: "a@example.com"}, KindRefresh)

	accessClaims, err := issuer.Verify(access, KindAccess)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	refreshClaims, err := issuer.Verify(refresh, KindRefresh)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if got := accessClaims.ExpiresAtTime().Sub(now); got != time.Hour {
		t.Fatalf("access ttl = %v, want 1h", got)
	}
	if got := refreshClaims.ExpiresAtTime().Sub(now); got != 24*time.Hour {
		t.Fatalf("refresh ttl = %v, want 24h", got)
	}
}

func TestIssueIsDeterministic(t *testing.T) {
	issuer := testIssuer(t, time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	first, _ := issuer.Issue(Payload{UserID: 7, Email: "x@example.com"}, KindAccess)
	second, _ := issuer.Issue(Payload{UserID: 7, Email: "x@example.com"}, KindAccess)
	if first != second {
		t.Fatal("expected identical tokens for identical payload, secret and clock")
	}
}

func TestVerifyFailures(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := testIssuer(t, now)
	access, _ := issuer.Issue(Payload{UserID: 9, Email: "n@example.com"}, KindAccess)
	refresh, _ := issuer.Issue(Payload{UserID: 9, Email: "n@example.com"}, KindRefresh)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		UserID: 9,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign hs384: %v", err)
	}
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 9}).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign without exp: %v", err)
	}
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign without user: %v", err)
	}

	parts := strings.Split(access, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
		kind  Kind
		want  apperrors.Code
	}{
		{name: "refresh token as access", token: refresh, kind: KindAccess, want: apperrors.CodeTokenSignatureInvalid},
		{name: "access token as refresh", token: access, kind: KindRefresh, want: apperrors.CodeTokenSignatureInvalid},
		{name: "tampered signature", token: tampered, kind: KindAccess, want: apperrors.CodeTokenSignatureInvalid},
		{name: "unexpected algorithm", token: hs384, kind: KindAccess, want: apperrors.CodeTokenSignatureInvalid},
		{name: "garbage", token: "not-a-token", kind: KindAccess, want: apperrors.CodeTokenMalformed},
		{name: "empty", token: "", kind: KindAccess, want: apperrors.CodeTokenMalformed},
		{name: "missing exp", token: noExp, kind: KindAccess, want: apperrors.CodeTokenMalformed},
		{name: "missing user", token: noUser, kind: KindAccess, want: apperrors.CodeTokenMalformed},
		{name: "unknown kind", token: access, kind: Kind("session"), want: apperrors.CodeTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token, tt.kind)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.CodeOf(err); got != tt.want {
				t.Fatalf("code = %s, want %s (%v)", got, tt.want, err)
			}
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	token, err := testIssuer(t, issuedAt).Issue(Payload{UserID: 3, Email: "e@example.com"}, KindAccess)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := testIssuer(t, issuedAt.Add(time.Hour+time.Second))
	_, err = later.Verify(token, KindAccess)
	if !errors.Is(err, apperrors.New(apperrors.CodeTokenExpired, "")) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestIssuePairSignsBothKinds(t *testing.T) {
	issuer := testIssuer(t, time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	pair, err := issuer.IssuePair(context.Background(), Payload{UserID: 5, Email: "p@example.com"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("pair = %+v", pair)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("expected distinct access and refresh tokens")
	}
	if _, err := issuer.Verify(pair.AccessToken, KindAccess); err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if _, err := issuer.Verify(pair.RefreshToken, KindRefresh); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
}

func TestIssuePairStopsOnDoneContext(t *testing.T) {
	issuer := testIssuer(t, time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pair, err := issuer.IssuePair(ctx, Payload{UserID: 5, Email: "p@example.com"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if pair.AccessToken != "" || pair.RefreshToken != "" {
		t.Fatalf("pair = %+v", pair)
	}
}
