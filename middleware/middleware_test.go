package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kinship/apperrors"
	"kinship/auth"
	"kinship/utils"
)

func newTestIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:         "access-secret",
		RefreshSecret:        "refresh-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: time.Hour,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func newGuardedRouter(issuer *auth.TokenIssuer, kind auth.Kind) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", AuthMiddleware(issuer, kind), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	issuer := newTestIssuer(t)
	payload := auth.Payload{UserID: 42, Email: "u@example.com"}

	access, err := issuer.Issue(payload, auth.KindAccess)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, err := issuer.Issue(payload, auth.KindRefresh)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	expired, err := issuer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(payload, auth.KindAccess)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	tests := []struct {
		name     string
		kind     auth.Kind
		header   string
		status   int
		wantCode apperrors.Code
	}{
		{"access ok", auth.KindAccess, "Bearer " + access, http.StatusOK, ""},
		{"refresh ok", auth.KindRefresh, "Bearer " + refresh, http.StatusOK, ""},
		{"missing header", auth.KindAccess, "", http.StatusUnauthorized, apperrors.CodeTokenMalformed},
		{"wrong scheme", auth.KindAccess, "Basic " + access, http.StatusUnauthorized, apperrors.CodeTokenMalformed},
		{"empty token", auth.KindAccess, "Bearer ", http.StatusUnauthorized, apperrors.CodeTokenMalformed},
		{"refresh as access", auth.KindAccess, "Bearer " + refresh, http.StatusUnauthorized, apperrors.CodeTokenSignatureInvalid},
		{"access as refresh", auth.KindRefresh, "Bearer " + access, http.StatusUnauthorized, apperrors.CodeTokenSignatureInvalid},
		{"expired", auth.KindAccess, "Bearer " + expired, http.StatusUnauthorized, apperrors.CodeTokenExpired},
		{"garbage", auth.KindAccess, "Bearer abc.def.ghi", http.StatusUnauthorized, apperrors.CodeTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newGuardedRouter(issuer, tt.kind)
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusOK {
				var body map[string]int64
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["user_id"] != 42 {
					t.Fatalf("user_id = %d", body["user_id"])
				}
				return
			}

			var payload utils.Payload
			if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Success || payload.Code != string(tt.wantCode) {
				t.Fatalf("payload = %+v, want code %s", payload, tt.wantCode)
			}
			if got := w.Header().Get("WWW-Authenticate"); got != `Bearer error="invalid_token"` {
				t.Fatalf("WWW-Authenticate = %q", got)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
