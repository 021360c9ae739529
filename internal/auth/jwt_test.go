package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dauvest/internal/core"
)

const testSecret = "test-secret-0123456789"

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := NewTokens(testSecret, "dauvest")
	uid := uuid.NewString()

	tok, err := tokens.Issue(uid, "ana@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != uid || id.Email != "ana@example.com" {
		t.Errorf("identity = %+v", id)
	}
}

func TestTokens_VerifyRejects(t *testing.T) {
	tokens := NewTokens(testSecret, "dauvest")
	uid := uuid.NewString()

	expired := NewTokens(testSecret, "dauvest")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredTok, _ := expired.Issue(uid, "", time.Hour)

	otherSecret, _ := NewTokens("another-secret-0123456789", "dauvest").Issue(uid, "", time.Hour)
	otherIssuer, _ := NewTokens(testSecret, "someone-else").Issue(uid, "", time.Hour)

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "dauvest",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	tests := map[string]string{
		"expired":      expiredTok,
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"bad subject":  badSubject,
		"garbage":      "abc.def.ghi",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Verify(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}

	if _, err := tokens.Issue("not-a-uuid", "", time.Hour); err == nil {
		t.Error("Issue should reject a non-uuid user id")
	}
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens(testSecret, "dauvest")
	uid := uuid.NewString()
	tok, _ := tokens.Issue(uid, "", time.Hour)

	var seen string
	var seenErr error
	h := tokens.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenErr = UserIDFromContext(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
		wantErr    error
	}{
		{name: "valid token", header: "Bearer " + tok, wantStatus: http.StatusOK, wantUser: uid},
		{name: "anonymous", header: "", wantStatus: http.StatusOK, wantErr: core.ErrNotAuthenticated},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, seenErr = "", nil
			req := httptest.NewRequest(http.MethodGet, "/api/community/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code != http.StatusOK {
				return
			}
			if seen != tt.wantUser || !errors.Is(seenErr, tt.wantErr) {
				t.Errorf("user = %q err = %v, want %q %v", seen, seenErr, tt.wantUser, tt.wantErr)
			}
		})
	}
}
