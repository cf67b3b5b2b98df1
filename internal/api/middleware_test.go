package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/domain"
)

func newTestAuthenticator() *TokenAuthenticator {
	return NewTokenAuthenticator("test-secret", time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuthenticator()
	user := &domain.User{ID: uuid.New(), IsStaff: true}

	token, err := auth.IssueToken(user)
	if err != nil {
		t.Fatalf("expected token issuance to succeed, got %v", err)
	}

	var gotID uuid.UUID
	var gotStaff bool
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		gotStaff = IsStaff(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != user.ID {
		t.Fatalf("expected context user id %s, got %s", user.ID, gotID)
	}
	if !gotStaff {
		t.Fatal("expected staff claim to survive the round trip")
	}
}

func TestMiddleware_RejectsBadTokens(t *testing.T) {
	auth := newTestAuthenticator()
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}))

	for _, header := range []string{
		"",
		"Bearer not-a-token",
		"Basic dXNlcjpwYXNz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for header %q, got %d", header, rec.Code)
		}
	}
}

func TestMiddleware_RejectsForeignSignature(t *testing.T) {
	other := NewTokenAuthenticator("different-secret", time.Hour)
	token, err := other.IssueToken(&domain.User{ID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}

	auth := newTestAuthenticator()
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a foreign signature")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireStaff(t *testing.T) {
	auth := newTestAuthenticator()
	guarded := auth.Middleware(RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	customerToken, err := auth.IssueToken(&domain.User{ID: uuid.New(), IsStaff: false})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/loans", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-staff caller, got %d", rec.Code)
	}

	staffToken, err := auth.IssueToken(&domain.User{ID: uuid.New(), IsStaff: true})
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/admin/loans", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff caller, got %d", rec.Code)
	}
}
