/**
 * @description
 * This file implements JWT authentication for the API. Tokens are HMAC-signed
 * with the service secret; the subject claim carries the user id and a staff
 * claim gates the administrative endpoints.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: JWT parsing and signing.
 */

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/trustbank/banking-service/internal/domain"
)

type contextKey string

const (
	userIDContextKey contextKey = "user_id"
	staffContextKey  contextKey = "is_staff"
)

// sessionClaims is the JWT payload issued at login.
type sessionClaims struct {
	Staff bool `json:"staff"`
	jwt.RegisteredClaims
}

// TokenAuthenticator issues and validates the session tokens.
type TokenAuthenticator struct {
	secret []byte
	expiry time.Duration
}

func NewTokenAuthenticator(secret string, expiry time.Duration) *TokenAuthenticator {
	return &TokenAuthenticator{secret: []byte(secret), expiry: expiry}
}

// IssueToken signs a session token for a logged-in user.
func (a *TokenAuthenticator) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Staff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Middleware validates the Authorization header and stores the caller's
// identity on the request context.
func (a *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &sessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		ctx = context.WithValue(ctx, staffContextKey, claims.Staff)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff rejects non-staff callers with 403. It runs after Middleware.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsStaff(r.Context()) {
			http.Error(w, "staff access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID retrieves the authenticated user id from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok
}

// IsStaff reports whether the authenticated caller is a staff member.
func IsStaff(ctx context.Context) bool {
	staff, ok := ctx.Value(staffContextKey).(bool)
	return ok && staff
}
