package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/viken-labs/ressurstorg/internal/api/auth"
)

// Context keys for storing company identity.
type contextKey string

const (
	companyIDKey contextKey = "company_id"
	usernameKey  contextKey = "username"
	claimsKey    contextKey = "claims"
)

// jsonUnauthorized writes an unauthorized error response.
func jsonUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": "invalid or expired token",
		},
	})
}

// bearerToken extracts the access token from the Authorization header,
// falling back to the access_token query parameter. EventSource clients
// cannot set headers, so the SSE endpoint relies on the query form.
func bearerToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

// JWTAuth returns middleware that validates JWT tokens and stores the
// acting company in the request context.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				jsonUnauthorized(w)
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				log.Printf("JWT auth failed for %s: %v", r.RemoteAddr, err)
				jsonUnauthorized(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, companyIDKey, claims.CompanyID)
			ctx = context.WithValue(ctx, usernameKey, claims.Username)
			ctx = context.WithValue(ctx, claimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCompanyID returns the acting company's id from context.
func GetCompanyID(ctx context.Context) string {
	if v := ctx.Value(companyIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUsername returns the username from context.
func GetUsername(ctx context.Context) string {
	if v := ctx.Value(usernameKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetClaims returns the JWT claims from context.
func GetClaims(ctx context.Context) *auth.Claims {
	if v := ctx.Value(claimsKey); v != nil {
		if c, ok := v.(*auth.Claims); ok {
			return c
		}
	}
	return nil
}
