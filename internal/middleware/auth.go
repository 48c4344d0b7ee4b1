package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the user from the request context
func UserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// Auth creates authentication middleware that validates API tokens.
// Tokens are issued out of band (see the configure CLI) and matched
// against the users table.
func Auth(userRepo database.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			token := parts[1]
			if token == "" {
				respondError(w, http.StatusUnauthorized, "Empty token")
				return
			}

			ctx := r.Context()
			user, err := userRepo.GetByToken(ctx, token)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					respondError(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				// Actual database error (connection failure, timeout, etc.)
				log.Printf("Database error while fetching user: %v", err)
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			ctx = context.WithValue(ctx, userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
