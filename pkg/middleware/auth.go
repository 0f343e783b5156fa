package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"org-sync-backend/pkg/config"
	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/utils"
)

// ContextKey namespaces values this package stores on the request
// context.
type ContextKey string

const PersonContextKey ContextKey = "person"

// AuthMiddleware requires a valid access token and puts the person it
// names on the request context.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteUnauthorizedResponse(w, "Missing authorization header")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
				return
			}

			claims, err := parseClaims(tokenString, cfg.JWTSecret)
			if err != nil {
				utils.WriteUnauthorizedResponse(w, "Invalid token: "+err.Error())
				return
			}
			if claims.Type != "access" {
				utils.WriteUnauthorizedResponse(w, "Invalid token type")
				return
			}
			if time.Now().Unix() > claims.Exp {
				utils.WriteUnauthorizedResponse(w, "Token expired")
				return
			}

			person := &models.Person{ID: claims.PersonID, Email: claims.Email}
			ctx := context.WithValue(r.Context(), PersonContextKey, person)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the person when a valid token is
// present and stays silent otherwise.
func OptionalAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || tokenString == authHeader {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parseClaims(tokenString, cfg.JWTSecret)
			if err == nil && claims.Type == "access" && time.Now().Unix() <= claims.Exp {
				person := &models.Person{ID: claims.PersonID, Email: claims.Email}
				r = r.WithContext(context.WithValue(r.Context(), PersonContextKey, person))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseClaims(tokenString, secret string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// GetPersonFromContext returns the authenticated person, if any.
func GetPersonFromContext(ctx context.Context) (*models.Person, bool) {
	person, ok := ctx.Value(PersonContextKey).(*models.Person)
	return person, ok
}

// RequirePerson is the fail-fast variant for handlers that need an
// identity.
func RequirePerson(ctx context.Context) (*models.Person, error) {
	person, ok := GetPersonFromContext(ctx)
	if !ok || person == nil {
		return nil, fmt.Errorf("person not authenticated")
	}
	return person, nil
}
