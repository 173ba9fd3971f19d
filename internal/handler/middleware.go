package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/khelsaga/venue-booking/internal/model"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated user id attached by Auth, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Logger is a structured access log middleware.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("%s %s %d %dB %s", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}

// CORS is a permissive CORS middleware suitable for a browser frontend.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Auth verifies the HS256 bearer token issued by the identity provider and
// attaches the token subject as the request's user id. Requests without a
// valid token never reach the booking endpoints.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, prefix) {
				writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Error: "please login to make a booking"})
				return
			}

			token, err := jwt.ParseWithClaims(
				strings.TrimPrefix(header, prefix),
				&jwt.RegisteredClaims{},
				func(t *jwt.Token) (any, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
					}
					return []byte(secret), nil
				},
			)
			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Error: "invalid or expired token"})
				return
			}
			claims, ok := token.Claims.(*jwt.RegisteredClaims)
			if !ok || claims.Subject == "" {
				writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Error: "invalid or expired token"})
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
