package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sungwon/ion-notify/internal/metrics"
)

type contextKey string

const actorIDKey contextKey = "actor_id"

// ActorIDFromContext returns the authenticated acting user ID, or 0.
func ActorIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(actorIDKey).(int64); ok {
		return id
	}
	return 0
}

// WithActorID stores the acting user ID in ctx.
func WithActorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, actorIDKey, id)
}

// JWTAuth returns middleware that requires a valid Bearer token and stores
// the token's user ID in the request context.
func JWTAuth(svc *JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				unauthorized(w, "invalid authorization format, expected Bearer <token>")
				return
			}

			claims, err := svc.ValidateToken(parts[1])
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				unauthorized(w, "token subject is not a user id")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActorID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	metrics.APIAuthFailuresTotal.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="ion-notify"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
