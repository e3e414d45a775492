package auth

import (
	"context"
	"net/http"
	"strings"

	"taskhub-backend/internal/analytics"
	"taskhub-backend/internal/response"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

type Middleware struct {
	secret []byte
}

func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

// Handler rejects requests without a valid bearer token and stores the user
// id in the request context.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(w, http.StatusUnauthorized, "missing token")
			return
		}

		tokenString := strings.TrimPrefix(h, "Bearer ")
		userID, err := ParseToken(m.secret, tokenString)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = analytics.WithUserID(ctx, userID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return m.Handler(next).ServeHTTP
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	uid, ok := v.(int)
	return uid, ok
}
