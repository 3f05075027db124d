package handler

import (
	"context"
	"go-property-api/common"
	"go-property-api/model"
	"go-property-api/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserKey      contextKey = "user"
	RequestIDKey contextKey = "requestID"
)

// bearerToken returns the access token from the accessToken cookie or the Authorization header.
func bearerToken(r *http.Request) string {
	if token := cookieValue(r, AccessTokenCookie); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	headerParts := strings.SplitN(authHeader, " ", 2)
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(headerParts[1])
}

// AuthMiddleware resolves the caller's access token and stores the user in the request context.
func AuthMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				serviceError(err, "Could not authenticate request").Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func currentUser(r *http.Request) (*model.User, *common.AppError) {
	user, ok := r.Context().Value(UserKey).(*model.User)
	if !ok || user == nil {
		return nil, common.NewAppError(http.StatusUnauthorized, "Unauthorized Access", nil)
	}
	return user, nil
}
