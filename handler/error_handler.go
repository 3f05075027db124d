package handler

import (
	"errors"
	"fmt"
	"go-property-api/common"
	"go-property-api/logger"
	"go-property-api/service"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// ErrorHandlingMiddleware sends the *common.AppError a handler returns and turns panics into 500s.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.WithFields(logrus.Fields{
					"panic": fmt.Sprint(rec),
					"path":  r.URL.Path,
					"stack": string(debug.Stack()),
				}).Error("Recovered from handler panic")
				common.NewAppError(http.StatusInternalServerError, "Internal server error", nil).Send(w)
			}
		}()

		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// serviceError maps service errors to HTTP status codes. Unknown errors become a 500 carrying fallback.
func serviceError(err error, fallback string) *common.AppError {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return common.NewAppError(http.StatusBadRequest, vErr.Message, err).WithErrors(vErr.Fields...)
	case errors.Is(err, service.ErrUserExists):
		return common.NewAppError(http.StatusBadRequest, "User already exists", err)
	case errors.Is(err, service.ErrMissingToken):
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", err)
	case errors.Is(err, service.ErrInvalidToken):
		return common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", err)
	case errors.Is(err, service.ErrIncorrectPassword):
		return common.NewAppError(http.StatusUnauthorized, "Incorrect Password. Try again!", err)
	case errors.Is(err, service.ErrSessionRevoked):
		return common.NewAppError(http.StatusUnauthorized, "Refresh token is expired or used", err)
	case errors.Is(err, service.ErrUserGone):
		return common.NewAppError(http.StatusUnauthorized, "Invalid access token", err)
	case errors.Is(err, service.ErrNotOwner):
		return common.NewAppError(http.StatusForbidden, "You are not authorized to modify this property", err)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User does not exist", err)
	case errors.Is(err, service.ErrPropertyNotFound):
		return common.NewAppError(http.StatusNotFound, "Property not found", err)
	case errors.Is(err, service.ErrImageNotFound):
		return common.NewAppError(http.StatusNotFound, "Image not found on this property", err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}
