package common

import (
	"encoding/json"
	"go-property-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AppError is the error envelope every failed request is answered with.
type AppError struct {
	Code    int      `json:"statusCode"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Success bool     `json:"success"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Errors:  []string{},
		Err:     err,
	}
}

// WithErrors attaches field level details to the envelope.
func (e *AppError) WithErrors(errs ...string) *AppError {
	e.Errors = append(e.Errors, errs...)
	return e
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		fields := logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}
		if e.Code >= http.StatusInternalServerError {
			logger.Log.WithFields(fields).Error(e.Message)
		} else {
			logger.Log.WithFields(fields).Warn(e.Message)
		}
	}

	if e.Errors == nil {
		e.Errors = []string{}
	}
	e.Success = false

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
