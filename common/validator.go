package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// MaxJSONBody bounds JSON and urlencoded request bodies.
const MaxJSONBody = 16 << 10

var validate = newValidator()

var formDecoder = newFormDecoder()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.SetAliasTag("json")
	return d
}

// ValidateStruct runs the validator over payload and returns one message per failing field.
func ValidateStruct(payload interface{}) []string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
	}
	return msgs
}

// Decode fills payload from a JSON body, or from form values when the request
// is urlencoded or an already parsed multipart form.
func Decode(w http.ResponseWriter, r *http.Request, payload interface{}) *AppError {
	contentType := r.Header.Get("Content-Type")
	switch {
	case r.MultipartForm != nil:
		if err := formDecoder.Decode(payload, r.MultipartForm.Value); err != nil {
			return NewAppError(http.StatusBadRequest, "Invalid form data", err)
		}
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)
		if err := r.ParseForm(); err != nil {
			return NewAppError(http.StatusBadRequest, "Invalid form data", err)
		}
		if err := formDecoder.Decode(payload, r.PostForm); err != nil {
			return NewAppError(http.StatusBadRequest, "Invalid form data", err)
		}
	default:
		r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)
		if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return NewAppError(http.StatusRequestEntityTooLarge, "Request body too large", err)
			}
			return NewAppError(http.StatusBadRequest, "Invalid request body", err)
		}
	}
	return nil
}

func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) *AppError {
	if appErr := Decode(w, r, payload); appErr != nil {
		return appErr
	}
	if msgs := ValidateStruct(payload); len(msgs) > 0 {
		return NewAppError(http.StatusBadRequest, "Validation failed", nil).WithErrors(msgs...)
	}
	return nil
}
