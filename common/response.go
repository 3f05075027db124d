package common

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the success envelope.
type APIResponse struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Success    bool        `json:"success"`
}

func NewAPIResponse(code int, message string, data interface{}) *APIResponse {
	if data == nil {
		data = struct{}{}
	}
	return &APIResponse{
		StatusCode: code,
		Message:    message,
		Data:       data,
		Success:    code < http.StatusBadRequest,
	}
}

func (res *APIResponse) Send(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(res.StatusCode)
	json.NewEncoder(w).Encode(res)
}

// SendJSON writes data inside the success envelope.
func SendJSON(w http.ResponseWriter, code int, message string, data interface{}) {
	NewAPIResponse(code, message, data).Send(w)
}
