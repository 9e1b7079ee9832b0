package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error codes shared by handlers and middleware.
const (
	CodeValidation      = "ERR_VALIDATION"
	CodeUnauthorized    = "ERR_UNAUTHORIZED"
	CodeForbidden       = "ERR_FORBIDDEN"
	CodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
	CodeInternal        = "ERR_INTERNAL_SERVER"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR [response.JSON] failed to encode response: %v", err)
	}
}

func Error(w http.ResponseWriter, status int, code, message string, details interface{}) {
	JSON(w, status, ErrorBody{Code: code, Message: message, Details: details})
}
