package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Flash is a human-readable status message for the client to display.
// swagger:model Flash
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// Flash is present when the operation has a message worth showing to a person.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
	Flash *Flash    `json:"flash,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONSuccess writes statusCode and an APIResponse with the given data and no error.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Data: data})
}

// WriteJSONFlash is WriteJSONSuccess with a flash message of the given category.
func WriteJSONFlash(w http.ResponseWriter, statusCode int, data any, category, message string) {
	writeJSON(w, statusCode, APIResponse{Data: data, Flash: &Flash{Category: category, Message: message}})
}

// WriteJSONError writes statusCode and an APIResponse with data nil and the
// given error code and message. The message is repeated as an error flash.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, APIResponse{
		Error: &APIError{Code: code, Message: message},
		Flash: &Flash{Category: FlashError, Message: message},
	})
}
