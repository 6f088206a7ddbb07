// Package response provides the standard API envelope shared by every
// endpoint: {"success": bool, "errorCode": int, "errorMsg": string, "data": ...}.
package response

import (
	"encoding/json"
	"net/http"
)

// Error codes grouped by concern.
const (
	CodeSuccess = 0

	// Analyzer errors
	CodeAnalyzerTimeout         = 1001
	CodeAnalyzerError           = 1002
	CodeAnalyzerInvalidResponse = 1003

	// Cache / compute-once errors
	CodeCacheError  = 2001
	CodeLockTimeout = 2002

	// Validation errors
	CodeInvalidInput    = 3001
	CodeMissingField    = 3002
	CodeInvalidCacheKey = 3003

	// Service errors
	CodeSignalServiceError      = 4001
	CodeRiskManagerServiceError = 4002
	CodeTrackingServiceError    = 4003

	// System errors
	CodeInternalServerError = 5001
	CodeNotFound            = 5002
	CodeDatabaseError       = 5003
)

// Envelope is the uniform response body
type Envelope struct {
	Success   bool        `json:"success"`
	ErrorMsg  string      `json:"errorMsg"`
	ErrorCode int         `json:"errorCode"`
	Data      interface{} `json:"data"`
}

// Success writes a 200 success envelope
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, Envelope{
		Success:   true,
		ErrorCode: CodeSuccess,
		Data:      data,
	})
}

// Error writes an error envelope with the given HTTP status
func Error(w http.ResponseWriter, httpStatus, code int, msg string) {
	write(w, httpStatus, Envelope{
		Success:   false,
		ErrorCode: code,
		ErrorMsg:  msg,
		Data:      struct{}{},
	})
}

// BadRequest writes a 400 validation error envelope
func BadRequest(w http.ResponseWriter, code int, msg string) {
	Error(w, http.StatusBadRequest, code, msg)
}

// NotFound writes a 404 envelope
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, CodeNotFound, msg)
}

// InternalServerError writes a 500 envelope
func InternalServerError(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, CodeInternalServerError, msg)
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env) // Ignore encode error - already committed response
}
