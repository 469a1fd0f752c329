package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError indicates the request never produced a server response.
// One-shot calls are not retried; only the live channel reconnects.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is a non-2xx response carrying a server message,
// surfaced verbatim to the user
type ValidationError struct {
	Op      string
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: server returned status %d", e.Op, e.Status)
}

// AuthError is a 401 response. The session collaborator purges
// credentials; the call is never retried.
type AuthError struct {
	Op string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: unauthorized", e.Op)
}

// serverMessage extracts the error message from a JSON error body
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func isUnauthorized(status int) bool {
	return status == http.StatusUnauthorized
}
