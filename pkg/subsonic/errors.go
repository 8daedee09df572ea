package subsonic

import (
	"fmt"
)

// Error is a request the server processed and rejected
// (subsonic-response.status != "ok").
type Error struct {
	Code    int    // Subsonic error code, 0 when the server omitted it
	Message string // Message from the server
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("subsonic: error %d: %s", e.Code, e.Message)
}

// Is lets errors.Is match on the error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// TransportError is a request that never produced a usable envelope:
// connection failures, timeouts, non-2xx statuses and undecodable bodies.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("subsonic: %s: http status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("subsonic: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Subsonic error codes.
const (
	ErrCodeGeneric           = 0
	ErrCodeMissingParameter  = 10
	ErrCodeClientTooOld      = 20
	ErrCodeServerTooOld      = 30
	ErrCodeWrongCredentials  = 40
	ErrCodeTokenNotSupported = 41
	ErrCodeNotAuthorized     = 50
	ErrCodeTrialExpired      = 60
	ErrCodeNotFound          = 70
)

// ErrNotFound matches any *Error with code 70 via errors.Is.
var ErrNotFound = &Error{Code: ErrCodeNotFound, Message: "data not found"}
