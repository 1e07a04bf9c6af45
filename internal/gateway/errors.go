package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is wrapped by adapters when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrorKind classifies gateway failures.
type ErrorKind int

const (
	// KindNetwork: the request never produced a response.
	KindNetwork ErrorKind = iota
	// KindStatus: a non-2xx response.
	KindStatus
	// KindDecode: a 2xx response whose body could not be read.
	KindDecode
	// KindRejected: the service answered with success=false.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindRejected:
		return "rejected"
	}
	return "unknown"
}

// Error is returned by every adapter. Callers show Message() to the user and
// never retry on their own.
type Error struct {
	Op         string // e.g. "transaction.getAll"
	Kind       ErrorKind
	StatusCode int
	Detail     string // server-provided message, if any
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case KindRejected:
		return fmt.Sprintf("%s: rejected: %s", e.Op, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the single human-readable line shown for this failure.
func (e *Error) Message() string {
	switch e.Kind {
	case KindNetwork:
		return "Cannot connect to the server"
	case KindStatus:
		if e.StatusCode == http.StatusNotFound {
			return "Record not found"
		}
		return fmt.Sprintf("Server error: %d", e.StatusCode)
	case KindDecode:
		return "Unexpected response from the server"
	case KindRejected:
		if e.Detail != "" {
			return e.Detail
		}
		return "Operation failed"
	}
	return "Operation failed"
}

// Message extracts a user-facing message from any error returned by a
// gateway call.
func Message(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message()
	}
	if err == nil {
		return ""
	}
	return "Operation failed"
}

// NotFound builds the error adapters return for an unknown id.
func NotFound(op string) *Error {
	return &Error{Op: op, Kind: KindStatus, StatusCode: http.StatusNotFound, Err: ErrNotFound}
}

// Rejected converts an unsuccessful ActionResult into an error.
func Rejected(op string, res ActionResult) *Error {
	return &Error{Op: op, Kind: KindRejected, Detail: res.Message}
}
