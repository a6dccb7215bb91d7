package momo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind int

const (
	UnknownRemoteError ErrorKind = iota
	NotFound
	BadRequest
	RemoteInternalError
	TransportError
)

var (
	ErrNotFound       = errors.New("reference id not found")
	ErrBadRequest     = errors.New("request rejected as malformed")
	ErrRemoteInternal = errors.New("remote internal error")
	ErrTransport      = errors.New("transport failure")
	ErrUnknownRemote  = errors.New("unexpected remote response")
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case BadRequest:
		return "BadRequest"
	case RemoteInternalError:
		return "RemoteInternalError"
	case TransportError:
		return "TransportError"
	default:
		return "UnknownRemoteError"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case NotFound:
		return ErrNotFound
	case BadRequest:
		return ErrBadRequest
	case RemoteInternalError:
		return ErrRemoteInternal
	case TransportError:
		return ErrTransport
	default:
		return ErrUnknownRemote
	}
}

// Error is returned by every remote operation. StatusCode is zero for transport failures.
type Error struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrNotFound) works
// regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindForStatus maps a non-2xx HTTP status to an error kind: 404 is NotFound, exactly
// 400 is BadRequest and any 5xx is RemoteInternalError. Other 4xx statuses (401, 403,
// 409, ...) are UnknownRemoteError.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return NotFound
	case status == http.StatusBadRequest:
		return BadRequest
	case status >= 500 && status <= 599:
		return RemoteInternalError
	default:
		return UnknownRemoteError
	}
}

// KindOf returns the kind of a provisioning error, or UnknownRemoteError when err
// did not come from this package. Local validation failures (ErrInvalidConfig) are
// not part of the kind taxonomy and never reach the provider; check for them with
// errors.Is before calling KindOf.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnknownRemoteError
}

// IsRetryable reports whether the failure is transient. Nothing in this package retries;
// the caller owns that policy.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == RemoteInternalError || e.Kind == TransportError
}

type remoteErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newStatusError(op string, status int, body []byte) *Error {
	e := &Error{
		Op:         op,
		Kind:       KindForStatus(status),
		StatusCode: status,
	}

	var rb remoteErrorBody
	if err := json.Unmarshal(body, &rb); err == nil && (rb.Code != "" || rb.Message != "") {
		e.Code = rb.Code
		e.Message = rb.Message
	} else if text := strings.TrimSpace(string(body)); text != "" {
		e.Message = truncate(text, 256)
	}
	return e
}

func newTransportError(op string, err error) *Error {
	return &Error{Op: op, Kind: TransportError, Err: err}
}

func newDecodeError(op string, status int, err error) *Error {
	return &Error{Op: op, Kind: UnknownRemoteError, StatusCode: status, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
