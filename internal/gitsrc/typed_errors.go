package gitsrc

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Base typed git errors enabling structured classification without string parsing upstream.
type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string { return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found %s: %v", e.Op, e.URL, e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, e.URL, e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error { return e.Err }

// classifyRemoteError wraps remote-operation failures into typed variants when possible.
func classifyRemoteError(op, url string, err error) error {
	if err == nil {
		return nil
	}
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "auth"):
		return &AuthError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "unsupported protocol"):
		return &UnsupportedProtocolError{Op: op, URL: url, Err: err}
	default:
		return err
	}
}

// isPermanentError reports whether retrying the operation cannot help.
func isPermanentError(err error) bool {
	var authErr *AuthError
	var notFoundErr *NotFoundError
	var protoErr *UnsupportedProtocolError
	if errors.As(err, &authErr) || errors.As(err, &notFoundErr) || errors.As(err, &protoErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return false // network errors are transient
	}
	return false
}
