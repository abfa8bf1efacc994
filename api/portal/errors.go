package portal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/geonet-ops/portal-admin-services/models"
)

// ConnectionError reports a transport-level failure: DNS, TLS, a refused
// connection or a timeout. These are never retried automatically.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError reports invalid credentials or a token Portal keeps rejecting
// after a refresh.
type AuthError struct {
	Message string
	Cause   *models.PortalError
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Cause)
	}
	return "authentication failed: " + e.Message
}

func (e *AuthError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// NotFoundError reports that the requested user or group does not exist.
type NotFoundError struct {
	Resource string
	ID       string
	Cause    *models.PortalError
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// ValidationError reports that Portal rejected a payload (duplicate
// username, invalid email, ...) or returned a body the client could not
// decode into the expected shape.
type ValidationError struct {
	Message string
	Cause   *models.PortalError
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Message }

func (e *ValidationError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// RateLimitError reports Portal-side throttling, either an HTTP 429 or an
// envelope error with code 429. The client does not retry these.
type RateLimitError struct {
	Cause *models.PortalError
}

func (e *RateLimitError) Error() string { return "portal rate limit exceeded" }

func (e *RateLimitError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// ServerError reports a well-formed HTTP 4xx/5xx whose body did not carry a
// Portal error envelope.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("portal returned status %d: %s", e.Status, e.Body)
}

// IsInvalidToken reports whether err is Portal's invalid-token envelope
// error, the one condition that warrants a single refresh-and-retry.
func IsInvalidToken(err error) bool {
	var pe *models.PortalError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code == codeInvalidToken || pe.Code == codeTokenRequired
}

// envelopeError returns the bare business error produced by the request
// core, or nil if err was already classified (or is transport-level).
func envelopeError(err error) *models.PortalError {
	pe, ok := err.(*models.PortalError)
	if !ok {
		return nil
	}
	return pe
}

// notFound converts a business error from a lookup or delete into a
// NotFoundError. Portal reports missing entities with code 400.
func notFound(err error, resource, id string) error {
	pe := envelopeError(err)
	if pe == nil {
		return err
	}
	if pe.Code == http.StatusBadRequest || strings.Contains(strings.ToLower(pe.Message), "not found") {
		return &NotFoundError{Resource: resource, ID: id, Cause: pe}
	}
	return err
}

// invalid converts a business error from a create or update into a
// ValidationError, leaving transport and auth errors untouched.
func invalid(err error) error {
	pe := envelopeError(err)
	if pe == nil {
		return err
	}
	return &ValidationError{Message: pe.Message, Cause: pe}
}

// rejected classifies a business error from an update on an existing
// entity: a missing entity becomes NotFoundError, anything else a
// ValidationError.
func rejected(err error, resource, id string) error {
	pe := envelopeError(err)
	if pe == nil {
		return err
	}
	if strings.Contains(strings.ToLower(pe.Message), "not found") {
		return &NotFoundError{Resource: resource, ID: id, Cause: pe}
	}
	return &ValidationError{Message: pe.Message, Cause: pe}
}
