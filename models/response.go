package models

import "fmt"

// PortalError is the business error Portal embeds in an HTTP 200 response
// body. Code 498 means the token is invalid or expired.
type PortalError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *PortalError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("portal error %d: %s (%s)", e.Code, e.Message, e.Details[0])
	}
	return fmt.Sprintf("portal error %d: %s", e.Code, e.Message)
}

// ErrorEnvelope is the wrapper Portal uses for business errors. Error is nil
// on successful responses.
type ErrorEnvelope struct {
	Error *PortalError `json:"error"`
}

// TokenResponse is the successful result of the generateToken endpoint.
// Expires is milliseconds since the Unix epoch.
type TokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
	SSL     bool   `json:"ssl"`
}

// PortalInfo holds the organization properties from portals/self. The org id
// is used to scope searches to the organization.
type PortalInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URLKey         string `json:"urlKey,omitempty"`
	Culture        string `json:"culture,omitempty"`
	PortalName     string `json:"portalName,omitempty"`
	CurrentVersion string `json:"currentVersion,omitempty"`
	IsPortal       bool   `json:"isPortal"`
	AllSSL         bool   `json:"allSSL"`
}
