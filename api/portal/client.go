package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/geonet-ops/portal-admin-services/models"
)

// Client exposes the typed user and group operations on top of a Session.
// Several clients may share one session; several sessions may target
// different Portal instances side by side.
type Client struct {
	ses *Session

	mu   sync.Mutex
	info *models.PortalInfo
}

// NewClient wraps an authenticated (or lazily authenticating) session.
func NewClient(ses *Session) *Client {
	return &Client{ses: ses}
}

// Session returns the underlying session.
func (c *Client) Session() *Session { return c.ses }

// Info returns the organization properties from portals/self, cached after
// the first call.
func (c *Client) Info(ctx context.Context) (*models.PortalInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info != nil {
		return c.info, nil
	}

	raw, err := c.ses.post(ctx, "portals/self", url.Values{})
	if err != nil {
		return nil, err
	}
	var info models.PortalInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding portal properties: %v", err)}
	}
	c.info = &info
	return c.info, nil
}

// Version returns the Portal software version reported by the organization
// resource.
func (c *Client) Version(ctx context.Context) (string, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.CurrentVersion, nil
}

// ScopeToOrg appends the organization id to a search query so results stay
// within the org, matching how operators usually search.
func (c *Client) ScopeToOrg(ctx context.Context, q string) (string, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return "", err
	}
	if info.ID == "" {
		return q, nil
	}
	if q == "" {
		return "accountid:" + info.ID, nil
	}
	return q + " accountid:" + info.ID, nil
}

// checkSuccess validates the {"success": true} acknowledgement Portal
// returns from mutation endpoints.
func checkSuccess(raw json.RawMessage, action string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return &ValidationError{Message: fmt.Sprintf("decoding %s response: %v", action, err)}
	}
	if !resp.Success {
		return fmt.Errorf("portal did not report success for %s", action)
	}
	return nil
}

// LoggedInUser returns the account the session's token belongs to.
func (c *Client) LoggedInUser(ctx context.Context) (*models.User, error) {
	raw, err := c.ses.post(ctx, "community/self", url.Values{})
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding logged-in user: %v", err)}
	}
	return &user, nil
}
