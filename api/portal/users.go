package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/geonet-ops/portal-admin-services/models"
)

// SearchUsers returns a lazy cursor over the users matching q. Use
// ScopeToOrg on the query first to stay within the organization.
func (c *Client) SearchUsers(q string, opts *SearchOptions) *Search[models.User] {
	return newSearch[models.User](c.ses, "community/users", q, opts)
}

// OrgUsers returns a cursor over every member of the organization,
// including storage quota and usage figures.
func (c *Client) OrgUsers(opts *SearchOptions) *Search[models.User] {
	return newSearch[models.User](c.ses, "portals/self/users", "", opts)
}

// GetUser returns the full record for username.
func (c *Client) GetUser(ctx context.Context, username string) (*models.User, error) {
	raw, err := c.ses.post(ctx, "community/users/"+url.PathEscape(username), url.Values{})
	if err != nil {
		return nil, notFound(err, "user", username)
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding user %q: %v", username, err)}
	}
	return &user, nil
}

// CreateUser creates a built-in account through the org admin endpoint and
// returns the record as Portal stored it. Duplicate usernames and invalid
// fields surface as ValidationError.
func (c *Client) CreateUser(ctx context.Context, spec models.UserCreate) (*models.User, error) {
	form := url.Values{}
	form.Set("username", spec.Username)
	form.Set("password", spec.Password)
	form.Set("fullname", spec.FullName)
	form.Set("email", spec.Email)
	if spec.Role != "" {
		form.Set("role", spec.Role)
	}
	if spec.Description != "" {
		form.Set("description", spec.Description)
	}
	provider := spec.Provider
	if provider == "" {
		provider = "arcgis"
	}
	form.Set("provider", provider)

	raw, err := c.ses.post(ctx, "portals/self/createUser", form)
	if err != nil {
		return nil, invalid(err)
	}
	if err := checkSuccess(raw, "createUser"); err != nil {
		return nil, err
	}
	return c.GetUser(ctx, spec.Username)
}

// Signup self-registers a built-in account on an on-premises Portal.
// ArcGIS Online does not support it.
func (c *Client) Signup(ctx context.Context, username, password, fullname, email string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("fullname", fullname)
	form.Set("email", email)

	raw, err := c.ses.post(ctx, "community/signUp", form)
	if err != nil {
		return invalid(err)
	}
	return checkSuccess(raw, "signUp")
}

// UpdateUser applies a partial update. Only the fields set in patch are
// sent, so everything else keeps its server-side value. The refreshed
// record is fetched and returned.
func (c *Client) UpdateUser(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	form := url.Values{}
	if patch.FullName != "" {
		form.Set("fullname", patch.FullName)
	}
	if patch.Email != "" {
		form.Set("email", patch.Email)
	}
	if patch.Description != "" {
		form.Set("description", patch.Description)
	}
	if patch.Access != "" {
		form.Set("access", patch.Access)
	}
	if patch.PreferredView != "" {
		form.Set("preferredView", patch.PreferredView)
	}
	if patch.Culture != "" {
		form.Set("culture", patch.Culture)
	}
	if patch.Region != "" {
		form.Set("region", patch.Region)
	}
	if len(patch.Tags) > 0 {
		form.Set("tags", strings.Join(patch.Tags, ","))
	}

	raw, err := c.ses.post(ctx, "community/users/"+url.PathEscape(username)+"/update", form)
	if err != nil {
		return nil, rejected(err, "user", username)
	}
	if err := checkSuccess(raw, "updateUser"); err != nil {
		return nil, err
	}
	return c.GetUser(ctx, username)
}

// UpdateUserRole changes a user's org role: org_user, org_publisher or
// org_admin.
func (c *Client) UpdateUserRole(ctx context.Context, username, role string) error {
	form := url.Values{}
	form.Set("user", username)
	form.Set("role", role)

	raw, err := c.ses.post(ctx, "portals/self/updateuserrole", form)
	if err != nil {
		return rejected(err, "user", username)
	}
	return checkSuccess(raw, "updateuserrole")
}

// ReassignUser moves all of a user's items and groups to target. Portal
// requires this before a user owning content can be deleted.
func (c *Client) ReassignUser(ctx context.Context, username, target string) error {
	form := url.Values{}
	form.Set("targetUsername", target)

	raw, err := c.ses.post(ctx, "community/users/"+url.PathEscape(username)+"/reassign", form)
	if err != nil {
		return rejected(err, "user", username)
	}
	return checkSuccess(raw, "reassign")
}

// DeleteUser removes the account. Deleting a user that does not exist
// returns NotFoundError; callers treating that as a no-op can ignore it.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	raw, err := c.ses.post(ctx, "community/users/"+url.PathEscape(username)+"/delete", url.Values{})
	if err != nil {
		return notFound(err, "user", username)
	}
	return checkSuccess(raw, "deleteUser")
}
