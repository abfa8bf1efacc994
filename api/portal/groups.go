package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/geonet-ops/portal-admin-services/models"
)

// SearchGroups returns a lazy cursor over the groups matching q.
func (c *Client) SearchGroups(q string, opts *SearchOptions) *Search[models.Group] {
	return newSearch[models.Group](c.ses, "community/groups", q, opts)
}

// GetGroup returns the group with the given id.
func (c *Client) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID), url.Values{})
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}
	var group models.Group
	if err := json.Unmarshal(raw, &group); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding group %q: %v", groupID, err)}
	}
	return &group, nil
}

// CreateGroup creates a group and returns it as Portal stored it.
func (c *Client) CreateGroup(ctx context.Context, spec models.GroupCreate) (*models.Group, error) {
	form := url.Values{}
	form.Set("title", spec.Title)
	form.Set("tags", strings.Join(spec.Tags, ","))
	if spec.Description != "" {
		form.Set("description", spec.Description)
	}
	if spec.Snippet != "" {
		form.Set("snippet", spec.Snippet)
	}
	access := spec.Access
	if access == "" {
		access = "private"
	}
	form.Set("access", access)
	if spec.SortField != "" {
		form.Set("sortField", spec.SortField)
	}
	if spec.SortOrder != "" {
		form.Set("sortOrder", spec.SortOrder)
	}
	form.Set("isInvitationOnly", strconv.FormatBool(spec.IsInvitationOnly))
	form.Set("isViewOnly", strconv.FormatBool(spec.IsViewOnly))

	raw, err := c.ses.post(ctx, "community/createGroup", form)
	if err != nil {
		return nil, invalid(err)
	}

	var resp struct {
		Success bool         `json:"success"`
		Group   models.Group `json:"group"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding createGroup response: %v", err)}
	}
	if !resp.Success {
		return nil, errors.New("portal did not report success for createGroup")
	}
	return &resp.Group, nil
}

// UpdateGroup applies a partial update to a group and returns the refreshed
// record.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, patch models.GroupPatch) (*models.Group, error) {
	form := url.Values{}
	if patch.Title != "" {
		form.Set("title", patch.Title)
	}
	if patch.Description != "" {
		form.Set("description", patch.Description)
	}
	if patch.Snippet != "" {
		form.Set("snippet", patch.Snippet)
	}
	if patch.Access != "" {
		form.Set("access", patch.Access)
	}
	if patch.SortField != "" {
		form.Set("sortField", patch.SortField)
	}
	if patch.SortOrder != "" {
		form.Set("sortOrder", patch.SortOrder)
	}
	if len(patch.Tags) > 0 {
		form.Set("tags", strings.Join(patch.Tags, ","))
	}

	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID)+"/update", form)
	if err != nil {
		return nil, rejected(err, "group", groupID)
	}
	if err := checkSuccess(raw, "updateGroup"); err != nil {
		return nil, err
	}
	return c.GetGroup(ctx, groupID)
}

// DeleteGroup removes the group.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID)+"/delete", url.Values{})
	if err != nil {
		return notFound(err, "group", groupID)
	}
	return checkSuccess(raw, "deleteGroup")
}

// AddGroupUsers adds the users to a group in one call. Portal reports the
// per-username failures; both lists are surfaced rather than collapsing a
// partial success into an error.
func (c *Client) AddGroupUsers(ctx context.Context, groupID string, usernames []string) (*models.AddUsersResult, error) {
	form := url.Values{}
	form.Set("users", strings.Join(usernames, ","))

	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID)+"/addUsers", form)
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}

	var resp struct {
		NotAdded []string `json:"notAdded"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding addUsers response: %v", err)}
	}
	if resp.NotAdded == nil {
		resp.NotAdded = []string{}
	}
	return &models.AddUsersResult{
		Added:    exclude(usernames, resp.NotAdded),
		NotAdded: resp.NotAdded,
	}, nil
}

// RemoveGroupUsers removes the users from a group in one call, with the
// same partial-result contract as AddGroupUsers.
func (c *Client) RemoveGroupUsers(ctx context.Context, groupID string, usernames []string) (*models.RemoveUsersResult, error) {
	form := url.Values{}
	form.Set("users", strings.Join(usernames, ","))

	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID)+"/removeUsers", form)
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}

	var resp struct {
		NotRemoved []string `json:"notRemoved"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding removeUsers response: %v", err)}
	}
	if resp.NotRemoved == nil {
		resp.NotRemoved = []string{}
	}
	return &models.RemoveUsersResult{
		Removed:    exclude(usernames, resp.NotRemoved),
		NotRemoved: resp.NotRemoved,
	}, nil
}

// GroupMembers returns the owner, admins and members of a group.
func (c *Client) GroupMembers(ctx context.Context, groupID string) (*models.GroupMembership, error) {
	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID)+"/users", url.Values{})
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}
	var membership models.GroupMembership
	if err := json.Unmarshal(raw, &membership); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding group %q members: %v", groupID, err)}
	}
	return &membership, nil
}

// ReassignGroup transfers group ownership to target.
func (c *Client) ReassignGroup(ctx context.Context, groupID, target string) error {
	form := url.Values{}
	form.Set("targetUsername", target)

	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID)+"/reassign", form)
	if err != nil {
		return rejected(err, "group", groupID)
	}
	return checkSuccess(raw, "reassign")
}

// LeaveGroup removes the logged-in user from the group.
func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	raw, err := c.ses.post(ctx, "community/groups/"+url.PathEscape(groupID)+"/leave", url.Values{})
	if err != nil {
		return notFound(err, "group", groupID)
	}
	return checkSuccess(raw, "leave")
}

// exclude returns the requested usernames minus the ones the server
// reported as failed, preserving request order.
func exclude(requested, failed []string) []string {
	skip := make(map[string]bool, len(failed))
	for _, name := range failed {
		skip[name] = true
	}
	kept := make([]string, 0, len(requested))
	for _, name := range requested {
		if !skip[name] {
			kept = append(kept, name)
		}
	}
	return kept
}
