package models

// Group represents a Portal group as returned by the community/groups
// resources. Access is one of private, org or public.
type Group struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Owner            string   `json:"owner"`
	Description      string   `json:"description,omitempty"`
	Snippet          string   `json:"snippet,omitempty"`
	Access           string   `json:"access"`
	Phone            string   `json:"phone,omitempty"`
	SortField        string   `json:"sortField,omitempty"`
	SortOrder        string   `json:"sortOrder,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	IsInvitationOnly bool     `json:"isInvitationOnly"`
	IsViewOnly       bool     `json:"isViewOnly"`
	Created          int64    `json:"created"`
	Modified         int64    `json:"modified"`
}

// GroupCreate carries the fields for community/createGroup. Title and Tags
// are required by Portal.
type GroupCreate struct {
	Title            string
	Tags             []string
	Description      string
	Snippet          string
	Access           string
	SortField        string
	SortOrder        string
	IsInvitationOnly bool
	IsViewOnly       bool
}

// GroupPatch is a partial update of a group. Zero-valued fields are not sent.
type GroupPatch struct {
	Title       string
	Description string
	Snippet     string
	Access      string
	SortField   string
	SortOrder   string
	Tags        []string
}

// GroupMembership is the result of the groups/{id}/users resource: the
// owner, the admin usernames and the member usernames.
type GroupMembership struct {
	Owner  string   `json:"owner"`
	Admins []string `json:"admins"`
	Users  []string `json:"users"`
}

// AddUsersResult reports the outcome of a bulk add-members call. Portal only
// reports the failures, so Added is reconstructed from the request.
type AddUsersResult struct {
	Added    []string `json:"added"`
	NotAdded []string `json:"notAdded"`
}

// RemoveUsersResult reports the outcome of a bulk remove-members call.
type RemoveUsersResult struct {
	Removed    []string `json:"removed"`
	NotRemoved []string `json:"notRemoved"`
}
