package models

// User represents a Portal user as returned by the community/users resources.
// Timestamps are milliseconds since the Unix epoch, as Portal reports them.
type User struct {
	Username      string   `json:"username"`
	FullName      string   `json:"fullName"`
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	Access        string   `json:"access,omitempty"`
	Description   string   `json:"description,omitempty"`
	OrgID         string   `json:"orgId,omitempty"`
	IdpUsername   string   `json:"idpUsername,omitempty"`
	PreferredView string   `json:"preferredView,omitempty"`
	Culture       string   `json:"culture,omitempty"`
	Region        string   `json:"region,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Created       int64    `json:"created"`
	Modified      int64    `json:"modified"`
	StorageUsage  int64    `json:"storageUsage,omitempty"`
	StorageQuota  int64    `json:"storageQuota,omitempty"`
	Groups        []Group  `json:"groups,omitempty"`
}

// UserCreate carries the required and optional fields for creating a
// built-in Portal account.
type UserCreate struct {
	Username    string
	Password    string
	FullName    string
	Email       string
	Role        string
	Description string
	Provider    string
}

// UserPatch is a partial update of a user. Zero-valued fields are not sent,
// so the server keeps its current values for them.
type UserPatch struct {
	FullName      string
	Email         string
	Description   string
	Access        string
	PreferredView string
	Culture       string
	Region        string
	Tags          []string
}
