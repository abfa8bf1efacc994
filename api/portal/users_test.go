package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geonet-ops/portal-admin-services/models"
)

func TestGetUser(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		assert.Equal(t, "/sharing/rest/community/users/bob", r.URL.Path)
		assert.Equal(t, "tok-1", token)
		fmt.Fprint(w, `{"username": "bob", "fullName": "Bob Builder", "email": "bob@example.com", "role": "org_user", "created": 1700000000000}`)
	}

	client := newTestClient(t, fp)
	user, err := client.GetUser(context.Background(), "bob")

	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "Bob Builder", user.FullName)
	assert.Equal(t, "org_user", user.Role)
	assert.Equal(t, int64(1700000000000), user.Created)
}

func TestGetUserNotFound(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		fmt.Fprint(w, `{"error": {"code": 400, "message": "User 'ghost' not found.", "details": []}}`)
	}

	client := newTestClient(t, fp)
	_, err := client.GetUser(context.Background(), "ghost")

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "user", nfErr.Resource)
	assert.Equal(t, "ghost", nfErr.ID)
}

func TestCreateUser(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		switch r.URL.Path {
		case "/sharing/rest/portals/self/createUser":
			assert.Equal(t, "carol", r.Form.Get("username"))
			assert.Equal(t, "hunter22", r.Form.Get("password"))
			assert.Equal(t, "Carol Danvers", r.Form.Get("fullname"))
			assert.Equal(t, "carol@example.com", r.Form.Get("email"))
			assert.Equal(t, "org_publisher", r.Form.Get("role"))
			assert.Equal(t, "arcgis", r.Form.Get("provider"))
			fmt.Fprint(w, `{"success": true}`)
		case "/sharing/rest/community/users/carol":
			fmt.Fprint(w, `{"username": "carol", "fullName": "Carol Danvers", "email": "carol@example.com", "role": "org_publisher"}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}

	client := newTestClient(t, fp)
	user, err := client.CreateUser(context.Background(), models.UserCreate{
		Username: "carol",
		Password: "hunter22",
		FullName: "Carol Danvers",
		Email:    "carol@example.com",
		Role:     "org_publisher",
	})

	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "org_publisher", user.Role)
}

func TestCreateUserDuplicateIsValidationError(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		fmt.Fprint(w, `{"error": {"code": 400, "message": "Unable to create user.", "details": ["A user with this username already exists."]}}`)
	}

	client := newTestClient(t, fp)
	_, err := client.CreateUser(context.Background(), models.UserCreate{Username: "bob"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, 400, valErr.Cause.Code)
}

func TestUpdateUserSendsOnlyPatchedFields(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		switch r.URL.Path {
		case "/sharing/rest/community/users/bob/update":
			assert.Equal(t, "bob@corp.example.com", r.Form.Get("email"))
			assert.False(t, r.Form.Has("fullname"))
			assert.False(t, r.Form.Has("description"))
			assert.False(t, r.Form.Has("access"))
			fmt.Fprint(w, `{"success": true}`)
		case "/sharing/rest/community/users/bob":
			fmt.Fprint(w, `{"username": "bob", "fullName": "Bob Builder", "email": "bob@corp.example.com"}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}

	client := newTestClient(t, fp)
	user, err := client.UpdateUser(context.Background(), "bob", models.UserPatch{Email: "bob@corp.example.com"})

	require.NoError(t, err)
	assert.Equal(t, "bob@corp.example.com", user.Email)
	assert.Equal(t, "Bob Builder", user.FullName)
}

func TestUpdateUserEmptyPatchReturnsUnchangedRecord(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		switch r.URL.Path {
		case "/sharing/rest/community/users/bob/update":
			// Nothing beyond the protocol fields should be sent.
			assert.Len(t, r.Form, 2) // f, token
			fmt.Fprint(w, `{"success": true}`)
		case "/sharing/rest/community/users/bob":
			fmt.Fprint(w, `{"username": "bob", "fullName": "Bob Builder", "email": "bob@example.com"}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}

	client := newTestClient(t, fp)
	ctx := context.Background()

	before, err := client.GetUser(ctx, "bob")
	require.NoError(t, err)

	after, err := client.UpdateUser(ctx, "bob", models.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateUserRole(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		assert.Equal(t, "/sharing/rest/portals/self/updateuserrole", r.URL.Path)
		assert.Equal(t, "bob", r.Form.Get("user"))
		assert.Equal(t, "org_publisher", r.Form.Get("role"))
		fmt.Fprint(w, `{"success": true}`)
	}

	client := newTestClient(t, fp)
	err := client.UpdateUserRole(context.Background(), "bob", "org_publisher")
	assert.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		assert.Equal(t, "/sharing/rest/community/users/bob/delete", r.URL.Path)
		fmt.Fprint(w, `{"success": true}`)
	}

	client := newTestClient(t, fp)
	assert.NoError(t, client.DeleteUser(context.Background(), "bob"))
}

func TestDeleteUserNotFound(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		fmt.Fprint(w, `{"error": {"code": 400, "message": "User 'ghost' not found.", "details": []}}`)
	}

	client := newTestClient(t, fp)
	err := client.DeleteUser(context.Background(), "ghost")

	var nfErr *NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestReassignUser(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		assert.Equal(t, "/sharing/rest/community/users/bob/reassign", r.URL.Path)
		assert.Equal(t, "carol", r.Form.Get("targetUsername"))
		fmt.Fprint(w, `{"success": true}`)
	}

	client := newTestClient(t, fp)
	assert.NoError(t, client.ReassignUser(context.Background(), "bob", "carol"))
}

// pagedUsers serves community/users pages out of a fixed dataset, honoring
// the start and num form parameters.
func pagedUsers(t *testing.T, usernames []string, requests *int) func(http.ResponseWriter, *http.Request, string) {
	return func(w http.ResponseWriter, r *http.Request, token string) {
		*requests++
		start, err := strconv.Atoi(r.Form.Get("start"))
		require.NoError(t, err)
		num, err := strconv.Atoi(r.Form.Get("num"))
		require.NoError(t, err)
		require.GreaterOrEqual(t, start, 1)
		require.GreaterOrEqual(t, num, 1)

		end := start - 1 + num
		if end > len(usernames) {
			end = len(usernames)
		}
		page := usernames[start-1 : end]

		nextStart := -1
		if end < len(usernames) {
			nextStart = end + 1
		}

		results := make([]map[string]any, 0, len(page))
		for _, name := range page {
			results = append(results, map[string]any{"username": name})
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"total":     len(usernames),
			"start":     start,
			"num":       len(page),
			"nextStart": nextStart,
			"results":   results,
		}))
	}
}

func TestSearchUsersPaginatesWithoutGapsOrDuplicates(t *testing.T) {
	usernames := []string{"u1", "u2", "u3", "u4", "u5"}
	var requests int
	fp := &fakePortal{}
	fp.handle = pagedUsers(t, usernames, &requests)

	client := newTestClient(t, fp)
	search := client.SearchUsers("u", &SearchOptions{PageSize: 2})

	users, err := search.All(context.Background())
	require.NoError(t, err)

	got := make([]string, 0, len(users))
	for _, u := range users {
		got = append(got, u.Username)
	}
	assert.Equal(t, usernames, got)
	assert.Equal(t, 5, search.Total())
	assert.Equal(t, 3, requests)
}

func TestSearchUsersHonorsMax(t *testing.T) {
	usernames := []string{"u1", "u2", "u3", "u4", "u5"}
	var requests int
	fp := &fakePortal{}
	fp.handle = pagedUsers(t, usernames, &requests)

	client := newTestClient(t, fp)
	users, err := client.SearchUsers("u", &SearchOptions{PageSize: 2, Max: 3}).All(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "u3", users[2].Username)
}

func TestSearchUsersResetReplaysFromStart(t *testing.T) {
	usernames := []string{"u1", "u2", "u3"}
	var requests int
	fp := &fakePortal{}
	fp.handle = pagedUsers(t, usernames, &requests)

	client := newTestClient(t, fp)
	search := client.SearchUsers("u", &SearchOptions{PageSize: 2})
	ctx := context.Background()

	first, err := search.All(ctx)
	require.NoError(t, err)

	search.Reset()
	second, err := search.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchUsersEmptyResult(t *testing.T) {
	var requests int
	fp := &fakePortal{}
	fp.handle = pagedUsers(t, nil, &requests)

	client := newTestClient(t, fp)
	users, err := client.SearchUsers("nomatch", nil).All(context.Background())

	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 1, requests)
}

func TestOrgUsersReadsUsersKey(t *testing.T) {
	fp := &fakePortal{}
	fp.handle = func(w http.ResponseWriter, r *http.Request, token string) {
		assert.Equal(t, "/sharing/rest/portals/self/users", r.URL.Path)
		fmt.Fprint(w, `{"total": 2, "start": 1, "num": 2, "nextStart": -1,
			"users": [{"username": "bob", "storageUsage": 1024, "storageQuota": 2097152},
			          {"username": "carol", "storageUsage": 0, "storageQuota": 2097152}]}`)
	}

	client := newTestClient(t, fp)
	users, err := client.OrgUsers(nil).All(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1024), users[0].StorageUsage)
	assert.Equal(t, int64(2097152), users[1].StorageQuota)
}
