package server

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/cache"
)

func TestListUsers(t *testing.T) {
	app, _, _ := setupTestServer(t)

	signupUser(t, app, "one")
	signupUser(t, app, "two")

	resp := doRequest(t, app, http.MethodGet, "/api/users/", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []struct {
		Username string `json:"username"`
	}
	decodeBody(t, resp, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "one", users[0].Username)
	assert.Equal(t, "two", users[1].Username)
}

func TestGetUser(t *testing.T) {
	app, _, _ := setupTestServer(t)

	_, id := signupUser(t, app, "target")

	resp := doRequest(t, app, http.MethodGet, "/api/users/"+id, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	decodeBody(t, resp, &user)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "target", user.Username)

	resp = doRequest(t, app, http.MethodGet, "/api/users/junk", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/users/64b64c0000000000deadbeef", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetUser_CacheAside(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	app, _, _ := setupTestServer(t)
	_, id := signupUser(t, app, "cached")

	resp := doRequest(t, app, http.MethodGet, "/api/users/"+id, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// the read populated the cache
	assert.True(t, mr.Exists(cache.UserKey(id)))

	// second read is served from the cache
	resp = doRequest(t, app, http.MethodGet, "/api/users/"+id, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user struct {
		Username string `json:"username"`
	}
	decodeBody(t, resp, &user)
	assert.Equal(t, "cached", user.Username)
}

func TestDeleteUser(t *testing.T) {
	app, _, _ := setupTestServer(t)

	token, id := signupUser(t, app, "victim")

	// the victim's content should disappear with them
	resp := doRequest(t, app, http.MethodPost, "/api/posts/", map[string]string{"content": "bye"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/api/users/"+id, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var deleted struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	decodeBody(t, resp, &deleted)
	assert.Equal(t, id, deleted.ID)
	assert.True(t, deleted.Deleted)

	resp = doRequest(t, app, http.MethodGet, "/api/users/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/posts/", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []any
	decodeBody(t, resp, &posts)
	assert.Empty(t, posts)
}

func TestDeleteUser_OnlyOwnAccount(t *testing.T) {
	app, _, _ := setupTestServer(t)

	token, _ := signupUser(t, app, "attacker")
	_, otherID := signupUser(t, app, "other")

	resp := doRequest(t, app, http.MethodDelete, "/api/users/"+otherID, nil, token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFollowAndUnfollow(t *testing.T) {
	app, _, _ := setupTestServer(t)

	token, followerID := signupUser(t, app, "follower")
	_, targetID := signupUser(t, app, "target")

	resp := doRequest(t, app, http.MethodPost, "/api/users/"+targetID+"/follow", nil, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var follower struct {
		Following []string `json:"following"`
	}
	resp = doRequest(t, app, http.MethodGet, "/api/users/"+followerID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &follower)
	assert.Contains(t, follower.Following, targetID)

	var target struct {
		Followers []string `json:"followers"`
	}
	resp = doRequest(t, app, http.MethodGet, "/api/users/"+targetID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &target)
	assert.Contains(t, target.Followers, followerID)

	resp = doRequest(t, app, http.MethodDelete, "/api/users/"+targetID+"/follow", nil, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/users/"+followerID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &follower)
	assert.Empty(t, follower.Following)
}

func TestFollowSelf(t *testing.T) {
	app, _, _ := setupTestServer(t)

	token, id := signupUser(t, app, "loner")

	resp := doRequest(t, app, http.MethodPost, "/api/users/"+id+"/follow", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
