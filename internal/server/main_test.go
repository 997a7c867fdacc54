package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"quill/internal/config"
	"quill/internal/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		MongoURI:       "mongodb://localhost:27017",
		MongoDB:        "quill_test",
		JWTSecret:      "test-secret",
		AllowedOrigins: "*",
		Env:            "test",
	}
}

// setupTestServer builds an app over the in-memory database. Routes only;
// the middleware stack registers global metrics collectors and is exercised
// separately.
func setupTestServer(t *testing.T) (*fiber.App, *Server, *database.Database) {
	t.Helper()
	db := database.NewMemoryDatabase()
	srv := NewServerWithDeps(testConfig(), db, nil)
	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv, db
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

var signupSeq int

// signupUser registers a user through the API and returns the token and the
// created user's id.
func signupUser(t *testing.T, app *fiber.App, username string) (token, userID string) {
	t.Helper()
	signupSeq++

	resp := doRequest(t, app, http.MethodPost, "/api/auth/signup", fiber.Map{
		"firstName": "Test",
		"lastName":  "User",
		"email":     fmt.Sprintf("%s%d@example.com", username, signupSeq),
		"username":  username,
		"age":       30,
		"password":  "password123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	require.NotEmpty(t, body.User.ID)
	return body.Token, body.User.ID
}
