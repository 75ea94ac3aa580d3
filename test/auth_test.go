package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/middleware"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/user"
)

const testPassword = "sup3r-s3cret-pw"

// registerUser creates a fresh account and returns the auto-login response.
func registerUser(ctx context.Context, t *testing.T, username, email string) user.LoginResponse {
	registerReqJson, err := json.Marshal(user.RegisterRequest{
		Username: username,
		Email:    email,
		Password: testPassword,
		FullName: "Test User",
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(
		ctx, "POST",
		fmt.Sprintf("%s/api/register", serverEndpoint),
		bytes.NewBuffer(registerReqJson),
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, respBytes)

	var loginResp user.LoginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp
}

func doLogin(ctx context.Context, t *testing.T, email string) user.LoginResponse {
	loginReqJson, err := json.Marshal(user.LoginRequest{
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(
		ctx, "POST",
		fmt.Sprintf("%s/api/login", serverEndpoint),
		bytes.NewBuffer(loginReqJson),
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var loginResp user.LoginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp
}

// doAuthedRequest fires a request with the session token set and
// decodes the JSON response body into target (when target is non-nil).
func doAuthedRequest(
	ctx context.Context,
	t *testing.T,
	token, method, path string,
	body any,
	target any,
) int {
	var bodyReader io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewBuffer(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthTokenHeader, token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if target != nil && resp.StatusCode < 300 {
		require.NoError(t, json.Unmarshal(respBytes, target), "body: %s", respBytes)
	}

	return resp.StatusCode
}
