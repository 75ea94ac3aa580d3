package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/auth"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/middleware"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/pkg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sessionsMock struct {
	tokenCounter int
	loggedIn     map[string]string
}

func newSessionsMock() *sessionsMock {
	return &sessionsMock{
		loggedIn: make(map[string]string),
	}
}

func (s *sessionsMock) Login(_ context.Context, userID string, _ time.Time) (string, error) {
	s.tokenCounter++
	token := fmt.Sprintf("test-token-%d", s.tokenCounter)
	s.loggedIn[token] = userID
	return token, nil
}

func (s *sessionsMock) Logout(_ context.Context, token string) (bool, error) {
	if _, ok := s.loggedIn[token]; !ok {
		return false, nil
	}
	delete(s.loggedIn, token)
	return true, nil
}

func registerTestUser(t *testing.T, handler *Handler, email string) LoginResponse {
	t.Helper()

	body := fmt.Sprintf(`{"username":"mila","email":%q,"password":"super-secret","fullName":"Mila K"}`, email)
	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.HandleRegister(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHandler_Register(t *testing.T) {
	handler := NewHandler(newRepoMock(), newSessionsMock())

	resp := registerTestUser(t, handler, "mila@fitbot.test")
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "mila", resp.User.Username)
	assert.Equal(t, "mila@fitbot.test", resp.User.Email)
	assert.Empty(t, resp.User.PasswordHash)
}

func TestHandler_Register_invalidInput(t *testing.T) {
	handler := NewHandler(newRepoMock(), newSessionsMock())

	for name, body := range map[string]string{
		"missing email":  `{"username":"mila","password":"super-secret"}`,
		"short password": `{"username":"mila","email":"mila@fitbot.test","password":"short"}`,
		"broken json":    `{"username":`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/register", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			handler.HandleRegister(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	handler := NewHandler(newRepoMock(), newSessionsMock())
	registerTestUser(t, handler, "mila@fitbot.test")

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"email":"Mila@fitbot.test","password":"super-secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "mila@fitbot.test", resp.User.Email)
}

func TestHandler_Login_wrongCredentials(t *testing.T) {
	handler := NewHandler(newRepoMock(), newSessionsMock())
	registerTestUser(t, handler, "mila@fitbot.test")

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"email":"mila@fitbot.test","password":"wrong-pass"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		handler.HandleLogin(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"email":"nobody@fitbot.test","password":"super-secret"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		handler.HandleLogin(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_Logout(t *testing.T) {
	sessions := newSessionsMock()
	handler := NewHandler(newRepoMock(), sessions)
	resp := registerTestUser(t, handler, "mila@fitbot.test")

	req := httptest.NewRequest("GET", "/api/logout", nil)
	req.Header.Set(middleware.AuthTokenHeader, resp.Token)
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"loggedOut":true}`, rr.Body.String())
	assert.Empty(t, sessions.loggedIn)
}

func TestHandler_Logout_unknownToken(t *testing.T) {
	handler := NewHandler(newRepoMock(), newSessionsMock())

	req := httptest.NewRequest("GET", "/api/logout", nil)
	req.Header.Set(middleware.AuthTokenHeader, "never-issued")
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_Me(t *testing.T) {
	handler := NewHandler(newRepoMock(), newSessionsMock())
	registered := registerTestUser(t, handler, "mila@fitbot.test")

	req := httptest.NewRequest("GET", "/api/me", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), registered.User.ID))
	rr := httptest.NewRecorder()
	handler.HandleMe(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var u User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &u))
	assert.Equal(t, registered.User.ID, u.ID)

	t.Run("no user in context", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.HandleMe(rr, httptest.NewRequest("GET", "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandler_UpdateProfile(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo, newSessionsMock())
	registered := registerTestUser(t, handler, "mila@fitbot.test")

	body := `{"username":"mila-runs","fullName":"Mila Krstic","avatarUrl":"https://img.fitbot.test/mila.png"}`
	req := httptest.NewRequest("PUT", "/api/me", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), registered.User.ID))
	rr := httptest.NewRecorder()
	handler.HandleUpdateProfile(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	updated, err := repo.Get(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "mila-runs", updated.Username)
	assert.Equal(t, "Mila Krstic", updated.FullName)
	assert.Equal(t, "https://img.fitbot.test/mila.png", updated.AvatarURL)
}

func TestPasswordIsHashedOnRegister(t *testing.T) {
	repo := newRepoMock()
	handler := NewHandler(repo, newSessionsMock())
	registered := registerTestUser(t, handler, "mila@fitbot.test")

	stored, err := repo.Get(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret", stored.PasswordHash)
	assert.True(t, pkg.CheckPasswordHash("super-secret", stored.PasswordHash))
}
