package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/auth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newAuthTestHandler(t *testing.T) (http.Handler, *auth.LoginTestChecker) {
	t.Helper()
	loginChecker := auth.NewLoginTestChecker()
	authMiddleware := NewAuthMiddlewareHandler(loginChecker)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return authMiddleware.AuthCheck()(next), loginChecker
}

func TestAuthCheck_publicPaths(t *testing.T) {
	handler, _ := newAuthTestHandler(t)

	for _, tc := range []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "root", method: http.MethodGet, path: "/", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/version", wantStatus: http.StatusOK},
		{name: "register", method: http.MethodPost, path: "/api/register", wantStatus: http.StatusOK},
		{name: "login", method: http.MethodPost, path: "/api/login", wantStatus: http.StatusOK},
		{name: "billing webhook", method: http.MethodPost, path: "/billing/webhook", wantStatus: http.StatusOK},
		{name: "plans read", method: http.MethodGet, path: "/workouts/plans", wantStatus: http.StatusOK},
		{name: "exercise types read", method: http.MethodGet, path: "/exercises/types", wantStatus: http.StatusOK},
		{name: "exercise type read by id", method: http.MethodGet, path: "/exercises/types/3", wantStatus: http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestAuthCheck_catalogWritesNeedLogin(t *testing.T) {
	handler, loginChecker := newAuthTestHandler(t)

	// the public prefixes only cover reads
	for _, tc := range []struct {
		name   string
		method string
		path   string
	}{
		{name: "create exercise type", method: http.MethodPost, path: "/exercises/types"},
		{name: "update exercise type", method: http.MethodPut, path: "/exercises/types/3"},
		{name: "delete exercise type", method: http.MethodDelete, path: "/exercises/types/3"},
		{name: "post under plans", method: http.MethodPost, path: "/workouts/plans"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "no can do\n", rr.Body.String())
		})
	}

	// with a valid token the same write goes through
	loginChecker.TokenToUserID["fit-token"] = "user-1"
	req := httptest.NewRequest(http.MethodPost, "/exercises/types", nil)
	req.Header.Set(AuthTokenHeader, "fit-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthCheck_tokenChecks(t *testing.T) {
	handler, loginChecker := newAuthTestHandler(t)
	loginChecker.TokenToUserID["fit-token"] = "user-1"

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gamification/stats", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gamification/stats", nil)
		req.Header.Set(AuthTokenHeader, "nope")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gamification/stats", nil)
		req.Header.Set(AuthTokenHeader, "fit-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("options preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/gamification/stats", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
