package workout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/auth"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
)

func newTestHandlerRouter(t *testing.T, repo *repoMock) (*Manager, *mux.Router) {
	t.Helper()
	manager := NewManager(repo, newAwarderMock(), metrics.NewTestManager())
	t.Cleanup(manager.Shutdown)
	handler := NewHandler(manager)

	r := mux.NewRouter()
	r.HandleFunc("/workouts/plans", handler.HandlePlans).Methods("GET")
	r.HandleFunc("/workouts/start", handler.HandleStart).Methods("POST")
	r.HandleFunc("/workouts/pause", handler.HandlePause).Methods("POST")
	r.HandleFunc("/workouts/resume", handler.HandleResume).Methods("POST")
	r.HandleFunc("/workouts/end", handler.HandleEnd).Methods("POST")
	r.HandleFunc("/workouts/status", handler.HandleStatus).Methods("GET")
	r.HandleFunc("/workouts/resumable", handler.HandleResumable).Methods("GET")
	r.HandleFunc("/workouts/restore", handler.HandleRestore).Methods("POST")
	r.HandleFunc("/workouts/history/page/{page}/size/{size}", handler.HandleHistory).Methods("GET")
	return manager, r
}

func doAuthedReq(r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req = req.WithContext(auth.ContextWithUserID(req.Context(), testUserID))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandler_plans(t *testing.T) {
	_, r := newTestHandlerRouter(t, newRepoMock())

	rr := doAuthedReq(r, "GET", "/workouts/plans", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var plans []Plan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plans))
	assert.Len(t, plans, len(DefaultPlans))
}

func TestHandler_workoutLifecycle(t *testing.T) {
	repo := newRepoMock()
	manager, r := newTestHandlerRouter(t, repo)

	rr := doAuthedReq(r, "POST", "/workouts/start", `{"workoutType":"quick-hiit"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var status Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, StateRunning, status.State)
	assert.NotEmpty(t, status.SessionID)

	rr = doAuthedReq(r, "POST", "/workouts/start", `{"workoutType":"quick-hiit"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doAuthedReq(r, "POST", "/workouts/pause", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, StatePaused, status.State)

	rr = doAuthedReq(r, "POST", "/workouts/resume", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doAuthedReq(r, "GET", "/workouts/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, StateRunning, status.State)

	rr = doAuthedReq(r, "POST", "/workouts/end", "")
	require.Equal(t, http.StatusOK, rr.Code)

	_, err := manager.Tracker(testUserID)
	assert.ErrorIs(t, err, ErrNoActiveWorkout)

	rr = doAuthedReq(r, "GET", "/workouts/status", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_startUnknownPlan(t *testing.T) {
	_, r := newTestHandlerRouter(t, newRepoMock())
	rr := doAuthedReq(r, "POST", "/workouts/start", `{"workoutType":"crossfit-4000"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_unauthenticated(t *testing.T) {
	_, r := newTestHandlerRouter(t, newRepoMock())
	req := httptest.NewRequest("GET", "/workouts/status", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_resumableEmpty(t *testing.T) {
	_, r := newTestHandlerRouter(t, newRepoMock())
	rr := doAuthedReq(r, "GET", "/workouts/resumable", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"resumable":false}`, rr.Body.String())
}

func TestHandler_history(t *testing.T) {
	repo := newRepoMock()
	_, r := newTestHandlerRouter(t, repo)

	for i := 0; i < 3; i++ {
		_, err := repo.SaveCompleted(t.Context(), CompletedWorkout{
			UserID:          testUserID,
			WorkoutType:     "quick-hiit",
			DurationSeconds: 600 + i,
		})
		require.NoError(t, err)
	}

	rr := doAuthedReq(r, "GET", "/workouts/history/page/1/size/2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Workouts, 2)
	assert.Equal(t, 602, resp.Workouts[0].DurationSeconds)

	rr = doAuthedReq(r, "GET", "/workouts/history/page/0/size/2", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
