package workout

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/auth"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/pkg"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

type StartRequest struct {
	WorkoutType string `json:"workoutType"`
	Notes       string `json:"notes"`
}

type HistoryResponse struct {
	Workouts []CompletedWorkout `json:"workouts"`
	Total    int                `json:"total"`
}

func (handler *Handler) HandlePlans(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.plans")
	defer span.End()

	plans := make([]Plan, 0, len(DefaultPlans))
	for _, plan := range DefaultPlans {
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Type < plans[j].Type
	})

	plansJson, err := json.Marshal(plans)
	if err != nil {
		log.Errorf("marshal workout plans: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, plansJson)
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.start")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var startReq StartRequest
	if err := json.NewDecoder(r.Body).Decode(&startReq); err != nil {
		log.Tracef("start workout, unmarshal json params: %s", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	tracker, err := handler.manager.Start(ctx, userID, startReq.WorkoutType, startReq.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan):
			http.Error(w, "unknown workout plan", http.StatusBadRequest)
		case errors.Is(err, ErrWorkoutInProgress):
			http.Error(w, "workout already in progress", http.StatusConflict)
		default:
			log.Errorf("start workout for user %s: %s", userID, err)
			http.Error(w, "start workout failed", http.StatusInternalServerError)
		}
		return
	}

	handler.writeStatus(w, tracker.Status(), http.StatusCreated)
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "handler.workout.pause", (*Tracker).Pause)
}

func (handler *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "handler.workout.resume", (*Tracker).Resume)
}

func (handler *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "handler.workout.end", (*Tracker).End)
}

func (handler *Handler) handleTransition(
	w http.ResponseWriter, r *http.Request,
	spanName string,
	transition func(*Tracker) error,
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	tracker, err := handler.manager.Tracker(userID)
	if err != nil {
		http.Error(w, "no active workout", http.StatusNotFound)
		return
	}

	if err := transition(tracker); err != nil {
		http.Error(w, "invalid workout state", http.StatusConflict)
		return
	}

	handler.writeStatus(w, tracker.Status(), http.StatusOK)
}

func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.status")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	tracker, err := handler.manager.Tracker(userID)
	if err != nil {
		http.Error(w, "no active workout", http.StatusNotFound)
		return
	}

	handler.writeStatus(w, tracker.Status(), http.StatusOK)
}

// HandleResumable reports today's latest incomplete session, if any.
func (handler *Handler) HandleResumable(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.resumable")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	snapshot, err := handler.manager.Resumable(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			pkg.WriteJSONResponseOK(w, `{"resumable":false}`)
			return
		}
		log.Errorf("get resumable workout for user %s: %s", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(struct {
		Resumable bool      `json:"resumable"`
		Snapshot  *Snapshot `json:"snapshot"`
	}{true, snapshot})
	if err != nil {
		log.Errorf("marshal resumable workout: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.restore")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	tracker, err := handler.manager.Restore(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSnapshotNotFound):
			http.Error(w, "nothing to restore", http.StatusNotFound)
		case errors.Is(err, ErrWorkoutInProgress):
			http.Error(w, "workout already in progress", http.StatusConflict)
		default:
			log.Errorf("restore workout for user %s: %s", userID, err)
			http.Error(w, "restore workout failed", http.StatusInternalServerError)
		}
		return
	}

	handler.writeStatus(w, tracker.Status(), http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.history")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil || size < 1 {
		http.Error(w, "invalid size", http.StatusBadRequest)
		return
	}

	workouts, total, err := handler.manager.History(ctx, userID, page, size)
	if err != nil {
		log.Errorf("get workout history for user %s: %s", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if workouts == nil {
		workouts = []CompletedWorkout{}
	}

	respJson, err := json.Marshal(HistoryResponse{Workouts: workouts, Total: total})
	if err != nil {
		log.Errorf("marshal workout history: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) writeStatus(w http.ResponseWriter, status Status, code int) {
	statusJson, err := json.Marshal(status)
	if err != nil {
		log.Errorf("marshal workout status: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statusJson, code)
}
