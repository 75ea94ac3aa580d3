package challenges

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/auth"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/pkg"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ProgressRequest struct {
	Amount int `json:"amount"`
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.challenges.list")
	defer span.End()

	challenges, err := handler.service.ListActive(ctx)
	if err != nil {
		log.Errorf("list active challenges: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if challenges == nil {
		challenges = []Challenge{}
	}

	challengesJson, err := json.Marshal(challenges)
	if err != nil {
		log.Errorf("marshal challenges: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, challengesJson)
}

func (handler *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.challenges.join")
	defer span.End()

	userID, challengeID, ok := handler.userAndChallenge(w, r)
	if !ok {
		return
	}

	if err := handler.service.Join(ctx, userID, challengeID); err != nil {
		switch {
		case errors.Is(err, ErrChallengeNotFound):
			http.Error(w, "challenge not found", http.StatusNotFound)
		case errors.Is(err, ErrAlreadyJoined):
			http.Error(w, "already joined", http.StatusConflict)
		default:
			log.Errorf("join challenge %d [user %s]: %s", challengeID, userID, err)
			http.Error(w, "join challenge failed", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSONResponseOK(w, `{"joined":true}`)
}

func (handler *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.challenges.leave")
	defer span.End()

	userID, challengeID, ok := handler.userAndChallenge(w, r)
	if !ok {
		return
	}

	if err := handler.service.Leave(ctx, userID, challengeID); err != nil {
		if errors.Is(err, ErrNotJoined) {
			http.Error(w, "not joined", http.StatusNotFound)
			return
		}
		log.Errorf("leave challenge %d [user %s]: %s", challengeID, userID, err)
		http.Error(w, "leave challenge failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"left":true}`)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.challenges.progress")
	defer span.End()

	userID, challengeID, ok := handler.userAndChallenge(w, r)
	if !ok {
		return
	}

	var progressReq ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&progressReq); err != nil {
		log.Tracef("report progress, unmarshal json params: %s", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if progressReq.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	membership, err := handler.service.ReportProgress(ctx, userID, challengeID, progressReq.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrChallengeNotFound):
			http.Error(w, "challenge not found", http.StatusNotFound)
		case errors.Is(err, ErrNotJoined):
			http.Error(w, "not joined", http.StatusNotFound)
		default:
			log.Errorf("report progress on challenge %d [user %s]: %s", challengeID, userID, err)
			http.Error(w, "report progress failed", http.StatusInternalServerError)
		}
		return
	}

	membershipJson, err := json.Marshal(membership)
	if err != nil {
		log.Errorf("marshal challenge membership: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, membershipJson)
}

func (handler *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.challenges.mine")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	memberships, err := handler.service.Memberships(ctx, userID)
	if err != nil {
		log.Errorf("list challenge memberships [user %s]: %s", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if memberships == nil {
		memberships = []Membership{}
	}

	membershipsJson, err := json.Marshal(memberships)
	if err != nil {
		log.Errorf("marshal challenge memberships: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, membershipsJson)
}

func (handler *Handler) userAndChallenge(w http.ResponseWriter, r *http.Request) (userID string, challengeID int, ok bool) {
	userID, ok = auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return "", 0, false
	}

	challengeID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid challenge id", http.StatusBadRequest)
		return "", 0, false
	}
	return userID, challengeID, true
}
