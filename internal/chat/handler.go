package chat

import (
	"encoding/json"
	"errors"
	"net/http"

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

type RelayRequest struct {
	Message      string `json:"message"`
	UserID       string `json:"userId"`
	Category     string `json:"category"`
	IsNewSession bool   `json:"isNewSession"`
	SessionID    string `json:"sessionId"`
}

type fallbackResponse struct {
	Error            string        `json:"error"`
	Reply            string        `json:"reply"`
	SuggestedVideos  []VideoRecord `json:"suggestedVideos"`
	PreviousSessions []SessionInfo `json:"previousSessions"`
}

func (handler *Handler) HandleRelay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.relay")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var relayReq RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&relayReq); err != nil {
		log.Tracef("chat relay, unmarshal json params: %s", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if relayReq.Message == "" {
		http.Error(w, "error, message empty", http.StatusBadRequest)
		return
	}

	result, err := handler.service.Relay(
		ctx, userID,
		relayReq.Message, relayReq.Category, relayReq.SessionID,
		relayReq.IsNewSession,
	)
	if err != nil {
		if errors.Is(err, ErrUpstreamFailed) {
			handler.writeFallback(w)
			return
		}
		log.Errorf("chat relay [user %s]: %s", userID, err)
		http.Error(w, "chat relay failed", http.StatusInternalServerError)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("marshal chat relay result: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resultJson)
}

func (handler *Handler) HandleSessionMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.sessionMessages")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	messages, err := handler.service.SessionMessages(ctx, userID, sessionID)
	if err != nil {
		log.Errorf("get session messages [user %s, session %s]: %s", userID, sessionID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []Message{}
	}

	messagesJson, err := json.Marshal(messages)
	if err != nil {
		log.Errorf("marshal session messages: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, messagesJson)
}

func (handler *Handler) writeFallback(w http.ResponseWriter) {
	respJson, err := json.Marshal(fallbackResponse{
		Error:            "upstream failure",
		Reply:            FallbackReply,
		SuggestedVideos:  []VideoRecord{},
		PreviousSessions: []SessionInfo{},
	})
	if err != nil {
		log.Errorf("marshal chat fallback response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusInternalServerError)
}
