package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/records"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	StartSession(ctx context.Context, session Session) (*Session, error)
	FinishSession(ctx context.Context, userID, sessionID int, rpe *int, notes string) (*Session, error)
	GetSession(ctx context.Context, userID, sessionID int) (*Session, []Set, error)
	ListSessions(ctx context.Context, userID int, params ListSessionsParams) ([]Session, error)
	LogSet(ctx context.Context, userID, sessionID int, set Set) (*Set, []records.CategoryResult, error)
	EvaluateSet(ctx context.Context, userID, setID int) ([]records.CategoryResult, error)
}

type SessionResponse struct {
	Session *Session `json:"session"`
	Sets    []Set    `json:"sets"`
}

type ListSessionsResponse struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

type LogSetResponse struct {
	Set        *Set                     `json:"set"`
	NewRecords []records.CategoryResult `json:"newRecords"`
}

type EvaluateSetResponse struct {
	SetID      int                      `json:"setId"`
	NewRecords []records.CategoryResult `json:"newRecords"`
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.startSession")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var session Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Tracef("start session, unmarshal json params: %s", err)
		http.Error(w, "start session failed", http.StatusBadRequest)
		return
	}

	if session.Name == "" {
		http.Error(w, "error, session name empty", http.StatusBadRequest)
		return
	}

	session.UserID = userID
	startedSession, err := handler.service.StartSession(ctx, session)
	if err != nil {
		log.Errorf("start session for user %d: %s", userID, err)
		http.Error(w, "start session failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("session.id", startedSession.ID))

	sessionJson, err := json.Marshal(startedSession)
	if err != nil {
		log.Errorf("start session, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionJson, http.StatusCreated)
}

func (handler *Handler) HandleFinishSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.finishSession")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	sessionID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, invalid session id", http.StatusBadRequest)
		return
	}

	// closing params are optional, an empty body just finishes the session
	var params struct {
		RPE   *int   `json:"rpe"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		log.Tracef("finish session, unmarshal json params: %s", err)
		http.Error(w, "finish session failed", http.StatusBadRequest)
		return
	}

	session, err := handler.service.FinishSession(ctx, userID, sessionID, params.RPE, params.Notes)
	if err != nil {
		writeError(w, err, "finish session")
		return
	}

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("finish session, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, sessionJson)
}

func (handler *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.getSession")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	sessionID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, invalid session id", http.StatusBadRequest)
		return
	}

	session, sets, err := handler.service.GetSession(ctx, userID, sessionID)
	if err != nil {
		writeError(w, err, "get session")
		return
	}
	if sets == nil {
		sets = []Set{}
	}

	respJson, err := json.Marshal(SessionResponse{
		Session: session,
		Sets:    sets,
	})
	if err != nil {
		log.Errorf("get session, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listSessions")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var params ListSessionsParams
	for _, bound := range []struct {
		name string
		dest **time.Time
	}{
		{"from", &params.From},
		{"to", &params.To},
	} {
		raw := r.URL.Query().Get(bound.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("error, invalid %s time", bound.name), http.StatusBadRequest)
			return
		}
		*bound.dest = &t
	}

	sessions, err := handler.service.ListSessions(ctx, userID, params)
	if err != nil {
		log.Errorf("list sessions for user %d: %s", userID, err)
		http.Error(w, "list sessions failed", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(ListSessionsResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
	if err != nil {
		log.Errorf("list sessions, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, listJson)
}

func (handler *Handler) HandleLogSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.logSet")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	sessionID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, invalid session id", http.StatusBadRequest)
		return
	}

	var set Set
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		log.Tracef("log set, unmarshal json params: %s", err)
		http.Error(w, "log set failed", http.StatusBadRequest)
		return
	}

	loggedSet, newRecords, err := handler.service.LogSet(ctx, userID, sessionID, set)
	if err != nil {
		writeError(w, err, "log set")
		return
	}
	if newRecords == nil {
		newRecords = []records.CategoryResult{}
	}

	span.SetAttributes(
		attribute.Int("set.id", loggedSet.ID),
		attribute.Int("set.newRecords", len(newRecords)),
	)

	respJson, err := json.Marshal(LogSetResponse{
		Set:        loggedSet,
		NewRecords: newRecords,
	})
	if err != nil {
		log.Errorf("log set, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleEvaluateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.evaluateSet")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	setID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, invalid set id", http.StatusBadRequest)
		return
	}

	newRecords, err := handler.service.EvaluateSet(ctx, userID, setID)
	if err != nil && len(newRecords) == 0 {
		writeError(w, err, "evaluate set")
		return
	}
	if err != nil {
		// some categories were applied, others failed; return what stuck,
		// the next evaluate run picks up the rest
		log.Errorf("evaluate set %d applied partially: %s", setID, err)
	}
	if newRecords == nil {
		newRecords = []records.CategoryResult{}
	}

	respJson, err := json.Marshal(EvaluateSetResponse{
		SetID:      setID,
		NewRecords: newRecords,
	})
	if err != nil {
		log.Errorf("evaluate set, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func pathID(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}

// writeError maps workout service errors to status codes; the mapping
// is shared by all endpoints touching sessions and sets.
func writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, ErrSetNotFound):
		http.Error(w, "set not found", http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, "error, not yours", http.StatusForbidden)
	case errors.Is(err, ErrSessionFinished):
		http.Error(w, "error, session already finished", http.StatusConflict)
	case errors.Is(err, ErrUnknownExercise):
		http.Error(w, "error, unknown exercise", http.StatusBadRequest)
	case errors.Is(err, records.ErrInvalidInput):
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, fmt.Sprintf("%s failed", op), http.StatusInternalServerError)
	}
}
