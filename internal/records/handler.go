package records

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=records_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

type recordsService interface {
	CurrentRecords(ctx context.Context, userID, exerciseID int) ([]PersonalRecord, error)
	History(ctx context.Context, userID, exerciseID int, category Category) ([]PersonalRecord, error)
}

type CurrentRecordsResponse struct {
	Records []PersonalRecord `json:"records"`
}

type HistoryResponse struct {
	Category Category         `json:"category"`
	Records  []PersonalRecord `json:"records"`
}

type EstimateResponse struct {
	Weight     float64 `json:"weight"`
	WeightUnit Unit    `json:"weightUnit"`
	Reps       int     `json:"reps"`
	OneRepMax  float64 `json:"oneRepMax"`
}

type Handler struct {
	service recordsService
}

func NewHandler(service recordsService) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleExerciseRecords returns the calling user's current records
// for one exercise, all categories.
func (handler *Handler) HandleExerciseRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.exerciseRecords")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	exerciseID, err := exerciseIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	currentRecords, err := handler.service.CurrentRecords(ctx, userID, exerciseID)
	if err != nil {
		log.Errorf("failed to get records for user %d exercise %d: %s", userID, exerciseID, err)
		http.Error(w, "failed to get records", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(CurrentRecordsResponse{Records: currentRecords})
	if err != nil {
		log.Errorf("failed to marshal records response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// HandleExerciseRecordHistory returns the full lineage of one record
// category for an exercise, newest first.
func (handler *Handler) HandleExerciseRecordHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.history")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	exerciseID, err := exerciseIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := Category(r.URL.Query().Get("category"))
	if category == "" {
		http.Error(w, "error, category empty", http.StatusBadRequest)
		return
	}

	history, err := handler.service.History(ctx, userID, exerciseID, category)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, "error, unknown category", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to get record history for user %d exercise %d: %s", userID, exerciseID, err)
		http.Error(w, "failed to get record history", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(HistoryResponse{
		Category: category,
		Records:  history,
	})
	if err != nil {
		log.Errorf("failed to marshal record history response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// HandleEstimateOneRepMax computes the estimated one-rep max for a
// given weight and rep count. Plain calculation, nothing is stored.
func (handler *Handler) HandleEstimateOneRepMax(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.estimate")
	defer span.End()

	weightStr := r.URL.Query().Get("weight")
	if weightStr == "" {
		http.Error(w, "error, weight empty", http.StatusBadRequest)
		return
	}
	magnitude, err := strconv.ParseFloat(weightStr, 64)
	if err != nil {
		http.Error(w, "error, weight NaN", http.StatusBadRequest)
		return
	}

	unit := Unit(r.URL.Query().Get("unit"))
	if unit == "" {
		unit = Kilograms
	}

	repsStr := r.URL.Query().Get("reps")
	if repsStr == "" {
		http.Error(w, "error, reps empty", http.StatusBadRequest)
		return
	}
	reps, err := strconv.Atoi(repsStr)
	if err != nil {
		http.Error(w, "error, reps NaN", http.StatusBadRequest)
		return
	}

	weight, err := WeightFromFloat(magnitude, unit)
	if err != nil {
		http.Error(w, "error, invalid weight", http.StatusBadRequest)
		return
	}

	oneRM, err := EstimateOneRepMax(weight, reps)
	if err != nil {
		http.Error(w, "error, invalid reps", http.StatusBadRequest)
		return
	}

	respJson, err := json.Marshal(EstimateResponse{
		Weight:     weight.Float(),
		WeightUnit: weight.Unit(),
		Reps:       reps,
		OneRepMax:  oneRM.Float(),
	})
	if err != nil {
		log.Errorf("failed to marshal estimate response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func exerciseIDFromRequest(r *http.Request) (int, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("error, exercise id empty")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.New("error, exercise id NaN")
	}
	return id, nil
}
