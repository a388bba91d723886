package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=exercises_test

type exercisesService interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	GetBySlug(ctx context.Context, slug string) (*Exercise, error)
	List(ctx context.Context, params ListParams) ([]Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id int) error
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
	Total     int        `json:"total"`
}

type DeleteExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	service exercisesService
}

func NewHandler(service exercisesService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
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

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	if exercise.Name == "" || exercise.MuscleGroup == "" {
		http.Error(w, "error, exercise name or muscle group empty", http.StatusBadRequest)
		return
	}
	if exercise.Slug == "" {
		exercise.Slug = Slugify(exercise.Name)
	}
	if exercise.Difficulty == "" {
		exercise.Difficulty = DifficultyBeginner
	}
	if !ValidDifficulty(exercise.Difficulty) {
		http.Error(w, "error, invalid difficulty", http.StatusBadRequest)
		return
	}

	// everything added over the api is a user addition to the seeded catalog
	exercise.IsCustom = true
	exercise.CreatedBy = &userID

	addedExercise, err := handler.service.Add(ctx, exercise)
	if errors.Is(err, ErrSlugTaken) {
		http.Error(w, "error, exercise already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("failed to add new exercise [%s]: %s", exercise.Slug, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("exercise.id", addedExercise.ID))

	exerciseJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("add exercise, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]

	// allow lookup either by numeric id or by slug
	var exercise *Exercise
	var err error
	if id, convErr := strconv.Atoi(idStr); convErr == nil {
		exercise, err = handler.service.Get(ctx, id)
	} else {
		exercise, err = handler.service.GetBySlug(ctx, idStr)
	}
	if errors.Is(err, ErrExerciseNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get exercise [%s]: %s", idStr, err)
		http.Error(w, "get exercise failed", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("get exercise, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exerciseJson)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	params := ListParams{
		MuscleGroup: r.URL.Query().Get("muscleGroup"),
		Equipment:   r.URL.Query().Get("equipment"),
		Difficulty:  r.URL.Query().Get("difficulty"),
	}

	exercises, err := handler.service.List(ctx, params)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "list exercises failed", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(ListResponse{
		Exercises: exercises,
		Total:     len(exercises),
	})
	if err != nil {
		log.Errorf("list exercises, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, listJson)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	exercise, ok := handler.ownedExercise(ctx, w, r)
	if !ok {
		return
	}

	var update Exercise
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Tracef("update exercise, unmarshal json params: %s", err)
		http.Error(w, "update exercise failed", http.StatusBadRequest)
		return
	}

	if update.Name == "" || update.MuscleGroup == "" {
		http.Error(w, "error, exercise name or muscle group empty", http.StatusBadRequest)
		return
	}
	if update.Slug == "" {
		update.Slug = Slugify(update.Name)
	}
	if update.Difficulty == "" {
		update.Difficulty = exercise.Difficulty
	}
	if !ValidDifficulty(update.Difficulty) {
		http.Error(w, "error, invalid difficulty", http.StatusBadRequest)
		return
	}
	update.ID = exercise.ID

	err := handler.service.Update(ctx, &update)
	if errors.Is(err, ErrSlugTaken) {
		http.Error(w, "error, exercise already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("update exercise %d: %s", exercise.ID, err)
		http.Error(w, "update exercise failed", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(update)
	if err != nil {
		log.Errorf("update exercise, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	exercise, ok := handler.ownedExercise(ctx, w, r)
	if !ok {
		return
	}

	if err := handler.service.Delete(ctx, exercise.ID); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete exercise %d: %s", exercise.ID, err)
		http.Error(w, "delete exercise failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(DeleteExerciseResponse{DeletedID: exercise.ID})
	if err != nil {
		log.Errorf("delete exercise, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

// ownedExercise loads the exercise from the path id and checks the caller
// may change it: seeded catalog entries are read only over the api, custom
// ones belong to their creator.
func (handler *Handler) ownedExercise(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Exercise, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, invalid exercise id", http.StatusBadRequest)
		return nil, false
	}

	exercise, err := handler.service.Get(ctx, id)
	if errors.Is(err, ErrExerciseNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		log.Errorf("get exercise %d: %s", id, err)
		http.Error(w, "get exercise failed", http.StatusInternalServerError)
		return nil, false
	}

	if !exercise.IsCustom {
		http.Error(w, "error, catalog exercises are read only", http.StatusForbidden)
		return nil, false
	}
	if exercise.CreatedBy == nil || *exercise.CreatedBy != userID {
		http.Error(w, "error, not your exercise", http.StatusForbidden)
		return nil, false
	}

	return exercise, true
}
