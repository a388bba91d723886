package programs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=programs_test

type programsRepo interface {
	Create(ctx context.Context, program Program) (*Program, error)
	Get(ctx context.Context, id int) (*Program, error)
	ListForUser(ctx context.Context, userID int) ([]Program, error)
	Update(ctx context.Context, program *Program) error
	ReplaceExercises(ctx context.Context, programID int, programExercises []ProgramExercise) ([]ProgramExercise, error)
	Delete(ctx context.Context, id int) error
}

type ListResponse struct {
	Programs []Program `json:"programs"`
	Total    int       `json:"total"`
}

type DeleteProgramResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo programsRepo
}

func NewHandler(repo programsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.create")
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

	var program Program
	if err := json.NewDecoder(r.Body).Decode(&program); err != nil {
		log.Tracef("new program, unmarshal json params: %s", err)
		http.Error(w, "create program failed", http.StatusBadRequest)
		return
	}

	if program.Name == "" {
		http.Error(w, "error, program name empty", http.StatusBadRequest)
		return
	}
	if err := validateExercises(program.Exercises); err != nil {
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	program.UserID = userID
	// new programs start active; deactivate via update
	program.IsActive = true

	createdProgram, err := handler.repo.Create(ctx, program)
	if errors.Is(err, ErrUnknownExercise) {
		http.Error(w, "error, unknown exercise in program", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("failed to create program [%s] for user %d: %s", program.Name, userID, err)
		http.Error(w, "create program failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("program.id", createdProgram.ID))

	programJson, err := json.Marshal(createdProgram)
	if err != nil {
		log.Errorf("create program, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, programJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, invalid program id", http.StatusBadRequest)
		return
	}

	program, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrProgramNotFound) {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get program %d: %s", id, err)
		http.Error(w, "get program failed", http.StatusInternalServerError)
		return
	}

	// other users' programs are visible only when shared as public;
	// hidden rather than forbidden
	if program.UserID != userID && !program.IsPublic {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}

	programJson, err := json.Marshal(program)
	if err != nil {
		log.Errorf("get program, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, programJson)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	programs, err := handler.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("list programs for user %d: %s", userID, err)
		http.Error(w, "list programs failed", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(ListResponse{
		Programs: programs,
		Total:    len(programs),
	})
	if err != nil {
		log.Errorf("list programs, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, listJson)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.update")
	defer span.End()

	program, ok := handler.ownedProgram(ctx, w, r)
	if !ok {
		return
	}

	var update Program
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Tracef("update program, unmarshal json params: %s", err)
		http.Error(w, "update program failed", http.StatusBadRequest)
		return
	}

	if update.Name == "" {
		http.Error(w, "error, program name empty", http.StatusBadRequest)
		return
	}

	// metadata only here; the exercise list has its own endpoint
	update.ID = program.ID
	update.UserID = program.UserID
	update.CreatedAt = program.CreatedAt
	update.Exercises = program.Exercises

	if err := handler.repo.Update(ctx, &update); err != nil {
		log.Errorf("update program %d: %s", program.ID, err)
		http.Error(w, "update program failed", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(update)
	if err != nil {
		log.Errorf("update program, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (handler *Handler) HandleReplaceExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.replaceExercises")
	defer span.End()

	program, ok := handler.ownedProgram(ctx, w, r)
	if !ok {
		return
	}

	var programExercises []ProgramExercise
	if err := json.NewDecoder(r.Body).Decode(&programExercises); err != nil {
		log.Tracef("replace program exercises, unmarshal json params: %s", err)
		http.Error(w, "replace program exercises failed", http.StatusBadRequest)
		return
	}

	if err := validateExercises(programExercises); err != nil {
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	replaced, err := handler.repo.ReplaceExercises(ctx, program.ID, programExercises)
	if errors.Is(err, ErrUnknownExercise) {
		http.Error(w, "error, unknown exercise in program", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("replace exercises for program %d: %s", program.ID, err)
		http.Error(w, "replace program exercises failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("program.exercises", len(replaced)))

	program.Exercises = replaced
	programJson, err := json.Marshal(program)
	if err != nil {
		log.Errorf("replace program exercises, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, programJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.delete")
	defer span.End()

	program, ok := handler.ownedProgram(ctx, w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, program.ID); err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			http.Error(w, "program not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete program %d: %s", program.ID, err)
		http.Error(w, "delete program failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(DeleteProgramResponse{DeletedID: program.ID})
	if err != nil {
		log.Errorf("delete program, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

// ownedProgram loads the program from the path id and checks it belongs
// to the caller. Writes the error response itself when not.
func (handler *Handler) ownedProgram(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Program, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, invalid program id", http.StatusBadRequest)
		return nil, false
	}

	program, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrProgramNotFound) {
		http.Error(w, "program not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		log.Errorf("get program %d: %s", id, err)
		http.Error(w, "get program failed", http.StatusInternalServerError)
		return nil, false
	}

	if program.UserID != userID {
		http.Error(w, "error, not your program", http.StatusForbidden)
		return nil, false
	}

	return program, true
}

// validateExercises checks the target prescriptions of each entry and
// stamps the order: the position in the list is the program order.
func validateExercises(programExercises []ProgramExercise) error {
	for i := range programExercises {
		pe := &programExercises[i]
		if pe.ExerciseID <= 0 {
			return fmt.Errorf("exercise %d: invalid exercise id", i)
		}
		if pe.TargetSets != nil && *pe.TargetSets <= 0 {
			return fmt.Errorf("exercise %d: target sets must be positive", i)
		}
		if pe.TargetRPE != nil && (*pe.TargetRPE < 1 || *pe.TargetRPE > 10) {
			return fmt.Errorf("exercise %d: target rpe must be between 1 and 10", i)
		}
		if pe.RestSeconds != nil && *pe.RestSeconds < 0 {
			return fmt.Errorf("exercise %d: rest seconds must not be negative", i)
		}
		pe.OrderIndex = i
	}
	return nil
}
