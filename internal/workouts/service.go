package workouts

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/records"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
)

var (
	ErrSessionFinished = errors.New("workout session already finished")
	ErrNotOwner        = errors.New("not the owner")
)

type workoutsRepo interface {
	CreateSession(ctx context.Context, session Session) (*Session, error)
	FinishSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id int) (*Session, error)
	ListSessions(ctx context.Context, userID int, params ListSessionsParams) ([]Session, error)
	AddSet(ctx context.Context, set Set) (*Set, error)
	GetSet(ctx context.Context, id int) (*Set, error)
	ListSets(ctx context.Context, sessionID int) ([]Set, error)
}

type recordsPipeline interface {
	Submit(ctx context.Context, set records.Set) ([]records.CategoryResult, error)
}

// Service owns the workout log: sessions and their sets. Every
// working set it stores is handed to the records pipeline, which
// decides whether any personal records fell.
type Service struct {
	repo    workoutsRepo
	records recordsPipeline
	metrics *metrics.Manager
}

func NewService(repo workoutsRepo, recordsPipeline recordsPipeline, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:    repo,
		records: recordsPipeline,
		metrics: metricsManager,
	}
}

func (s *Service) StartSession(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.startSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	return s.repo.CreateSession(ctx, session)
}

func (s *Service) FinishSession(ctx context.Context, userID, sessionID int, rpe *int, notes string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.finishSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.FinishedAt != nil {
		return nil, ErrSessionFinished
	}
	if rpe != nil && (*rpe < 1 || *rpe > 10) {
		return nil, fmt.Errorf("%w: session rpe must be between 1 and 10", records.ErrInvalidInput)
	}

	now := time.Now()
	session.FinishedAt = &now
	if rpe != nil {
		session.RPE = rpe
	}
	if notes != "" {
		session.Notes = notes
	}

	if err := s.repo.FinishSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, userID, sessionID int) (_ *Session, _ []Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.getSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	sets, err := s.repo.ListSets(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	return session, sets, nil
}

func (s *Service) ListSessions(ctx context.Context, userID int, params ListSessionsParams) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.listSessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.ListSessions(ctx, userID, params)
}

// LogSet stores one set in an open session of the user and runs it
// through the records pipeline. The returned results are the records
// the set established, usually none.
func (s *Service) LogSet(ctx context.Context, userID, sessionID int, set Set) (_ *Set, _ []records.CategoryResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.logSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("session.id", sessionID),
		attribute.Int("exercise.id", set.ExerciseID),
	)

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.FinishedAt != nil {
		return nil, nil, ErrSessionFinished
	}

	if err := validateSet(set); err != nil {
		return nil, nil, err
	}

	set.SessionID = sessionID
	if set.AchievedAt.IsZero() {
		set.AchievedAt = time.Now()
	}

	added, err := s.repo.AddSet(ctx, set)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.CounterSetsLogged.Inc()

	return added, s.evaluateRecords(ctx, userID, added), nil
}

// EvaluateSet re-runs the records pipeline for an already stored set.
// Safe to repeat: records the set already established are not
// re-issued.
func (s *Service) EvaluateSet(ctx context.Context, userID, setID int) (_ []records.CategoryResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.evaluateSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	set, err := s.repo.GetSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	session, err := s.repo.GetSession(ctx, set.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotOwner
	}

	// warmups and rep-less sets never enter the records pipeline
	if set.IsWarmup || set.Reps == 0 {
		return nil, nil
	}

	return s.records.Submit(ctx, recordsSet(userID, set))
}

// evaluateRecords feeds a freshly stored working set to the records
// pipeline. The set is already persisted, so a records hiccup must
// not fail the log call: the evaluation can be re-run per set.
func (s *Service) evaluateRecords(ctx context.Context, userID int, set *Set) []records.CategoryResult {
	if set.IsWarmup || set.Reps == 0 {
		return nil
	}

	results, err := s.records.Submit(ctx, recordsSet(userID, set))
	if err != nil {
		log.Errorf("set %d stored, record evaluation failed: %s", set.ID, err)
	}
	return results
}

func (s *Service) ownedSession(ctx context.Context, userID, sessionID int) (*Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotOwner
	}
	return session, nil
}

func recordsSet(userID int, set *Set) records.Set {
	return records.Set{
		ID:         set.ID,
		UserID:     userID,
		ExerciseID: set.ExerciseID,
		Weight:     set.Weight,
		Reps:       set.Reps,
		AchievedAt: set.AchievedAt,
	}
}

func validateSet(set Set) error {
	if set.ExerciseID <= 0 {
		return fmt.Errorf("%w: invalid exercise id", records.ErrInvalidInput)
	}
	if !records.ValidUnit(set.Weight.Unit()) {
		return fmt.Errorf("%w: unknown weight unit", records.ErrInvalidInput)
	}
	if set.Reps < 0 || set.Reps > 1000 {
		return fmt.Errorf("%w: reps must be between 0 and 1000", records.ErrInvalidInput)
	}
	if set.RPE != nil && (*set.RPE < 1 || *set.RPE > 10) {
		return fmt.Errorf("%w: set rpe must be between 1 and 10", records.ErrInvalidInput)
	}
	if set.SetNumber < 0 {
		return fmt.Errorf("%w: negative set number", records.ErrInvalidInput)
	}
	return nil
}
