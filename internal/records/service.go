package records

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=records_test

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
)

type serviceStore interface {
	CurrentForExercise(ctx context.Context, userID, exerciseID int) (map[Category]*PersonalRecord, error)
	History(ctx context.Context, userID, exerciseID int, category Category) ([]PersonalRecord, error)
}

// Service is the records pipeline: snapshot the current records,
// evaluate the candidate set against them, hand the winning
// categories to the supersession manager. Set ingestion calls Submit
// after a set is stored.
type Service struct {
	store   serviceStore
	manager *Manager
	metrics *metrics.Manager
}

func NewService(store serviceStore, manager *Manager, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:   store,
		manager: manager,
		metrics: metricsManager,
	}
}

// Submit runs one finalized set through the pipeline and returns the
// records it established. An empty result means the set broke no
// record, which is the common case and does no writes. A non-empty
// result together with an error means some categories were applied
// and others failed; the two never affect each other.
func (s *Service) Submit(ctx context.Context, set Set) (_ []CategoryResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "records.submit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("set.id", set.ID),
		attribute.Int("user.id", set.UserID),
		attribute.Int("exercise.id", set.ExerciseID),
	)

	defer func(start time.Time) {
		s.metrics.HistSubmitSetDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	current, err := s.store.CurrentForExercise(ctx, set.UserID, set.ExerciseID)
	if err != nil {
		return nil, fmt.Errorf("read current records: %w", err)
	}

	results, err := Evaluate(set, current)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	applied, err := s.manager.Apply(ctx, set, results)
	for _, result := range applied {
		s.metrics.CounterRecordsEstablished.WithLabelValues(string(result.Category)).Inc()
		log.Infof(
			"user %d set a new %s record for exercise %d: %s x%d",
			set.UserID, result.Category, set.ExerciseID, result.NewRecord.Weight, result.NewRecord.Reps,
		)
	}
	return applied, err
}

// CurrentRecords returns the user's current records for one
// exercise, in stable category order.
func (s *Service) CurrentRecords(ctx context.Context, userID, exerciseID int) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "records.currentRecords")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	current, err := s.store.CurrentForExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	recordsList := make([]PersonalRecord, 0, len(current))
	for _, category := range AllCategories {
		if rec, ok := current[category]; ok {
			recordsList = append(recordsList, *rec)
		}
	}
	return recordsList, nil
}

// History returns the full record lineage of one category for an
// exercise, newest first.
func (s *Service) History(ctx context.Context, userID, exerciseID int, category Category) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "records.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown record category %q", ErrInvalidInput, category)
	}
	return s.store.History(ctx, userID, exerciseID, category)
}
