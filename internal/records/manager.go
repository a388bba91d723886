package records

//go:generate mockgen -source=$GOFILE -destination=manager_mocks_test.go -package=records_test

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
)

// maxReplaceAttempts bounds how often one category's replace is
// retried after losing a race against a concurrent submission.
const maxReplaceAttempts = 3

// recordStore is the slice of record persistence the supersession
// manager needs. The store serializes replaces per (user, exercise,
// category) lineage and reports a lost race as ErrReplaceConflict.
type recordStore interface {
	GetCurrent(ctx context.Context, userID, exerciseID int, category Category) (*PersonalRecord, error)
	GetByOriginatingSet(ctx context.Context, setID int) ([]PersonalRecord, error)
	ConditionalReplace(ctx context.Context, old, newRecord *PersonalRecord) (*PersonalRecord, error)
}

// Manager installs winning evaluation results. Each category is
// applied as its own atomic replace; a failure in one category never
// rolls back or blocks the others.
type Manager struct {
	store   recordStore
	metrics *metrics.Manager
}

func NewManager(store recordStore, metricsManager *metrics.Manager) *Manager {
	return &Manager{
		store:   store,
		metrics: metricsManager,
	}
}

// Apply installs the given evaluation results for the set and returns
// those actually applied. Categories whose record was grabbed by a
// better concurrent submission are silently dropped; categories that
// failed to update are reported in the returned error, aggregated,
// without affecting the rest.
func (m *Manager) Apply(ctx context.Context, set Set, results []CategoryResult) (_ []CategoryResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "records.manager.apply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(results) == 0 {
		return nil, nil
	}

	// a re-submitted set must not create duplicates: categories where
	// this set already holds a record are done
	existing, err := m.store.GetByOriginatingSet(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	alreadyRecorded := make(map[Category]bool, len(existing))
	for _, rec := range existing {
		alreadyRecorded[rec.Category] = true
	}

	var applied []CategoryResult
	var errs error
	for _, result := range results {
		if alreadyRecorded[result.Category] {
			log.Debugf("set %d already has a %s record, skipping", set.ID, result.Category)
			continue
		}
		appliedResult, applyErr := m.applyCategory(ctx, set, result)
		if applyErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("category %s: %w", result.Category, applyErr))
			continue
		}
		if appliedResult != nil {
			applied = append(applied, *appliedResult)
		}
	}

	return applied, errs
}

// applyCategory runs the read-compare-write sequence for one
// category. When the conditional replace reports that the lineage
// changed underneath, the fresh current record is re-ranked against
// the candidate: if the fresh one already beats or ties it, the
// category is a no-op; otherwise the replace is retried against the
// fresh record, a bounded number of times.
func (m *Manager) applyCategory(ctx context.Context, set Set, result CategoryResult) (*CategoryResult, error) {
	current := result.Superseded
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		installed, err := m.store.ConditionalReplace(ctx, current, &result.NewRecord)
		if err == nil {
			result.NewRecord = *installed
			result.Superseded = current
			return &result, nil
		}
		if !errors.Is(err, ErrReplaceConflict) {
			return nil, err
		}
		m.metrics.CounterRecordConflicts.Inc()

		fresh, err := m.store.GetCurrent(ctx, set.UserID, set.ExerciseID, result.Category)
		if err != nil {
			return nil, err
		}
		wins, err := result.Category.Beats(set, fresh)
		if err != nil {
			return nil, err
		}
		if !wins {
			log.Debugf(
				"set %d lost the %s record race for user %d exercise %d",
				set.ID, result.Category, set.UserID, set.ExerciseID,
			)
			return nil, nil
		}
		current = fresh
	}

	m.metrics.CounterRecordRetriesFailed.Inc()
	return nil, ErrRecordUpdateFailed
}
