package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

// EventRecordEstablished is the outbox event type written whenever a
// new record becomes current.
const EventRecordEstablished = "record.established"

const recordColumns = `
	id, user_id, exercise_id, set_id, category,
	weight_hundredths, weight_unit, reps, volume_hundredths, one_rm_hundredths,
	achieved_at, superseded_at, is_current, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// GetCurrent returns the current record of the (user, exercise,
// category) lineage, or nil when the lineage has none yet.
func (r *Repo) GetCurrent(ctx context.Context, userID, exerciseID int, category Category) (_ *PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.getCurrent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", string(category)))

	rec, err := scanRecord(r.db.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM personal_record
		WHERE user_id = $1 AND exercise_id = $2 AND category = $3 AND is_current;`,
		userID, exerciseID, category,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CurrentForExercise returns the current records of all categories
// for one (user, exercise) pair, keyed by category. Categories with
// no record yet are simply absent.
func (r *Repo) CurrentForExercise(ctx context.Context, userID, exerciseID int) (_ map[Category]*PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.currentForExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM personal_record
		WHERE user_id = $1 AND exercise_id = $2 AND is_current;`,
		userID, exerciseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	current := make(map[Category]*PersonalRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		current[rec.Category] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return current, nil
}

// GetByOriginatingSet returns every record established by the given
// set, current or not. Used for idempotency checks before applying
// a re-submitted set.
func (r *Repo) GetByOriginatingSet(ctx context.Context, setID int) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.getByOriginatingSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	rows, err := r.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM personal_record
		WHERE set_id = $1;`,
		setID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []PersonalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return found, nil
}

// History returns the full lineage of one (user, exercise, category)
// triple, newest first. Records are never deleted, so this is the
// complete story of the record changing hands.
func (r *Repo) History(ctx context.Context, userID, exerciseID int, category Category) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", string(category)))

	rows, err := r.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM personal_record
		WHERE user_id = $1 AND exercise_id = $2 AND category = $3
		ORDER BY achieved_at DESC, id DESC;`,
		userID, exerciseID, category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []PersonalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}

// ConditionalReplace atomically retires old and installs newRecord as
// the current record of its lineage, in a single transaction:
//   - the lineage's current entry is locked and compared against old;
//     any mismatch means another submission got there first and the
//     call fails with ErrReplaceConflict, changing nothing
//   - old (if any) is marked non-current with superseded_at set to
//     the new record's achieved_at
//   - newRecord is inserted as current, and a record.established
//     event is written to the outbox in the same transaction
//
// Returns the inserted record with its assigned ID.
func (r *Repo) ConditionalReplace(ctx context.Context, old, newRecord *PersonalRecord) (_ *PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.conditionalReplace")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", string(newRecord.Category)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("rollback transaction: %w: %w", rollbackErr, err)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	var currentID int
	foundCurrent := true
	err = tx.QueryRow(ctx, `
		SELECT id FROM personal_record
		WHERE user_id = $1 AND exercise_id = $2 AND category = $3 AND is_current
		FOR UPDATE;`,
		newRecord.UserID, newRecord.ExerciseID, newRecord.Category,
	).Scan(&currentID)
	if errors.Is(err, pgx.ErrNoRows) {
		foundCurrent = false
		err = nil
	} else if err != nil {
		return nil, err
	}

	switch {
	case old == nil && foundCurrent:
		return nil, fmt.Errorf("%w: lineage gained a current record", ErrReplaceConflict)
	case old != nil && !foundCurrent:
		return nil, fmt.Errorf("%w: assumed current record is gone", ErrReplaceConflict)
	case old != nil && currentID != old.ID:
		return nil, fmt.Errorf("%w: current record is now %d, not %d", ErrReplaceConflict, currentID, old.ID)
	}

	if old != nil {
		tag, execErr := tx.Exec(ctx, `
			UPDATE personal_record
			SET is_current = FALSE, superseded_at = $1
			WHERE id = $2 AND is_current;`,
			newRecord.AchievedAt, old.ID,
		)
		if execErr != nil {
			err = execErr
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			err = fmt.Errorf("%w: assumed current record is gone", ErrReplaceConflict)
			return nil, err
		}
	}

	inserted := *newRecord
	err = tx.QueryRow(ctx, `
		INSERT INTO personal_record
			(user_id, exercise_id, set_id, category,
			 weight_hundredths, weight_unit, reps, volume_hundredths, one_rm_hundredths,
			 achieved_at, is_current)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		RETURNING id, created_at;`,
		newRecord.UserID, newRecord.ExerciseID, newRecord.SetID, newRecord.Category,
		newRecord.Weight.Hundredths(), newRecord.Weight.Unit(), newRecord.Reps,
		newRecord.Volume.Hundredths(), newRecord.OneRepMax.Hundredths(),
		newRecord.AchievedAt,
	).Scan(&inserted.ID, &inserted.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			err = fmt.Errorf("%w: %s", ErrReplaceConflict, err)
		}
		return nil, err
	}
	inserted.IsCurrent = true
	inserted.SupersededAt = nil

	payload, err := json.Marshal(inserted)
	if err != nil {
		return nil, fmt.Errorf("marshal record event: %w", err)
	}
	if _, err = tx.Exec(ctx, `
		INSERT INTO record_outbox (event_type, partition_key, payload)
		VALUES ($1, $2, $3);`,
		EventRecordEstablished,
		fmt.Sprintf("%d:%d", inserted.UserID, inserted.ExerciseID),
		payload,
	); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("record.id", inserted.ID))
	return &inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*PersonalRecord, error) {
	var (
		rec        PersonalRecord
		weightH    int64
		unit       string
		volumeH    int64
		oneRepMaxH *int64
	)
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.ExerciseID, &rec.SetID, &rec.Category,
		&weightH, &unit, &rec.Reps, &volumeH, &oneRepMaxH,
		&rec.AchievedAt, &rec.SupersededAt, &rec.IsCurrent, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if rec.Weight, err = NewWeight(weightH, Unit(unit)); err != nil {
		return nil, fmt.Errorf("stored weight: %w", err)
	}
	if rec.Volume, err = NewWeight(volumeH, Unit(unit)); err != nil {
		return nil, fmt.Errorf("stored volume: %w", err)
	}
	if oneRepMaxH != nil {
		if rec.OneRepMax, err = NewWeight(*oneRepMaxH, Unit(unit)); err != nil {
			return nil, fmt.Errorf("stored one rep max: %w", err)
		}
	}

	return &rec, nil
}
