package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/records"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

var (
	ErrSessionNotFound = errors.New("workout session not found")
	ErrSetNotFound     = errors.New("workout set not found")
	ErrUnknownExercise = errors.New("set references unknown exercise")
)

// ListSessionsParams filter sessions by their start time; nil bounds
// are open ended.
type ListSessionsParams struct {
	From *time.Time
	To   *time.Time
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) CreateSession(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.createSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_session (user_id, program_id, name, started_at, rpe, notes)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at;`,
		session.UserID, session.ProgramID, session.Name, session.StartedAt, session.RPE, session.Notes,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	span.SetAttributes(attribute.Int("session.id", session.ID))

	return &session, nil
}

// FinishSession writes the closing fields of the session: finished
// timestamp, session rpe and notes.
func (r *Repo) FinishSession(ctx context.Context, session *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.finishSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", session.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_session SET finished_at = $1, rpe = $2, notes = $3 WHERE id = $4;`,
		session.FinishedAt, session.RPE, session.Notes, session.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *Repo) GetSession(ctx context.Context, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var session Session
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, program_id, name, started_at, finished_at, rpe, notes, created_at
			FROM workout_session WHERE id = $1;`,
		id,
	).Scan(
		&session.ID, &session.UserID, &session.ProgramID, &session.Name,
		&session.StartedAt, &session.FinishedAt, &session.RPE, &session.Notes, &session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &session, nil
}

func (r *Repo) ListSessions(ctx context.Context, userID int, params ListSessionsParams) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listSessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, program_id, name, started_at, finished_at, rpe, notes, created_at
			FROM workout_session
			WHERE user_id = $1
				AND ($2::timestamptz IS NULL OR started_at >= $2)
				AND ($3::timestamptz IS NULL OR started_at <= $3)
			ORDER BY started_at DESC, id DESC;`,
		userID, params.From, params.To,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var sessions []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.ProgramID, &session.Name,
			&session.StartedAt, &session.FinishedAt, &session.RPE, &session.Notes, &session.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// AddSet stores the set. A zero set number means "next one": numbering
// continues per session and exercise.
func (r *Repo) AddSet(ctx context.Context, set Set) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_set
				(session_id, exercise_id, set_number, weight_hundredths, weight_unit,
					reps, rpe, is_warmup, is_dropset, is_failure, notes, achieved_at)
				VALUES ($1, $2,
					CASE WHEN $3::int > 0 THEN $3 ELSE (
						SELECT COALESCE(MAX(set_number), 0) + 1
							FROM workout_set WHERE session_id = $1 AND exercise_id = $2
					) END,
					$4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, set_number, created_at;`,
		set.SessionID, set.ExerciseID, set.SetNumber, set.Weight.Hundredths(), string(set.Weight.Unit()),
		set.Reps, set.RPE, set.IsWarmup, set.IsDropset, set.IsFailure, set.Notes, set.AchievedAt,
	).Scan(&set.ID, &set.SetNumber, &set.CreatedAt)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrUnknownExercise
		}
		if pkg.IsCheckViolationError(err) {
			return nil, fmt.Errorf("%w: set violates a table constraint", records.ErrInvalidInput)
		}
		return nil, fmt.Errorf("insert set: %w", err)
	}

	span.SetAttributes(
		attribute.Int("set.id", set.ID),
		attribute.Int("session.id", set.SessionID),
	)

	return &set, nil
}

func (r *Repo) GetSet(ctx context.Context, id int) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	row := r.db.QueryRow(
		ctx,
		`SELECT id, session_id, exercise_id, set_number, weight_hundredths, weight_unit,
				reps, rpe, is_warmup, is_dropset, is_failure, notes, achieved_at, created_at
			FROM workout_set WHERE id = $1;`,
		id,
	)
	set, err := scanSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSetNotFound
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ListSets returns the session's sets in the order they were done.
func (r *Repo) ListSets(ctx context.Context, sessionID int) (_ []Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listSets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, session_id, exercise_id, set_number, weight_hundredths, weight_unit,
				reps, rpe, is_warmup, is_dropset, is_failure, notes, achieved_at, created_at
			FROM workout_set WHERE session_id = $1 ORDER BY achieved_at, id;`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var sets []Set
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, *set)
	}

	return sets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSet(row rowScanner) (*Set, error) {
	var set Set
	var weightHundredths int64
	var weightUnit string
	if err := row.Scan(
		&set.ID, &set.SessionID, &set.ExerciseID, &set.SetNumber, &weightHundredths, &weightUnit,
		&set.Reps, &set.RPE, &set.IsWarmup, &set.IsDropset, &set.IsFailure,
		&set.Notes, &set.AchievedAt, &set.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan set: %w", err)
	}

	weight, err := records.NewWeight(weightHundredths, records.Unit(weightUnit))
	if err != nil {
		return nil, fmt.Errorf("set %d weight: %w", set.ID, err)
	}
	set.Weight = weight

	return &set, nil
}
