package programs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

var (
	ErrProgramNotFound = errors.New("program not found")
	ErrUnknownExercise = errors.New("program references unknown exercise")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Create stores the program and all its exercise rows in one transaction,
// so a half written program is never visible.
func (r *Repo) Create(ctx context.Context, program Program) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w [rollback err: %s]", err, rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	err = tx.QueryRow(
		ctx,
		`INSERT INTO workout_program
				(user_id, name, description, duration_weeks, sessions_per_week, is_template, is_public, is_active)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at;`,
		program.UserID, program.Name, program.Description, program.DurationWeeks,
		program.SessionsPerWeek, program.IsTemplate, program.IsPublic, program.IsActive,
	).Scan(&program.ID, &program.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert program: %w", err)
	}

	for i := range program.Exercises {
		pe := &program.Exercises[i]
		pe.ProgramID = program.ID
		err = tx.QueryRow(
			ctx,
			`INSERT INTO program_exercise
					(program_id, exercise_id, order_index, target_sets, target_reps, target_rpe, rest_seconds, notes)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id;`,
			pe.ProgramID, pe.ExerciseID, pe.OrderIndex, pe.TargetSets,
			pe.TargetReps, pe.TargetRPE, pe.RestSeconds, pe.Notes,
		).Scan(&pe.ID)
		if err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return nil, ErrUnknownExercise
			}
			return nil, fmt.Errorf("insert program exercise: %w", err)
		}
	}

	span.SetAttributes(attribute.Int("program.id", program.ID))
	span.SetAttributes(attribute.Int("program.exercises", len(program.Exercises)))

	return &program, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var program Program
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, name, description, duration_weeks, sessions_per_week, is_template, is_public, is_active, created_at
			FROM workout_program WHERE id = $1;`,
		id,
	).Scan(
		&program.ID, &program.UserID, &program.Name, &program.Description, &program.DurationWeeks,
		&program.SessionsPerWeek, &program.IsTemplate, &program.IsPublic, &program.IsActive, &program.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan program: %w", err)
	}

	program.Exercises, err = r.programExercises(ctx, program.ID)
	if err != nil {
		return nil, err
	}

	return &program, nil
}

func (r *Repo) programExercises(ctx context.Context, programID int) ([]ProgramExercise, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, program_id, exercise_id, order_index, target_sets, target_reps, target_rpe, rest_seconds, notes
			FROM program_exercise WHERE program_id = $1 ORDER BY order_index;`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("query program exercises: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var programExercises []ProgramExercise
	for rows.Next() {
		var pe ProgramExercise
		var targetReps *string
		if err := rows.Scan(
			&pe.ID, &pe.ProgramID, &pe.ExerciseID, &pe.OrderIndex,
			&pe.TargetSets, &targetReps, &pe.TargetRPE, &pe.RestSeconds, &pe.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if targetReps != nil {
			pe.TargetReps = *targetReps
		}
		programExercises = append(programExercises, pe)
	}

	return programExercises, nil
}

// ListForUser returns the user's own programs, newest first, without their
// exercise rows (those come with Get).
func (r *Repo) ListForUser(ctx context.Context, userID int) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, description, duration_weeks, sessions_per_week, is_template, is_public, is_active, created_at
			FROM workout_program WHERE user_id = $1 ORDER BY created_at DESC, id DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var programs []Program
	for rows.Next() {
		var program Program
		if err := rows.Scan(
			&program.ID, &program.UserID, &program.Name, &program.Description, &program.DurationWeeks,
			&program.SessionsPerWeek, &program.IsTemplate, &program.IsPublic, &program.IsActive, &program.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		programs = append(programs, program)
	}

	return programs, nil
}

// Update changes the program row only; the exercise list is replaced
// through ReplaceExercises.
func (r *Repo) Update(ctx context.Context, program *Program) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", program.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_program SET
				name = $1, description = $2, duration_weeks = $3, sessions_per_week = $4,
				is_template = $5, is_public = $6, is_active = $7
			WHERE id = $8;`,
		program.Name, program.Description, program.DurationWeeks, program.SessionsPerWeek,
		program.IsTemplate, program.IsPublic, program.IsActive, program.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}
	return nil
}

// ReplaceExercises swaps the program's exercise rows for the given ones,
// transactionally: readers never see a partially replaced list.
func (r *Repo) ReplaceExercises(ctx context.Context, programID int, programExercises []ProgramExercise) (_ []ProgramExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.replaceExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w [rollback err: %s]", err, rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM program_exercise WHERE program_id = $1;`, programID); err != nil {
		return nil, fmt.Errorf("delete old program exercises: %w", err)
	}

	for i := range programExercises {
		pe := &programExercises[i]
		pe.ProgramID = programID
		err = tx.QueryRow(
			ctx,
			`INSERT INTO program_exercise
					(program_id, exercise_id, order_index, target_sets, target_reps, target_rpe, rest_seconds, notes)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id;`,
			pe.ProgramID, pe.ExerciseID, pe.OrderIndex, pe.TargetSets,
			pe.TargetReps, pe.TargetRPE, pe.RestSeconds, pe.Notes,
		).Scan(&pe.ID)
		if err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return nil, ErrUnknownExercise
			}
			return nil, fmt.Errorf("insert program exercise: %w", err)
		}
	}

	return programExercises, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	// program_exercise rows go with it (fk cascade)
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_program WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}
	return nil
}
