package exercises

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
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrSlugTaken        = errors.New("exercise slug already taken")
)

type ListParams struct {
	MuscleGroup string
	Equipment   string
	Difficulty  string
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercise
				(name, slug, description, muscle_group, equipment, difficulty, is_compound, is_bodyweight, is_custom, created_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at;`,
		exercise.Name, exercise.Slug, exercise.Description, exercise.MuscleGroup, exercise.Equipment,
		exercise.Difficulty, exercise.IsCompound, exercise.IsBodyweight, exercise.IsCustom, exercise.CreatedBy,
	).Scan(&exercise.ID, &exercise.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))

	return &exercise, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return r.scanOne(r.db.QueryRow(
		ctx,
		`SELECT id, name, slug, description, muscle_group, equipment, difficulty, is_compound, is_bodyweight, is_custom, created_by, created_at
			FROM exercise WHERE id = $1;`,
		id,
	))
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.getBySlug")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("slug", slug))

	return r.scanOne(r.db.QueryRow(
		ctx,
		`SELECT id, name, slug, description, muscle_group, equipment, difficulty, is_compound, is_bodyweight, is_custom, created_by, created_at
			FROM exercise WHERE slug = $1;`,
		slug,
	))
}

func (r *Repo) scanOne(row pgx.Row) (*Exercise, error) {
	var ex Exercise
	err := row.Scan(
		&ex.ID, &ex.Name, &ex.Slug, &ex.Description, &ex.MuscleGroup, &ex.Equipment,
		&ex.Difficulty, &ex.IsCompound, &ex.IsBodyweight, &ex.IsCustom, &ex.CreatedBy, &ex.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan exercise: %w", err)
	}
	return &ex, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("muscle_group", params.MuscleGroup))
	span.SetAttributes(attribute.String("equipment", params.Equipment))
	span.SetAttributes(attribute.String("difficulty", params.Difficulty))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, slug, description, muscle_group, equipment, difficulty, is_compound, is_bodyweight, is_custom, created_by, created_at
			FROM exercise
				WHERE ($1::text = '' OR muscle_group = $1)
				AND ($2::text = '' OR equipment = $2)
				AND ($3::text = '' OR difficulty = $3)
			ORDER BY name;`,
		params.MuscleGroup, params.Equipment, params.Difficulty,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var exercises []Exercise
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(
			&ex.ID, &ex.Name, &ex.Slug, &ex.Description, &ex.MuscleGroup, &ex.Equipment,
			&ex.Difficulty, &ex.IsCompound, &ex.IsBodyweight, &ex.IsCustom, &ex.CreatedBy, &ex.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, ex)
	}

	return exercises, nil
}

func (r *Repo) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercise SET
				name = $1, slug = $2, description = $3, muscle_group = $4, equipment = $5,
				difficulty = $6, is_compound = $7, is_bodyweight = $8
			WHERE id = $9;`,
		exercise.Name, exercise.Slug, exercise.Description, exercise.MuscleGroup, exercise.Equipment,
		exercise.Difficulty, exercise.IsCompound, exercise.IsBodyweight, exercise.ID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}
