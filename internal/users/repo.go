package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Create inserts the account together with its empty profile row, in one
// transaction. Duplicate email / username come back as ErrEmailTaken /
// ErrUsernameTaken.
func (r *Repo) Create(ctx context.Context, email, username, passwordHash string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
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

	user := &User{
		Email:    email,
		Username: username,
		IsActive: true,
	}
	err = tx.QueryRow(
		ctx,
		`INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at;`,
		email, username, passwordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, takenOr(err)
	}

	if _, err = tx.Exec(
		ctx,
		`INSERT INTO user_profile (user_id) VALUES ($1);`,
		user.ID,
	); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))

	return user, nil
}

// takenOr maps a unique violation on the users table to the matching
// sentinel, so the handler can tell the caller which field clashed.
func takenOr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrEmailTaken
	case "users_username_key":
		return ErrUsernameTaken
	}
	return err
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.scanOne(r.db.QueryRow(
		ctx,
		`SELECT id, email, username, password_hash, is_active, last_login_at, created_at
			FROM users WHERE email = $1 AND NOT is_deleted;`,
		email,
	))
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	return r.scanOne(r.db.QueryRow(
		ctx,
		`SELECT id, email, username, password_hash, is_active, last_login_at, created_at
			FROM users WHERE id = $1 AND NOT is_deleted;`,
		id,
	))
}

func (r *Repo) scanOne(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.IsActive, &user.LastLoginAt, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (r *Repo) UpdateLastLogin(ctx context.Context, id int, at time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.updateLastLogin")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET last_login_at = $1 WHERE id = $2 AND NOT is_deleted;`,
		at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete soft deletes the account. The row stays so logged workouts and
// records keep their owner, but the user can no longer log in and the
// email / username can be told apart from active ones by is_deleted.
func (r *Repo) Delete(ctx context.Context, id int, at time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET is_deleted = TRUE, deleted_at = $1, is_active = FALSE WHERE id = $2 AND NOT is_deleted;`,
		at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) GetProfile(ctx context.Context, userID int) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var profile Profile
	err = r.db.QueryRow(
		ctx,
		`SELECT user_id, first_name, last_name, date_of_birth, height_cm, weight_kg, preferred_weight_unit, updated_at
			FROM user_profile WHERE user_id = $1;`,
		userID,
	).Scan(
		&profile.UserID, &profile.FirstName, &profile.LastName, &profile.DateOfBirth,
		&profile.HeightCm, &profile.WeightKg, &profile.PreferredWeightUnit, &profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &profile, nil
}

func (r *Repo) UpdateProfile(ctx context.Context, profile Profile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", profile.UserID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE user_profile SET
				first_name = $1, last_name = $2, date_of_birth = $3, height_cm = $4,
				weight_kg = $5, preferred_weight_unit = $6, updated_at = now()
			WHERE user_id = $7;`,
		profile.FirstName, profile.LastName, profile.DateOfBirth, profile.HeightCm,
		profile.WeightKg, profile.PreferredWeightUnit, profile.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
