package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            SERIAL PRIMARY KEY,
    email         VARCHAR NOT NULL UNIQUE,
    username      VARCHAR NOT NULL UNIQUE CHECK (length(username) >= 3),
    password_hash VARCHAR NOT NULL,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    is_deleted    BOOLEAN NOT NULL DEFAULT FALSE,
    deleted_at    TIMESTAMPTZ,
    last_login_at TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_profile (
    user_id               INTEGER PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
    first_name            VARCHAR NOT NULL DEFAULT '',
    last_name             VARCHAR NOT NULL DEFAULT '',
    date_of_birth         DATE,
    height_cm             INTEGER,
    weight_kg             NUMERIC(5, 2),
    preferred_weight_unit VARCHAR NOT NULL DEFAULT 'kg' CHECK (preferred_weight_unit IN ('kg', 'lbs')),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS exercise (
    id            SERIAL PRIMARY KEY,
    name          VARCHAR NOT NULL,
    slug          VARCHAR NOT NULL UNIQUE,
    description   TEXT NOT NULL DEFAULT '',
    muscle_group  VARCHAR NOT NULL,
    equipment     VARCHAR NOT NULL DEFAULT '',
    difficulty    VARCHAR NOT NULL DEFAULT 'beginner' CHECK (difficulty IN ('beginner', 'intermediate', 'advanced')),
    is_compound   BOOLEAN NOT NULL DEFAULT TRUE,
    is_bodyweight BOOLEAN NOT NULL DEFAULT FALSE,
    is_custom     BOOLEAN NOT NULL DEFAULT FALSE,
    created_by    INTEGER REFERENCES users (id),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_exercise_muscle_group ON exercise (muscle_group);

CREATE TABLE IF NOT EXISTS workout_program (
    id                SERIAL PRIMARY KEY,
    user_id           INTEGER NOT NULL REFERENCES users (id),
    name              VARCHAR NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    duration_weeks    INTEGER,
    sessions_per_week INTEGER,
    is_template       BOOLEAN NOT NULL DEFAULT FALSE,
    is_public         BOOLEAN NOT NULL DEFAULT FALSE,
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_workout_program_user ON workout_program (user_id);

CREATE TABLE IF NOT EXISTS program_exercise (
    id           SERIAL PRIMARY KEY,
    program_id   INTEGER NOT NULL REFERENCES workout_program (id) ON DELETE CASCADE,
    exercise_id  INTEGER NOT NULL REFERENCES exercise (id),
    order_index  INTEGER NOT NULL,
    target_sets  INTEGER,
    target_reps  VARCHAR,
    target_rpe   INTEGER CHECK (target_rpe IS NULL OR (target_rpe >= 1 AND target_rpe <= 10)),
    rest_seconds INTEGER,
    notes        TEXT NOT NULL DEFAULT '',
    UNIQUE (program_id, exercise_id, order_index)
);

CREATE INDEX IF NOT EXISTS ix_program_exercise_order ON program_exercise (program_id, order_index);

CREATE TABLE IF NOT EXISTS workout_session (
    id          SERIAL PRIMARY KEY,
    user_id     INTEGER NOT NULL REFERENCES users (id),
    program_id  INTEGER REFERENCES workout_program (id),
    name        VARCHAR NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ,
    rpe         INTEGER CHECK (rpe IS NULL OR (rpe >= 1 AND rpe <= 10)),
    notes       TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_workout_session_user ON workout_session (user_id, started_at);

CREATE TABLE IF NOT EXISTS workout_set (
    id                SERIAL PRIMARY KEY,
    session_id        INTEGER NOT NULL REFERENCES workout_session (id),
    exercise_id       INTEGER NOT NULL REFERENCES exercise (id),
    set_number        INTEGER NOT NULL,
    weight_hundredths BIGINT NOT NULL CHECK (weight_hundredths >= 0),
    weight_unit       VARCHAR NOT NULL CHECK (weight_unit IN ('kg', 'lbs')),
    reps              INTEGER NOT NULL CHECK (reps >= 0 AND reps <= 1000),
    rpe               INTEGER CHECK (rpe IS NULL OR (rpe >= 1 AND rpe <= 10)),
    is_warmup         BOOLEAN NOT NULL DEFAULT FALSE,
    is_dropset        BOOLEAN NOT NULL DEFAULT FALSE,
    is_failure        BOOLEAN NOT NULL DEFAULT FALSE,
    notes             VARCHAR NOT NULL DEFAULT '',
    achieved_at       TIMESTAMPTZ NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_workout_set_session ON workout_set (session_id, exercise_id, set_number);

CREATE TABLE IF NOT EXISTS personal_record (
    id                SERIAL PRIMARY KEY,
    user_id           INTEGER NOT NULL REFERENCES users (id),
    exercise_id       INTEGER NOT NULL REFERENCES exercise (id),
    set_id            INTEGER NOT NULL REFERENCES workout_set (id),
    category          VARCHAR NOT NULL CHECK (category IN ('1rm', 'max_weight', 'max_reps', 'max_volume')),
    weight_hundredths BIGINT NOT NULL CHECK (weight_hundredths >= 0),
    weight_unit       VARCHAR NOT NULL CHECK (weight_unit IN ('kg', 'lbs')),
    reps              INTEGER NOT NULL,
    volume_hundredths BIGINT NOT NULL,
    one_rm_hundredths BIGINT,
    achieved_at       TIMESTAMPTZ NOT NULL,
    superseded_at     TIMESTAMPTZ,
    is_current        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_personal_record_current
    ON personal_record (user_id, exercise_id, category) WHERE is_current;
CREATE UNIQUE INDEX IF NOT EXISTS uq_personal_record_origin
    ON personal_record (set_id, category);
CREATE INDEX IF NOT EXISTS ix_personal_record_lineage
    ON personal_record (user_id, exercise_id, category, achieved_at);

CREATE TABLE IF NOT EXISTS record_outbox (
    id            BIGSERIAL PRIMARY KEY,
    event_type    TEXT NOT NULL,
    partition_key TEXT NOT NULL,
    payload       JSONB NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    claimed_at    TIMESTAMPTZ,
    published_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS ix_record_outbox_unpublished ON record_outbox (id) WHERE published_at IS NULL;
`

// Migrate ensures all liftlog tables exist. Called once at startup,
// before the server starts accepting requests.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
