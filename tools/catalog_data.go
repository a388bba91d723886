package tools

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type catalogExercise struct {
	name         string
	slug         string
	muscleGroup  string
	equipment    string
	difficulty   string
	isCompound   bool
	isBodyweight bool
}

// the standard movements every installation should know about; user
// made exercises live next to them with is_custom set
var exerciseCatalog = []catalogExercise{
	{"Back Squat", "back-squat", "legs", "barbell", "intermediate", true, false},
	{"Front Squat", "front-squat", "legs", "barbell", "advanced", true, false},
	{"Deadlift", "deadlift", "back", "barbell", "intermediate", true, false},
	{"Romanian Deadlift", "romanian-deadlift", "hamstrings", "barbell", "intermediate", true, false},
	{"Bench Press", "bench-press", "chest", "barbell", "beginner", true, false},
	{"Incline Bench Press", "incline-bench-press", "chest", "barbell", "intermediate", true, false},
	{"Overhead Press", "overhead-press", "shoulders", "barbell", "intermediate", true, false},
	{"Barbell Row", "barbell-row", "back", "barbell", "intermediate", true, false},
	{"Pull Up", "pull-up", "back", "", "intermediate", true, true},
	{"Chin Up", "chin-up", "back", "", "beginner", true, true},
	{"Dip", "dip", "chest", "", "intermediate", true, true},
	{"Push Up", "push-up", "chest", "", "beginner", true, true},
	{"Barbell Curl", "barbell-curl", "biceps", "barbell", "beginner", false, false},
	{"Lat Pulldown", "lat-pulldown", "back", "machine", "beginner", true, false},
	{"Leg Press", "leg-press", "legs", "machine", "beginner", true, false},
	{"Hip Thrust", "hip-thrust", "glutes", "barbell", "beginner", true, false},
}

// SeedExerciseCatalog inserts the standard exercise catalog into the
// given database. Safe to re-run, already present slugs are skipped.
func SeedExerciseCatalog(dsn string) error {
	fmt.Println("starting exercise catalog seed ...")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping db: %w", err)
	}

	var seeded int
	for _, exercise := range exerciseCatalog {
		res, err := db.Exec(`
			INSERT INTO exercise
				(name, slug, muscle_group, equipment, difficulty, is_compound, is_bodyweight, is_custom)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
			ON CONFLICT (slug) DO NOTHING;`,
			exercise.name, exercise.slug, exercise.muscleGroup, exercise.equipment,
			exercise.difficulty, exercise.isCompound, exercise.isBodyweight,
		)
		if err != nil {
			return fmt.Errorf("failed to insert exercise %s: %w", exercise.slug, err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get inserted rows count: %w", err)
		}
		seeded += int(inserted)
	}

	fmt.Printf("exercise catalog seeded: %d new, %d total\n", seeded, len(exerciseCatalog))
	return nil
}
