package exercises

import (
	"strings"
	"time"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

func ValidDifficulty(d string) bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

// Exercise is a catalog entry the sets and records point at. Seeded entries
// belong to nobody, custom ones remember who added them.
type Exercise struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	MuscleGroup  string    `json:"muscleGroup"`
	Equipment    string    `json:"equipment,omitempty"`
	Difficulty   string    `json:"difficulty"`
	IsCompound   bool      `json:"isCompound"`
	IsBodyweight bool      `json:"isBodyweight"`
	IsCustom     bool      `json:"isCustom"`
	CreatedBy    *int      `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Slugify turns an exercise name into its url safe slug,
// e.g. "Barbell Bench Press" -> "barbell-bench-press".
func Slugify(name string) string {
	var b strings.Builder
	prevDash := true // no leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case !prevDash:
			b.WriteRune('-')
			prevDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
