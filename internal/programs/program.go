package programs

import "time"

// Program is a reusable workout plan: an ordered list of exercises with
// target prescriptions. Sessions can optionally point back at the program
// they followed.
type Program struct {
	ID              int               `json:"id"`
	UserID          int               `json:"userId"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	DurationWeeks   *int              `json:"durationWeeks,omitempty"`
	SessionsPerWeek *int              `json:"sessionsPerWeek,omitempty"`
	IsTemplate      bool              `json:"isTemplate"`
	IsPublic        bool              `json:"isPublic"`
	IsActive        bool              `json:"isActive"`
	CreatedAt       time.Time         `json:"createdAt"`
	Exercises       []ProgramExercise `json:"exercises"`
}

type ProgramExercise struct {
	ID          int    `json:"id"`
	ProgramID   int    `json:"programId"`
	ExerciseID  int    `json:"exerciseId"`
	OrderIndex  int    `json:"orderIndex"`
	TargetSets  *int   `json:"targetSets,omitempty"`
	TargetReps  string `json:"targetReps,omitempty"` // free form, e.g. "8-12" or "10"
	TargetRPE   *int   `json:"targetRpe,omitempty"`
	RestSeconds *int   `json:"restSeconds,omitempty"`
	Notes       string `json:"notes,omitempty"`
}
