package records

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrInvalidInput marks a set rejected before evaluation: reps
	// out of range, negative weight or an unknown unit.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReplaceConflict is returned by the record store when the
	// current record of a lineage changed under a conditional
	// replace. The supersession manager retries on it.
	ErrReplaceConflict = errors.New("current record changed")

	// ErrRecordUpdateFailed is returned when a category update kept
	// conflicting after all retry attempts.
	ErrRecordUpdateFailed = errors.New("record update failed")
)

// Set is a finalized, validated logged set entering the records
// pipeline: who lifted what, how many times, and when. Immutable
// once created.
type Set struct {
	ID         int
	UserID     int
	ExerciseID int
	Weight     Weight
	Reps       int
	AchievedAt time.Time
}

// Volume is the total load moved by the set: weight times reps.
func (s Set) Volume() Weight {
	return s.Weight.Times(int64(s.Reps))
}

// PersonalRecord is one entry in a (user, exercise, category)
// lineage. At most one entry per lineage is current at any moment;
// superseded entries stay around with SupersededAt set, so the full
// record history of an exercise is preserved. Weight, reps and the
// derived values are snapshots of the originating set taken at
// evaluation time and never change afterwards.
type PersonalRecord struct {
	ID           int
	UserID       int
	ExerciseID   int
	SetID        int
	Category     Category
	Weight       Weight
	Reps         int
	Volume       Weight
	OneRepMax    Weight
	AchievedAt   time.Time
	SupersededAt *time.Time
	IsCurrent    bool
	CreatedAt    time.Time
}

func (pr PersonalRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           int        `json:"id"`
		UserID       int        `json:"userId"`
		ExerciseID   int        `json:"exerciseId"`
		SetID        int        `json:"setId"`
		Category     Category   `json:"category"`
		Weight       float64    `json:"weight"`
		WeightUnit   Unit       `json:"weightUnit"`
		Reps         int        `json:"reps"`
		Volume       float64    `json:"volume"`
		OneRepMax    float64    `json:"oneRepMax"`
		AchievedAt   time.Time  `json:"achievedAt"`
		SupersededAt *time.Time `json:"supersededAt,omitempty"`
		IsCurrent    bool       `json:"isCurrent"`
	}{
		ID:           pr.ID,
		UserID:       pr.UserID,
		ExerciseID:   pr.ExerciseID,
		SetID:        pr.SetID,
		Category:     pr.Category,
		Weight:       pr.Weight.Float(),
		WeightUnit:   pr.Weight.Unit(),
		Reps:         pr.Reps,
		Volume:       pr.Volume.Float(),
		OneRepMax:    pr.OneRepMax.Float(),
		AchievedAt:   pr.AchievedAt,
		SupersededAt: pr.SupersededAt,
		IsCurrent:    pr.IsCurrent,
	})
}

// CategoryResult is the outcome of evaluating one category: the new
// record to install and the current record it would supersede, nil
// when the lineage had none.
type CategoryResult struct {
	Category   Category        `json:"category"`
	NewRecord  PersonalRecord  `json:"newRecord"`
	Superseded *PersonalRecord `json:"superseded,omitempty"`
}
