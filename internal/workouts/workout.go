package workouts

import (
	"encoding/json"
	"time"

	"github.com/2beens/liftlog/internal/records"
)

// Session is one gym visit: a named container for the sets logged
// during it, optionally following a program. Open until finished.
type Session struct {
	ID         int        `json:"id"`
	UserID     int        `json:"userId"`
	ProgramID  *int       `json:"programId,omitempty"`
	Name       string     `json:"name"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	RPE        *int       `json:"rpe,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Set is one logged set of an exercise within a session. The weight
// keeps the unit it was logged with.
type Set struct {
	ID         int
	SessionID  int
	ExerciseID int
	SetNumber  int
	Weight     records.Weight
	Reps       int
	RPE        *int
	IsWarmup   bool
	IsDropset  bool
	IsFailure  bool
	Notes      string
	AchievedAt time.Time
	CreatedAt  time.Time
}

// setJson carries Set over the wire, with the weight value split
// into magnitude and unit.
type setJson struct {
	ID         int          `json:"id"`
	SessionID  int          `json:"sessionId"`
	ExerciseID int          `json:"exerciseId"`
	SetNumber  int          `json:"setNumber"`
	Weight     float64      `json:"weight"`
	WeightUnit records.Unit `json:"weightUnit"`
	Reps       int          `json:"reps"`
	RPE        *int         `json:"rpe,omitempty"`
	IsWarmup   bool         `json:"isWarmup"`
	IsDropset  bool         `json:"isDropset"`
	IsFailure  bool         `json:"isFailure"`
	Notes      string       `json:"notes,omitempty"`
	AchievedAt time.Time    `json:"achievedAt"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(setJson{
		ID:         s.ID,
		SessionID:  s.SessionID,
		ExerciseID: s.ExerciseID,
		SetNumber:  s.SetNumber,
		Weight:     s.Weight.Float(),
		WeightUnit: s.Weight.Unit(),
		Reps:       s.Reps,
		RPE:        s.RPE,
		IsWarmup:   s.IsWarmup,
		IsDropset:  s.IsDropset,
		IsFailure:  s.IsFailure,
		Notes:      s.Notes,
		AchievedAt: s.AchievedAt,
		CreatedAt:  s.CreatedAt,
	})
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var sj setJson
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}

	// bodyweight sets come without a weight or unit
	if sj.WeightUnit == "" {
		sj.WeightUnit = records.Kilograms
	}
	weight, err := records.WeightFromFloat(sj.Weight, sj.WeightUnit)
	if err != nil {
		return err
	}

	*s = Set{
		ID:         sj.ID,
		SessionID:  sj.SessionID,
		ExerciseID: sj.ExerciseID,
		SetNumber:  sj.SetNumber,
		Weight:     weight,
		Reps:       sj.Reps,
		RPE:        sj.RPE,
		IsWarmup:   sj.IsWarmup,
		IsDropset:  sj.IsDropset,
		IsFailure:  sj.IsFailure,
		Notes:      sj.Notes,
		AchievedAt: sj.AchievedAt,
		CreatedAt:  sj.CreatedAt,
	}
	return nil
}
