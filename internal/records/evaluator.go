package records

import "fmt"

// Evaluate runs the candidate set against the caller-supplied
// current-record snapshot, at most one entry per category. For every
// category the candidate wins, the result carries the fully
// materialized new record plus the snapshot record it supersedes.
// Performs no writes, so it can be tested against arbitrary
// snapshots; installing the results is the supersession manager's
// job. A set that breaks no record returns an empty result, which is
// the common case and costs nothing beyond the comparisons.
func Evaluate(set Set, current map[Category]*PersonalRecord) ([]CategoryResult, error) {
	if set.Reps <= 0 {
		return nil, fmt.Errorf("%w: reps must be at least 1, got %d", ErrInvalidInput, set.Reps)
	}

	oneRM, err := EstimateOneRepMax(set.Weight, set.Reps)
	if err != nil {
		return nil, err
	}

	var results []CategoryResult
	for _, category := range AllCategories {
		currentRecord := current[category]
		wins, err := category.Beats(set, currentRecord)
		if err != nil {
			return nil, err
		}
		if !wins {
			continue
		}

		results = append(results, CategoryResult{
			Category: category,
			NewRecord: PersonalRecord{
				UserID:     set.UserID,
				ExerciseID: set.ExerciseID,
				SetID:      set.ID,
				Category:   category,
				Weight:     set.Weight,
				Reps:       set.Reps,
				Volume:     set.Volume(),
				OneRepMax:  oneRM,
				AchievedAt: set.AchievedAt,
				IsCurrent:  true,
			},
			Superseded: currentRecord,
		})
	}

	return results, nil
}
