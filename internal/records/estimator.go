package records

import "fmt"

// EstimateOneRepMax estimates the heaviest single-rep lift from a
// multi-rep set using the Epley formula: weight * (1 + reps/30).
// A single-rep set is its own one-rep max and comes back unchanged.
// The result is rounded half up to two decimals and keeps the unit
// of the given weight.
//
// Pure function, also used for reporting outside the records
// pipeline.
func EstimateOneRepMax(weight Weight, reps int) (Weight, error) {
	if reps <= 0 {
		return Weight{}, fmt.Errorf("%w: reps must be at least 1, got %d", ErrInvalidInput, reps)
	}
	if !ValidUnit(weight.unit) {
		return Weight{}, fmt.Errorf("%w: unknown weight unit %q", ErrInvalidInput, weight.unit)
	}
	if reps == 1 {
		return weight, nil
	}

	weight.hundredths += divHalfUp(weight.hundredths*int64(reps), 30)
	return weight, nil
}
