package records

import "fmt"

// Category is a personal record category. Every logged set competes
// in all of them at once, each with its own comparison key.
type Category string

const (
	CategoryOneRepMax Category = "1rm"
	CategoryMaxWeight Category = "max_weight"
	CategoryMaxReps   Category = "max_reps"
	CategoryMaxVolume Category = "max_volume"
)

// AllCategories lists every category a set is evaluated against, in
// a stable order.
var AllCategories = []Category{
	CategoryMaxWeight,
	CategoryMaxReps,
	CategoryMaxVolume,
	CategoryOneRepMax,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryOneRepMax, CategoryMaxWeight, CategoryMaxReps, CategoryMaxVolume:
		return true
	}
	return false
}

// Beats reports whether the candidate set takes over this category's
// record. A nil current record means the lineage is empty and the
// candidate establishes the baseline. Ties never supersede: whoever
// achieved the value first keeps the record, so exact repeats do not
// thrash the current pointer. Weights are compared in the candidate's
// unit.
func (c Category) Beats(set Set, current *PersonalRecord) (bool, error) {
	if set.Reps <= 0 {
		return false, fmt.Errorf("%w: reps must be at least 1, got %d", ErrInvalidInput, set.Reps)
	}
	if !ValidUnit(set.Weight.Unit()) {
		return false, fmt.Errorf("%w: unknown weight unit %q", ErrInvalidInput, set.Weight.Unit())
	}

	if current == nil {
		return true, nil
	}

	switch c {
	case CategoryMaxWeight:
		return set.Weight.Cmp(current.Weight) > 0, nil
	case CategoryMaxReps:
		return set.Reps > current.Reps, nil
	case CategoryMaxVolume:
		return set.Volume().Cmp(current.Volume) > 0, nil
	case CategoryOneRepMax:
		oneRM, err := EstimateOneRepMax(set.Weight, set.Reps)
		if err != nil {
			return false, err
		}
		return oneRM.Cmp(current.OneRepMax) > 0, nil
	default:
		return false, fmt.Errorf("%w: unknown record category %q", ErrInvalidInput, c)
	}
}
