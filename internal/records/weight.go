package records

import (
	"fmt"
	"math"
)

// Unit is a weight unit. A set keeps the unit it was logged with;
// values get converted only when two weights have to be compared or
// shown in another unit.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lbs"
)

// kilograms to pounds ratio, scaled by 1e8 to keep conversion in
// integer math
const (
	kgToLbsScaled = 220462262
	ratioScale    = 100000000
)

func ValidUnit(u Unit) bool {
	return u == Kilograms || u == Pounds
}

// Weight is a fixed-point weight amount, precise to two decimals
// (stored as hundredths, e.g. 10050 for 100.50). The magnitude and
// unit the value was created with are always kept; To only changes
// the unit the value is read in, and every read converts straight
// from the original magnitude. Converting back and forth between
// units never accumulates rounding error.
type Weight struct {
	hundredths int64 // original magnitude, in hundredths of unit
	unit       Unit  // unit the value was created with
	display    Unit  // unit the value is read in
}

// NewWeight creates a weight of the given magnitude, expressed in
// hundredths of the unit.
func NewWeight(hundredths int64, unit Unit) (Weight, error) {
	if !ValidUnit(unit) {
		return Weight{}, fmt.Errorf("%w: unknown weight unit %q", ErrInvalidInput, unit)
	}
	if hundredths < 0 {
		return Weight{}, fmt.Errorf("%w: negative weight", ErrInvalidInput)
	}
	return Weight{hundredths: hundredths, unit: unit, display: unit}, nil
}

// WeightFromFloat creates a weight from a decimal magnitude like
// 100.5, rounding anything beyond two decimals half up.
func WeightFromFloat(magnitude float64, unit Unit) (Weight, error) {
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return Weight{}, fmt.Errorf("%w: weight magnitude is not a number", ErrInvalidInput)
	}
	return NewWeight(int64(math.Round(magnitude*100)), unit)
}

// Unit returns the unit the value is currently read in.
func (w Weight) Unit() Unit {
	return w.display
}

// Hundredths returns the magnitude in hundredths of Unit().
func (w Weight) Hundredths() int64 {
	return convertHundredths(w.hundredths, w.unit, w.display)
}

// Float returns the magnitude in Unit() as a decimal, e.g. 100.5.
func (w Weight) Float() float64 {
	return float64(w.Hundredths()) / 100
}

// To returns the same weight read in the requested unit.
func (w Weight) To(unit Unit) (Weight, error) {
	if !ValidUnit(unit) {
		return Weight{}, fmt.Errorf("%w: unknown weight unit %q", ErrInvalidInput, unit)
	}
	w.display = unit
	return w, nil
}

// Cmp compares two weights in the receiver's unit: -1 when w is
// lighter than other, 0 on equality, +1 when heavier. Raw magnitudes
// of different units are never compared.
func (w Weight) Cmp(other Weight) int {
	a := w.Hundredths()
	b := convertHundredths(other.hundredths, other.unit, w.display)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Times scales the weight, e.g. to get the volume of a multi-rep set.
func (w Weight) Times(n int64) Weight {
	w.hundredths *= n
	return w
}

func (w Weight) String() string {
	h := w.Hundredths()
	return fmt.Sprintf("%d.%02d %s", h/100, h%100, w.display)
}

func convertHundredths(hundredths int64, from, to Unit) int64 {
	if from == to {
		return hundredths
	}
	if from == Kilograms && to == Pounds {
		return divHalfUp(hundredths*kgToLbsScaled, ratioScale)
	}
	return divHalfUp(hundredths*ratioScale, kgToLbsScaled)
}

// divHalfUp divides a by b rounding half up; both must be non-negative.
func divHalfUp(a, b int64) int64 {
	return (a + b/2) / b
}
