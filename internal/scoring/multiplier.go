// Package scoring turns timed answers into points.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/tuimath/internal/arith"
)

// ErrDegenerateOperands reports a problem whose operand sum has no logarithm.
var ErrDegenerateOperands = errors.New("operand sum must be positive")

const (
	instantThreshold = 0.25
	timeoutThreshold = 20.0
	slowThreshold    = 10.0
	steadyThreshold  = 5.0

	instantBonus = 5.0
	slowFactor   = 0.1
	steadyFactor = 1.0

	multiplierScale = 10.0
)

// TimeMultiplier maps elapsed seconds to a reward factor.
// Boundary values belong to the branch listed first in the switch.
func TimeMultiplier(seconds float64) float64 {
	switch {
	case seconds < instantThreshold:
		return instantBonus
	case seconds > timeoutThreshold:
		return 0
	case seconds > slowThreshold:
		return slowFactor
	case seconds > steadyThreshold:
		return steadyFactor
	default:
		return 1 / seconds
	}
}

// ComplexityMultiplier scores a problem by operand size and operator weight.
func ComplexityMultiplier(p arith.Problem) (float64, error) {
	weight, err := p.Op.Weight()
	if err != nil {
		return 0, err
	}
	sum := p.A + p.B
	if sum <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrDegenerateOperands, p)
	}
	return math.Log10(float64(sum)) * weight, nil
}

// Multiplier is the combined time and complexity factor of a round.
type Multiplier struct {
	Time       float64
	Complexity float64
	Points     int
	// TimedOut is set when the time factor is zero.
	TimedOut bool
}

// FullMultiplier computes round(10 * tm * cm) for a round using the precise
// fractional elapsed time.
func FullMultiplier(r Round) (Multiplier, error) {
	return fullMultiplier(r, 0)
}

func fullMultiplier(r Round, timeout time.Duration) (Multiplier, error) {
	cm, err := ComplexityMultiplier(r.Problem)
	if err != nil {
		return Multiplier{}, err
	}
	elapsed := r.Elapsed()
	tm := TimeMultiplier(elapsed.Seconds())
	if timeout > 0 && elapsed > timeout {
		tm = 0
	}
	points := int(math.Round(multiplierScale * tm * cm))
	if points < 0 {
		points = 0
	}
	return Multiplier{
		Time:       tm,
		Complexity: cm,
		Points:     points,
		TimedOut:   tm == 0,
	}, nil
}
