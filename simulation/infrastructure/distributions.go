package infrastructure

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"bizsim/simulation/domain"
)

type ConstantDelay struct {
	Value time.Duration
}

func (c ConstantDelay) Draw() time.Duration {
	return c.Value
}

type UniformDelay struct {
	Min, Max time.Duration
	rnd      *rand.Rand
}

func NewUniformDelay(min time.Duration, max time.Duration, rnd *rand.Rand) *UniformDelay {
	return &UniformDelay{Min: min, Max: max, rnd: rnd}
}

func (u *UniformDelay) Draw() time.Duration {
	if u.Max <= u.Min {
		return u.Min
	}
	return u.Min + time.Duration(u.rnd.Int63n(int64(u.Max-u.Min)+1))
}

type ExponentialDelay struct {
	Mean time.Duration
	rnd  *rand.Rand
}

func NewExponentialDelay(mean time.Duration, rnd *rand.Rand) *ExponentialDelay {
	return &ExponentialDelay{Mean: mean, rnd: rnd}
}

func (e *ExponentialDelay) Draw() time.Duration {
	return time.Duration(math.Round(e.rnd.ExpFloat64() * float64(e.Mean)))
}

type TriangularDelay struct {
	Min, Mode, Max time.Duration
	rnd            *rand.Rand
}

func NewTriangularDelay(min time.Duration, mode time.Duration, max time.Duration, rnd *rand.Rand) *TriangularDelay {
	return &TriangularDelay{Min: min, Mode: mode, Max: max, rnd: rnd}
}

func (t *TriangularDelay) Draw() time.Duration {
	a, c, b := float64(t.Min), float64(t.Mode), float64(t.Max)
	if b <= a {
		return t.Min
	}
	u := t.rnd.Float64()
	if u < (c-a)/(b-a) {
		return time.Duration(a + math.Sqrt(u*(b-a)*(c-a)))
	}
	return time.Duration(b - math.Sqrt((1-u)*(b-a)*(b-c)))
}

type DelayParams struct {
	Kind string        `yaml:"kind"`
	Min  time.Duration `yaml:"min"`
	Mode time.Duration `yaml:"mode"`
	Max  time.Duration `yaml:"max"`
	Mean time.Duration `yaml:"mean"`
}

// IsRecurring reports whether the distribution can pace a repeating event,
// that is whether draws can never pile up at a single instant.
func (p DelayParams) IsRecurring() bool {
	switch p.Kind {
	case "", "constant", "exponential":
		return p.Mean > 0
	case "uniform", "triangular":
		return p.Min > 0
	default:
		return false
	}
}

func BuildDelayDistribution(params DelayParams, rnd *rand.Rand) (domain.DelayDistribution, error) {
	switch params.Kind {
	case "", "constant":
		return ConstantDelay{Value: params.Mean}, nil
	case "uniform":
		return NewUniformDelay(params.Min, params.Max, rnd), nil
	case "exponential":
		return NewExponentialDelay(params.Mean, rnd), nil
	case "triangular":
		return NewTriangularDelay(params.Min, params.Mode, params.Max, rnd), nil
	default:
		return nil, fmt.Errorf("unknown delay distribution '%v'", params.Kind)
	}
}
