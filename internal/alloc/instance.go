package alloc

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

var (
	// ErrShapeMismatch is returned when an allocation does not match the
	// task/unit dimensions it is evaluated against.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidRate is returned for a non-positive or non-finite unit rate.
	ErrInvalidRate = errors.New("invalid unit rate")
	// ErrInvalidCost is returned for a non-positive or non-finite task cost.
	ErrInvalidCost = errors.New("invalid task cost")
)

// Instance is one allocation problem: Tasks[i] is the cost of task i and
// Rates[j] the processing rate of unit j. Both are read-only during a run.
type Instance struct {
	Tasks []float64
	Rates []float64
}

func NewInstance(tasks, rates []float64) (*Instance, error) {
	inst := &Instance{Tasks: tasks, Rates: rates}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if len(inst.Tasks) == 0 {
		return errors.Wrap(ErrShapeMismatch, "at least one task is required")
	}
	if len(inst.Rates) == 0 {
		return errors.Wrap(ErrShapeMismatch, "at least one unit is required")
	}
	for i, c := range inst.Tasks {
		if !(c > 0) || math.IsInf(c, 0) {
			return errors.Wrapf(ErrInvalidCost, "tasks[%d] must be > 0 (got %v)", i, c)
		}
	}
	return validateRates(inst.Rates)
}

func (inst *Instance) NumTasks() int { return len(inst.Tasks) }

func (inst *Instance) NumUnits() int { return len(inst.Rates) }

func validateRates(rates []float64) error {
	for j, r := range rates {
		if !(r > 0) || math.IsInf(r, 0) {
			return errors.Wrapf(ErrInvalidRate, "rates[%d] must be > 0 (got %v)", j, r)
		}
	}
	return nil
}

// RandomInstance draws task costs uniformly from [minCost, maxCost) and unit
// rates uniformly from [minRate, maxRate).
func RandomInstance(tasks, units int, minCost, maxCost, minRate, maxRate float64, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if minCost <= 0 || maxCost < minCost || minRate <= 0 || maxRate < minRate {
		panic("invalid cost or rate bounds")
	}
	tc := make([]float64, tasks)
	for i := range tc {
		tc[i] = minCost + rng.Float64()*(maxCost-minCost)
	}
	vr := make([]float64, units)
	for j := range vr {
		vr[j] = minRate + rng.Float64()*(maxRate-minRate)
	}
	inst, err := NewInstance(tc, vr)
	if err != nil {
		panic(err)
	}
	return inst
}
