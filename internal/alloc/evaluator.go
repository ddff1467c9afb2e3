package alloc

import (
	"math"

	"github.com/pkg/errors"
)

// Evaluate returns the makespan of a: the largest per-unit load, where the
// load of unit j is the sum of the costs assigned to it divided by rates[j].
func Evaluate(a Allocation, tasks, rates []float64) (float64, error) {
	if len(rates) == 0 {
		return 0, errors.Wrap(ErrShapeMismatch, "at least one unit is required")
	}
	if err := checkShape(a, len(tasks), len(rates)); err != nil {
		return 0, err
	}
	if err := validateRates(rates); err != nil {
		return 0, err
	}
	loads := make([]float64, len(rates))
	return makespan(a, tasks, rates, loads), nil
}

// Evaluator computes makespans against a fixed instance and reuses its load
// buffer, so one Evaluator must not be shared between goroutines.
type Evaluator struct {
	inst  *Instance
	loads []float64
}

func NewEvaluator(inst *Instance) (*Evaluator, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{inst: inst, loads: make([]float64, inst.NumUnits())}, nil
}

func (e *Evaluator) Makespan(a Allocation) (float64, error) {
	if e == nil || e.inst == nil {
		return 0, errors.New("nil evaluator")
	}
	if err := checkShape(a, e.inst.NumTasks(), e.inst.NumUnits()); err != nil {
		return 0, err
	}
	return makespan(a, e.inst.Tasks, e.inst.Rates, e.loads), nil
}

func (e *Evaluator) MustMakespan(a Allocation) float64 {
	ms, err := e.Makespan(a)
	if err != nil {
		panic(err)
	}
	return ms
}

// Loads returns a fresh copy of the per-unit completion times of a.
func (e *Evaluator) Loads(a Allocation) ([]float64, error) {
	if _, err := e.Makespan(a); err != nil {
		return nil, err
	}
	out := make([]float64, len(e.loads))
	copy(out, e.loads)
	return out, nil
}

// AssignmentMakespan evaluates a unit index per task without building a matrix.
func (e *Evaluator) AssignmentMakespan(assign []int) (float64, error) {
	if e == nil || e.inst == nil {
		return 0, errors.New("nil evaluator")
	}
	if err := ValidateAssignment(assign, e.inst.NumTasks(), e.inst.NumUnits()); err != nil {
		return 0, err
	}
	for j := range e.loads {
		e.loads[j] = 0
	}
	for i, u := range assign {
		e.loads[u] += e.inst.Tasks[i]
	}
	return maxLoad(e.loads, e.inst.Rates), nil
}

func (e *Evaluator) MustAssignmentMakespan(assign []int) float64 {
	ms, err := e.AssignmentMakespan(assign)
	if err != nil {
		panic(err)
	}
	return ms
}

func checkShape(a Allocation, tasks, units int) error {
	if len(a) != tasks {
		return errors.Wrapf(ErrShapeMismatch, "allocation has %d rows, want %d tasks", len(a), tasks)
	}
	for i, row := range a {
		if len(row) != units {
			return errors.Wrapf(ErrShapeMismatch, "allocation row %d has %d columns, want %d units", i, len(row), units)
		}
	}
	return nil
}

func makespan(a Allocation, tasks, rates, loads []float64) float64 {
	for j := range loads {
		loads[j] = 0
	}
	for i, row := range a {
		c := tasks[i]
		for j, v := range row {
			if v != 0 {
				loads[j] += c * float64(v)
			}
		}
	}
	return maxLoad(loads, rates)
}

// maxLoad divides accumulated costs by unit rates in place and returns the
// largest resulting completion time.
func maxLoad(loads, rates []float64) float64 {
	best := math.Inf(-1)
	for j := range loads {
		loads[j] /= rates[j]
		if loads[j] > best {
			best = loads[j]
		}
	}
	return best
}
