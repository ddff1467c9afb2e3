package opt

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"mctPSO/internal/alloc"
)

// ErrNoSolution is returned when a run evaluated no allocation at all,
// e.g. with an empty swarm or a zero iteration budget.
var ErrNoSolution = errors.New("no solution")

type Optimizer interface {
	Solve(ctx context.Context, inst *alloc.Instance) (Result, error)
}

type Result struct {
	Allocation  alloc.Allocation
	Makespan    float64
	Evaluations int
	Iterations  int
	Duration    time.Duration
	// History[k] is the best makespan known after iteration k.
	History []float64
	Meta    map[string]any
}

// FromAssignment builds a Result for solvers that work on a unit index per task.
func FromAssignment(assign []int, units int, makespan float64, evals, iters int, meta map[string]any) Result {
	a, err := alloc.FromAssignment(assign, units)
	if err != nil {
		panic(err)
	}
	return Result{
		Allocation:  a,
		Makespan:    makespan,
		Evaluations: evals,
		Iterations:  iters,
		Meta:        meta,
	}
}
