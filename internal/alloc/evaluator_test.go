package alloc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		a        Allocation
		tasks    []float64
		rates    []float64
		expected float64
	}{
		{
			name:     "two tasks on two units",
			a:        Allocation{{1, 0}, {0, 1}},
			tasks:    []float64{2, 4},
			rates:    []float64{2, 1},
			expected: 4,
		},
		{
			name:     "both tasks on the fast unit",
			a:        Allocation{{1, 0}, {1, 0}},
			tasks:    []float64{2, 4},
			rates:    []float64{2, 1},
			expected: 3,
		},
		{
			name:     "task assigned twice counts on both units",
			a:        Allocation{{1, 1}, {0, 0}},
			tasks:    []float64{2, 4},
			rates:    []float64{2, 1},
			expected: 2,
		},
		{
			name:     "single task single unit",
			a:        Allocation{{1}},
			tasks:    []float64{3},
			rates:    []float64{2},
			expected: 1.5,
		},
		{
			name:     "empty unit has zero load",
			a:        Allocation{{0}},
			tasks:    []float64{3},
			rates:    []float64{2},
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.a, tc.tasks, tc.rates)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluatorLoads(t *testing.T) {
	inst, err := NewInstance([]float64{2, 4}, []float64{2, 1})
	require.NoError(t, err)
	eval, err := NewEvaluator(inst)
	require.NoError(t, err)

	loads, err := eval.Loads(Allocation{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4}, loads)

	ms, err := eval.Makespan(Allocation{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, ms)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name  string
		a     Allocation
		tasks []float64
		rates []float64
		want  error
	}{
		{"too few rows", Allocation{{1, 0}}, []float64{1, 2}, []float64{1, 1}, ErrShapeMismatch},
		{"too many rows", Allocation{{1}, {1}}, []float64{1}, []float64{1}, ErrShapeMismatch},
		{"short row", Allocation{{1, 0}, {1}}, []float64{1, 2}, []float64{1, 1}, ErrShapeMismatch},
		{"no units", Allocation{{}}, []float64{1}, nil, ErrShapeMismatch},
		{"zero rate", Allocation{{1}}, []float64{1}, []float64{0}, ErrInvalidRate},
		{"negative rate", Allocation{{1}}, []float64{1}, []float64{-2}, ErrInvalidRate},
		{"NaN rate", Allocation{{1}}, []float64{1}, []float64{math.NaN()}, ErrInvalidRate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.a, tc.tasks, tc.rates)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestEvaluateRelabelInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inst := RandomInstance(9, 4, 0.5, 8, 1, 5, rng)

	a := NewAllocation(9, 4)
	for i := range a {
		for j := range a[i] {
			a[i][j] = rng.Intn(2)
		}
	}
	base, err := Evaluate(a, inst.Tasks, inst.Rates)
	require.NoError(t, err)

	taskPerm := rng.Perm(9)
	unitPerm := rng.Perm(4)

	tasks := make([]float64, 9)
	rates := make([]float64, 4)
	b := NewAllocation(9, 4)
	for i, pi := range taskPerm {
		tasks[i] = inst.Tasks[pi]
		for j, pj := range unitPerm {
			b[i][j] = a[pi][pj]
		}
	}
	for j, pj := range unitPerm {
		rates[j] = inst.Rates[pj]
	}

	got, err := Evaluate(b, tasks, rates)
	require.NoError(t, err)
	assert.InDelta(t, base, got, 1e-9)
}

func TestAssignmentMakespan(t *testing.T) {
	inst, err := NewInstance([]float64{2, 4, 1}, []float64{2, 1})
	require.NoError(t, err)
	eval, err := NewEvaluator(inst)
	require.NoError(t, err)

	ms, err := eval.AssignmentMakespan([]int{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 4.0, ms)

	a, err := FromAssignment([]int{0, 1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, ms, eval.MustMakespan(a))

	_, err = eval.AssignmentMakespan([]int{0, 2, 0})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = eval.AssignmentMakespan([]int{0, 1})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestInstanceValidate(t *testing.T) {
	_, err := NewInstance([]float64{1, 0}, []float64{1})
	assert.True(t, errors.Is(err, ErrInvalidCost))

	_, err = NewInstance([]float64{1}, []float64{1, math.Inf(1)})
	assert.True(t, errors.Is(err, ErrInvalidRate))

	_, err = NewInstance(nil, []float64{1})
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	inst, err := NewInstance([]float64{1, 2, 3}, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, inst.NumTasks())
	assert.Equal(t, 2, inst.NumUnits())
}

func TestRandomInstanceIsSeeded(t *testing.T) {
	a := RandomInstance(5, 3, 1, 2, 1, 2, rand.New(rand.NewSource(11)))
	b := RandomInstance(5, 3, 1, 2, 1, 2, rand.New(rand.NewSource(11)))
	assert.Equal(t, a, b)
	for _, c := range a.Tasks {
		assert.True(t, c >= 1 && c < 2)
	}
}
