package aco

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mctPSO/internal/alloc"
)

func TestSolve(t *testing.T) {
	inst := alloc.RandomInstance(12, 3, 0.5, 10, 1, 5, rand.New(rand.NewSource(31)))
	cfg := DefaultConfig()
	cfg.Iterations = 15
	cfg.Ants = 8

	s, err := New(cfg, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)

	require.True(t, res.Allocation.IsAssignment())
	ms, err := alloc.Evaluate(res.Allocation, inst.Tasks, inst.Rates)
	require.NoError(t, err)
	assert.InDelta(t, ms, res.Makespan, 1e-9)
	assert.Equal(t, 15*8, res.Evaluations)

	require.Len(t, res.History, 15)
	for k := 1; k < len(res.History); k++ {
		assert.LessOrEqual(t, res.History[k], res.History[k-1], "iteration %d", k)
	}
	assert.Equal(t, res.Makespan, res.History[len(res.History)-1])
}

func TestConstructAssignmentPrefersStrongPheromone(t *testing.T) {
	inst, err := alloc.NewInstance([]float64{1, 1, 1}, []float64{1, 1})
	require.NoError(t, err)

	// All pheromone on unit 1; alpha large enough to make unit 0 negligible.
	tau := []float64{1e-12, 1, 1e-12, 1, 1e-12, 1}
	out := make([]int, 3)
	constructAssignment(inst, tau, 4, 0, rand.New(rand.NewSource(1)), out, make([]float64, 2), make([]float64, 2))
	assert.Equal(t, []int{1, 1, 1}, out)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Rho = 1
	assert.Error(t, cfg.Validate())
}
