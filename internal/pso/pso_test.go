package pso

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mctPSO/internal/alloc"
	"mctPSO/internal/mct"
	"mctPSO/internal/opt"
)

func exampleInstance(t *testing.T) *alloc.Instance {
	t.Helper()
	inst, err := alloc.NewInstance(
		[]float64{1.27, 2.06, 0.16, 2.29, 4.23, 0.79, 0.72, 0.99, 7.33, 3.08, 2.12, 10.14, 0.14, 3.79, 5.79},
		[]float64{5, 5, 5, 5, 5},
	)
	require.NoError(t, err)
	return inst
}

func newSolver(t *testing.T, cfg Config, seed int64) *Solver {
	t.Helper()
	s, err := New(cfg, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	s.Log = logger
	return s
}

func TestSolveIsDeterministicForSeed(t *testing.T) {
	inst := exampleInstance(t)

	r1, err := newSolver(t, DefaultConfig(), 42).Solve(context.Background(), inst)
	require.NoError(t, err)
	r2, err := newSolver(t, DefaultConfig(), 42).Solve(context.Background(), inst)
	require.NoError(t, err)

	if diff := cmp.Diff(r1.Allocation, r2.Allocation); diff != "" {
		t.Errorf("allocation mismatch (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(r1.History, r2.History); diff != "" {
		t.Errorf("history mismatch (-first +second):\n%s", diff)
	}
	assert.Equal(t, r1.Makespan, r2.Makespan)
}

func TestSolveHistoryIsNonIncreasing(t *testing.T) {
	inst := exampleInstance(t)
	for _, repair := range []Repair{RepairNone, RepairArgmax} {
		t.Run(string(repair), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Repair = repair
			cfg.Iterations = 60

			res, err := newSolver(t, cfg, 7).Solve(context.Background(), inst)
			require.NoError(t, err)
			require.Len(t, res.History, cfg.Iterations)
			for k := 1; k < len(res.History); k++ {
				assert.LessOrEqual(t, res.History[k], res.History[k-1], "iteration %d", k)
			}
			assert.Equal(t, res.History[len(res.History)-1], res.Makespan)
			assert.Equal(t, cfg.Iterations*cfg.Particles, res.Evaluations)
		})
	}
}

func TestSolveExploresBeyondInitialSwarm(t *testing.T) {
	inst := exampleInstance(t)
	cfg := DefaultConfig()
	cfg.Iterations = 30

	// Later rounds evaluate the moved particles, so the best found after
	// round 0 must improve for at least some seeds.
	improved := 0
	for seed := int64(1); seed <= 10; seed++ {
		res, err := newSolver(t, cfg, seed).Solve(context.Background(), inst)
		require.NoError(t, err)
		if res.History[len(res.History)-1] < res.History[0] {
			improved++
		}
	}
	assert.Positive(t, improved)
}

func TestSolveMakespanMatchesAllocation(t *testing.T) {
	inst := exampleInstance(t)
	res, err := newSolver(t, DefaultConfig(), 5).Solve(context.Background(), inst)
	require.NoError(t, err)

	ms, err := alloc.Evaluate(res.Allocation, inst.Tasks, inst.Rates)
	require.NoError(t, err)
	assert.Equal(t, ms, res.Makespan)
	assert.Equal(t, inst.NumTasks(), res.Allocation.Rows())
	assert.Equal(t, inst.NumUnits(), res.Allocation.Cols())
}

func TestSolveNoSolution(t *testing.T) {
	inst := exampleInstance(t)
	for name, mutate := range map[string]func(*Config){
		"zero iterations": func(c *Config) { c.Iterations = 0 },
		"zero particles":  func(c *Config) { c.Particles = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			res, err := newSolver(t, cfg, 1).Solve(context.Background(), inst)
			assert.True(t, errors.Is(err, opt.ErrNoSolution), "got %v", err)
			assert.Nil(t, res.Allocation)
			assert.Zero(t, res.Evaluations)
		})
	}
}

func TestSolveRepairArgmaxYieldsAssignment(t *testing.T) {
	inst := exampleInstance(t)
	cfg := DefaultConfig()
	cfg.Repair = RepairArgmax

	res, err := newSolver(t, cfg, 9).Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.True(t, res.Allocation.IsAssignment())
}

func TestSolveSeedMCTIsNoWorseThanMCT(t *testing.T) {
	inst := exampleInstance(t)
	cfg := DefaultConfig()
	cfg.SeedMCT = true
	cfg.Repair = RepairArgmax

	eval, err := alloc.NewEvaluator(inst)
	require.NoError(t, err)
	mctSpan := eval.MustAssignmentMakespan(mct.Assign(inst))

	res, err := newSolver(t, cfg, 3).Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Makespan, mctSpan)
	assert.LessOrEqual(t, res.History[0], mctSpan)
}

func TestSolveSingleTaskSingleUnit(t *testing.T) {
	inst, err := alloc.NewInstance([]float64{3}, []float64{2})
	require.NoError(t, err)

	res, err := newSolver(t, DefaultConfig(), 1).Solve(context.Background(), inst)
	require.NoError(t, err)
	// An empty allocation has zero load and is the minimum.
	assert.Equal(t, 0.0, res.Makespan)
	assert.Equal(t, alloc.Allocation{{0}}, res.Allocation)
}

func TestSolveStopsOnCancelledContext(t *testing.T) {
	inst := exampleInstance(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newSolver(t, DefaultConfig(), 1).Solve(ctx, inst)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Iterations)
	assert.Nil(t, res.Allocation)
	assert.Equal(t, "context", res.Meta["stopped"])
}

func TestSolveRejectsInvalidInstance(t *testing.T) {
	s := newSolver(t, DefaultConfig(), 1)
	_, err := s.Solve(context.Background(), &alloc.Instance{Tasks: []float64{1}, Rates: []float64{0}})
	assert.True(t, errors.Is(err, alloc.ErrInvalidRate))
}

func TestNewRequiresRng(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := map[string]func(*Config){
		"negative iterations": func(c *Config) { c.Iterations = -1 },
		"negative particles":  func(c *Config) { c.Particles = -1 },
		"negative w":          func(c *Config) { c.W = -0.1 },
		"negative c1":         func(c *Config) { c.C1 = -1 },
		"negative vmax":       func(c *Config) { c.VMax = -1 },
		"unknown repair":      func(c *Config) { c.Repair = "clip" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.Particles)
	assert.Equal(t, 100, cfg.Iterations)
	assert.Equal(t, 0.7, cfg.W)
	assert.Equal(t, 1.5, cfg.C1)
	assert.Equal(t, 1.5, cfg.C2)
	assert.Equal(t, RepairNone, cfg.Repair)
	assert.False(t, math.IsNaN(cfg.VMax))
}
