package main

import (
	"context"
	"io"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mctPSO/internal/alloc"
	"mctPSO/internal/bench"
	"mctPSO/internal/pso"
)

func TestBenchDefaultsRepairPSORows(t *testing.T) {
	bf := defaultBenchFlags()
	assert.Equal(t, pso.RepairArgmax, bf.pso.Repair)

	cmd := newBenchCmd()
	flag := cmd.Flags().Lookup("pso_repair")
	require.NotNil(t, flag)
	assert.Equal(t, string(pso.RepairArgmax), flag.DefValue)

	cases, err := bench.ParsePairs("15x5", 777)
	require.NoError(t, err)
	c := cases[0]
	inst := alloc.RandomInstance(c.Tasks, c.Units, 0.1, 10, 1, 10, rand.New(rand.NewSource(c.InstanceSeed)))

	factory := newPSOFactory(bf.pso)
	for seed := int64(1000); seed < 1005; seed++ {
		res, err := factory(seed).Solve(context.Background(), inst)
		require.NoError(t, err)
		assert.True(t, res.Allocation.IsAssignment(), "seed %d", seed)
		assert.Greater(t, res.Makespan, 0.0, "seed %d", seed)
	}
}

func TestRunBenchWithDefaults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.csv")
	cmd := newBenchCmd()
	cmd.SetContext(context.Background())
	cmd.SetOut(io.Discard)
	require.NoError(t, cmd.ParseFlags([]string{
		"--pairs", "6x3", "--algos", "MCT,PSO", "--runs", "2", "--pso_iter", "20", "--out", out,
	}))
	require.NoError(t, cmd.RunE(cmd, nil))
	assert.FileExists(t, out)
}

func TestRunBenchRejectsBadPairs(t *testing.T) {
	cmd := newBenchCmd()
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.ParseFlags([]string{"--pairs", "15"}))
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка разбора --pairs")
}
