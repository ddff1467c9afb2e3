package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mctPSO/internal/pso"
)

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
seed: 42
instance:
  tasks: [2, 4]
  rates: [2, 1]
pso:
  particles: 5
  repair: argmax
`))
	require.NoError(t, err)

	expected := Default()
	expected.Seed = 42
	expected.Instance = InstanceSpec{Tasks: []float64{2, 4}, Rates: []float64{2, 1}}
	expected.PSO.Particles = 5
	expected.PSO.Repair = pso.RepairArgmax
	assert.Equal(t, expected, cfg)

	inst, err := cfg.BuildInstance()
	require.NoError(t, err)
	assert.Equal(t, 2, inst.NumTasks())
}

func TestDecodeEmptyUsesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	inst, err := cfg.BuildInstance()
	require.NoError(t, err)
	assert.Equal(t, 15, inst.NumTasks())
	assert.Equal(t, 5, inst.NumUnits())
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("pso:\n  swarm: 3\n"))
	assert.Error(t, err)
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.PSO.W = -1
	cfg.Instance = InstanceSpec{Tasks: []float64{1}, Rates: []float64{0}}

	err := cfg.Validate()
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mctpso.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\npso:\n  iterations: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 3, cfg.PSO.Iterations)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
