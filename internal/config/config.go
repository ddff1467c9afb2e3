package config

import (
	"bytes"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"mctPSO/internal/alloc"
	"mctPSO/internal/pso"
)

// ExampleTasks and ExampleRates form the 15-task, 5-VM instance used when no
// instance is configured.
var (
	ExampleTasks = []float64{1.27, 2.06, 0.16, 2.29, 4.23, 0.79, 0.72, 0.99, 7.33, 3.08, 2.12, 10.14, 0.14, 3.79, 5.79}
	ExampleRates = []float64{5, 5, 5, 5, 5}
)

// File is the on-disk configuration of a solve run.
type File struct {
	Seed     int64        `yaml:"seed"`
	Instance InstanceSpec `yaml:"instance"`
	PSO      pso.Config   `yaml:"pso"`
}

type InstanceSpec struct {
	Tasks []float64 `yaml:"tasks"`
	Rates []float64 `yaml:"rates"`
}

// Default returns the PSO defaults with seed 1 and no explicit instance.
func Default() File {
	return File{
		Seed: 1,
		PSO:  pso.DefaultConfig(),
	}
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (File, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return File{}, errors.Wrap(err, "error opening configuration file")
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses YAML from r over Default. Unknown keys are rejected.
func Decode(r io.Reader) (File, error) {
	cfg := Default()
	bs, err := io.ReadAll(r)
	if err != nil {
		return File{}, errors.Wrap(err, "error reading configuration")
	}
	if len(bytes.TrimSpace(bs)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(bs))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return File{}, errors.Wrap(err, "error unmarshal yaml configuration")
		}
	}
	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// Validate reports every problem in the file at once.
func (c File) Validate() error {
	var result *multierror.Error
	if err := c.PSO.Validate(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "pso"))
	}
	if _, err := c.BuildInstance(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "instance"))
	}
	return result.ErrorOrNil()
}

// BuildInstance returns the configured instance, or the example instance
// when neither tasks nor rates are set.
func (c File) BuildInstance() (*alloc.Instance, error) {
	tasks, rates := c.Instance.Tasks, c.Instance.Rates
	if len(tasks) == 0 && len(rates) == 0 {
		tasks, rates = ExampleTasks, ExampleRates
	}
	return alloc.NewInstance(tasks, rates)
}
