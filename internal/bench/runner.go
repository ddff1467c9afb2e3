package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mctPSO/internal/alloc"
	"mctPSO/internal/metrics"
	"mctPSO/internal/opt"
)

// Границы случайных экземпляров
const (
	minTaskCost = 0.1
	maxTaskCost = 10.0
	minUnitRate = 1.0
	maxUnitRate = 10.0
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Optimizer
}

type Case struct {
	Tasks        int
	Units        int
	InstanceSeed int64
}

func (c Case) Name() string { return fmt.Sprintf("%dx%d", c.Tasks, c.Units) }

type Record struct {
	ID    string
	Algo  string
	Tasks int
	Units int
	Runs  int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest float64
	MakespanMean float64
	MakespanStd  float64
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout

	Metrics *metrics.Recorder   // optional
	Log     logrus.FieldLogger // optional
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	id := uuid.NewString()
	log = log.WithFields(logrus.Fields{"run_id": id, "algo": algo.Name, "case": c.Name()})

	instRng := randForSeed(c.InstanceSeed)
	inst := alloc.RandomInstance(c.Tasks, c.Units, minTaskCost, maxTaskCost, minUnitRate, maxUnitRate, instRng)

	eval, err := alloc.NewEvaluator(inst)
	if err != nil {
		return Record{}, err
	}

	makespans := make([]float64, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		op := algo.Factory(runSeed)

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, inst)
		dur := time.Since(start)
		cancel()

		r.Metrics.Observe(algo.Name, c.Name(), res, err)

		if err != nil && runCtx.Err() != nil {
			return Record{}, errors.Wrapf(err, "run %d: cancelled/timeout", i)
		}
		if err != nil {
			return Record{}, errors.Wrapf(err, "run %d: solve error", i)
		}
		if res.Allocation.Rows() != inst.NumTasks() {
			return Record{}, fmt.Errorf("run %d: invalid allocation rows %d (want %d)", i, res.Allocation.Rows(), inst.NumTasks())
		}
		// Заявленный makespan должен совпадать с пересчитанным
		ms, err := eval.Makespan(res.Allocation)
		if err != nil {
			return Record{}, errors.Wrapf(err, "run %d", i)
		}
		if math.Abs(ms-res.Makespan) > 1e-9*math.Max(1, ms) {
			return Record{}, fmt.Errorf("run %d: reported makespan %f, evaluated %f", i, res.Makespan, ms)
		}

		log.WithFields(logrus.Fields{"seed": runSeed, "makespan": res.Makespan}).Debug("bench: run finished")

		makespans = append(makespans, res.Makespan)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
	}

	msStats := CalcStats(makespans)
	tStats := CalcStats(timesMs)

	return Record{
		ID:    id,
		Algo:  algo.Name,
		Tasks: c.Tasks,
		Units: c.Units,
		Runs:  r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		MakespanBest: msStats.Best,
		MakespanMean: msStats.Mean,
		MakespanStd:  msStats.Std,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if d := dirOf(path); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"id", "algo", "tasks", "units", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.Algo,
			itoa(r.Tasks),
			itoa(r.Units),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			ftoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
