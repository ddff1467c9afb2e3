package mct

import (
	"context"
	"time"

	"mctPSO/internal/alloc"
	"mctPSO/internal/opt"
)

// Solver — жадная эвристика минимального времени завершения (MCT).
// Детерминирована, генератор случайных чисел не нужен.
type Solver struct{}

func New() *Solver { return &Solver{} }

// Assign назначает задачи по порядку на машину, на которой задача
// завершится раньше всего с учётом уже накопленной нагрузки.
// При равенстве выбирается машина с меньшим индексом.
func Assign(inst *alloc.Instance) []int {
	load := make([]float64, inst.NumUnits())
	out := make([]int, inst.NumTasks())
	for i, c := range inst.Tasks {
		best := 0
		bestCT := (load[0] + c) / inst.Rates[0]
		for j := 1; j < len(load); j++ {
			ct := (load[j] + c) / inst.Rates[j]
			if ct < bestCT {
				best, bestCT = j, ct
			}
		}
		load[best] += c
		out[i] = best
	}
	return out
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, inst *alloc.Instance) (opt.Result, error) {
	start := time.Now()

	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return opt.Result{}, err
	}

	eval, err := alloc.NewEvaluator(inst)
	if err != nil {
		return opt.Result{}, err
	}

	assign := Assign(inst)
	ms := eval.MustAssignmentMakespan(assign)

	res := opt.FromAssignment(assign, inst.NumUnits(), ms, 1, 1, map[string]any{"heuristic": "mct"})
	res.History = []float64{ms}
	res.Duration = time.Since(start)
	return res, nil
}
