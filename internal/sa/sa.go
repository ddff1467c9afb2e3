package sa

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"mctPSO/internal/alloc"
	"mctPSO/internal/opt"
)

// Solver - структура реализации алгоритма имитации отжига
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, inst *alloc.Instance) (opt.Result, error) {
	start := time.Now()

	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	eval, err := alloc.NewEvaluator(inst)
	if err != nil {
		return opt.Result{}, err
	}

	n, units := inst.NumTasks(), inst.NumUnits()

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerTask * n
	}

	// Текущее и кандидатное решения
	curr := make([]int, n)
	cand := make([]int, n)

	// Инициализация текущего решения
	for i := range curr {
		curr[i] = s.Rng.Intn(units)
	}

	currCost := eval.MustAssignmentMakespan(curr)
	bestCost := currCost
	best := make([]int, n)
	copy(best, curr)

	evals := 1
	T := s.Cfg.InitialTemp
	iter := 0
	history := make([]float64, 0, maxIter)

	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := opt.FromAssignment(best, units, bestCost, evals, iter, map[string]any{
				"stopped": "context",
				"T":       T,
			})
			res.History = history
			res.Duration = time.Since(start)
			return res, err
		}

		copy(cand, curr)
		switch s.Cfg.Neighborhood {
		case NeighborhoodSwap:
			neighborSwap(cand, s.Rng)
		default:
			neighborMove(cand, units, s.Rng)
		}

		candCost := eval.MustAssignmentMakespan(cand)
		evals++

		delta := candCost - currCost
		accept := false
		if delta <= 0 {
			// Улучшающее решение принимаем всегда
			accept = true
		} else {
			// Критерий Метрополиса:
			// допускает принятие ухудшающих решений
			p := math.Exp(-delta / T)
			if s.Rng.Float64() < p {
				accept = true
			}
		}

		if accept {
			// Обмен ролей текущего и кандидатного решений
			curr, cand = cand, curr
			currCost = candCost

			// Обновление глобально лучшего решения
			if currCost < bestCost {
				bestCost = currCost
				copy(best, curr)
			}
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha

		history = append(history, bestCost)
	}

	res := opt.FromAssignment(best, units, bestCost, evals, iter, map[string]any{
		"initial_temp": s.Cfg.InitialTemp,
		"final_temp":   s.Cfg.FinalTemp,
		"alpha":        s.Cfg.Alpha,
		"neighborhood": string(s.Cfg.Neighborhood),
	})
	res.History = history
	res.Duration = time.Since(start)
	return res, nil
}

// neighborMove переназначает случайную задачу на другую случайную машину.
func neighborMove(a []int, units int, rng *rand.Rand) {
	if units < 2 {
		return
	}
	i := rng.Intn(len(a))
	u := rng.Intn(units - 1)
	if u >= a[i] {
		u++
	}
	a[i] = u
}

// neighborSwap обменивает машины двух случайных задач.
func neighborSwap(a []int, rng *rand.Rand) {
	if len(a) < 2 {
		return
	}
	i := rng.Intn(len(a))
	j := rng.Intn(len(a) - 1)
	if j >= i {
		j++
	}
	a[i], a[j] = a[j], a[i]
}
