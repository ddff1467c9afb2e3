package aco

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"mctPSO/internal/alloc"
	"mctPSO/internal/opt"
)

// Solver - структура реализации муравьиного алгоритма.
// Феромон хранится на парах (задача, машина).
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый ACO-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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
	startTime := time.Now()

	// Валидация входных данных
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

	// Матрица феромонов
	tau := make([]float64, n*units)
	for i := range tau {
		tau[i] = s.Cfg.Tau0
	}

	// Вспомогательные буферы
	assign := make([]int, n)          // текущее решение муравья
	load := make([]float64, units)    // накопленная стоимость на машинах
	weights := make([]float64, units) // веса вероятностного выбора

	best := make([]int, n)
	bestCost := math.Inf(1)
	iterBest := make([]int, n)
	evals := 0
	history := make([]float64, 0, maxIter)

	alpha := s.Cfg.Alpha
	beta := s.Cfg.Beta
	rho := s.Cfg.Rho
	Q := s.Cfg.Q

	for iter := 0; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			meta := map[string]any{"stopped": "context"}
			if evals == 0 {
				return opt.Result{Iterations: iter, Duration: time.Since(startTime), Meta: meta}, err
			}
			res := opt.FromAssignment(best, units, bestCost, evals, iter, meta)
			res.History = history
			res.Duration = time.Since(startTime)
			return res, err
		}

		// Лучшее решение текущей итерации
		iterBestCost := math.Inf(1)

		// Муравьи пошли
		for a := 0; a < s.Cfg.Ants; a++ {
			constructAssignment(inst, tau, alpha, beta, s.Rng, assign, load, weights)

			cost := eval.MustAssignmentMakespan(assign)
			evals++

			// Локальное лучшее за итерацию
			if cost < iterBestCost {
				iterBestCost = cost
				copy(iterBest, assign)
			}
			// Глобальное лучшее за всё время
			if cost < bestCost {
				bestCost = cost
				copy(best, assign)
			}
		}

		// Испарение феромона
		ev := 1.0 - rho
		for i := range tau {
			tau[i] *= ev
			if tau[i] < 1e-12 {
				tau[i] = 1e-12
			}
		}

		// Добавление феромона только по лучшему решению итерации
		dep := Q / iterBestCost
		for i, u := range iterBest {
			tau[i*units+u] += dep
		}

		history = append(history, bestCost)
	}

	res := opt.FromAssignment(best, units, bestCost, evals, maxIter, map[string]any{
		"ants":  s.Cfg.Ants,
		"alpha": alpha,
		"beta":  beta,
		"rho":   rho,
		"Q":     Q,
		"tau0":  s.Cfg.Tau0,
	})
	res.History = history
	res.Duration = time.Since(startTime)
	return res, nil
}

// constructAssignment строит решение одного муравья: задачи берутся
// по порядку, машина выбирается вероятностно по феромону и эвристике
// eta = 1 / время завершения машины с этой задачей.
func constructAssignment(
	inst *alloc.Instance,
	tau []float64,
	alpha float64,
	beta float64,
	rng *rand.Rand,
	outAssign []int,
	load []float64,
	weights []float64,
) {
	units := len(load)
	for j := range load {
		load[j] = 0
	}

	for i, c := range inst.Tasks {
		// Подсчёт весов вероятностей выбора
		sumW := 0.0
		for j := 0; j < units; j++ {
			eta := inst.Rates[j] / (load[j] + c)
			w := fastPow(tau[i*units+j], alpha) * fastPow(eta, beta)
			weights[j] = w
			sumW += w
		}

		// Стохастический выбор машины
		chosen := units - 1
		if sumW <= 0 || math.IsInf(sumW, 0) || math.IsNaN(sumW) {
			chosen = rng.Intn(units)
		} else {
			r := rng.Float64() * sumW
			acc := 0.0
			for j := 0; j < units; j++ {
				acc += weights[j]
				if r <= acc {
					chosen = j
					break
				}
			}
		}

		outAssign[i] = chosen
		load[chosen] += c
	}
}

// fastPow — оптимизация для частых степеней.
// Таким образом избегаем вызова math.Pow в простых случаях.
func fastPow(x, p float64) float64 {
	if p == 0 {
		return 1.0
	}
	if p == 1 {
		return x
	}
	if p == 2 {
		return x * x
	}
	return math.Pow(x, p)
}
