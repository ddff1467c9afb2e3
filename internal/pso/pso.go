package pso

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"mctPSO/internal/alloc"
	"mctPSO/internal/mct"
	"mctPSO/internal/opt"
)

// Solver - структура реализации алгоритма роя частиц
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	Log logrus.FieldLogger
}

// New возвращает новый PSO-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng, Log: logrus.StandardLogger()}, nil
}

// Solve — основной цикл. Каждая итерация проходит по всем частицам:
// оценка, обновление личного и глобального лучших, затем новая скорость
// и позиция записываются в саму частицу.
func (s *Solver) Solve(ctx context.Context, inst *alloc.Instance) (opt.Result, error) {
	start := time.Now()

	// Валидация конфигурации
	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Оценка целевой функции
	eval, err := alloc.NewEvaluator(inst)
	if err != nil {
		return opt.Result{}, err
	}

	nt, nv := inst.NumTasks(), inst.NumUnits()
	iters := s.Cfg.Iterations
	repair := s.Cfg.Repair
	if repair == "" {
		repair = RepairNone
	}

	// Пустой рой или нулевой бюджет: ни одной оценки не будет
	if s.Cfg.Particles == 0 || iters == 0 {
		return opt.Result{
			Iterations: iters,
			Duration:   time.Since(start),
		}, opt.ErrNoSolution
	}

	// Инициализация частиц
	ps := initSwarm(s.Cfg.Particles, nt, nv, repair, s.Rng)
	if s.Cfg.SeedMCT {
		seed, err := alloc.FromAssignment(mct.Assign(inst), nv)
		if err != nil {
			return opt.Result{}, err
		}
		ps[0].pos.CopyFrom(seed)
	}

	// Глобально лучшее решение
	gBestPos := alloc.NewAllocation(nt, nv)
	gBestCost := math.Inf(1)

	history := make([]float64, 0, iters)
	evals := 0

	w, c1, c2 := s.Cfg.W, s.Cfg.C1, s.Cfg.C2
	vMax := s.Cfg.VMax

	// Основной цикл
	for iter := 0; iter < iters; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := opt.Result{
				Makespan:    gBestCost,
				Evaluations: evals,
				Iterations:  iter,
				Duration:    time.Since(start),
				History:     history,
				Meta: map[string]any{
					"stopped": "context",
				},
			}
			if evals > 0 {
				res.Allocation = gBestPos
			}
			return res, err
		}

		for i := range ps {
			p := &ps[i]

			// Оценка текущего положения частицы
			cost := eval.MustMakespan(p.pos)
			evals++

			// Обновление личного лучшего решения
			if cost < p.pBestCost {
				p.pBestCost = cost
				p.pBestPos.CopyFrom(p.pos)
			}

			// Обновление глобального лучшего решения
			if cost < gBestCost {
				gBestCost = cost
				gBestPos.CopyFrom(p.pos)
				log.WithFields(logrus.Fields{
					"iteration": iter,
					"particle":  i,
					"makespan":  cost,
				}).Debug("pso: new global best")
			}

			// Обновление скорости и позиции частицы
			p.move(gBestPos, w, c1, c2, vMax, repair, s.Rng)
		}

		history = append(history, gBestCost)
	}

	if math.IsInf(gBestCost, 1) {
		return opt.Result{
			Evaluations: evals,
			Iterations:  iters,
			Duration:    time.Since(start),
		}, opt.ErrNoSolution
	}

	return opt.Result{
		Allocation:  gBestPos,
		Makespan:    gBestCost,
		Evaluations: evals,
		Iterations:  iters,
		Duration:    time.Since(start),
		History:     history,
		Meta: map[string]any{
			"particles": s.Cfg.Particles,
			"w":         w,
			"c1":        c1,
			"c2":        c2,
			"vmax":      vMax,
			"repair":    string(repair),
			"seed_mct":  s.Cfg.SeedMCT,
		},
	}, nil
}
