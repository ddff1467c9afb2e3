package ts

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"mctPSO/internal/alloc"
	"mctPSO/internal/mct"
	"mctPSO/internal/opt"
)

// Solver - структура реализации табу-поиска.
// Ход — переназначение одной задачи на другую машину.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// Solve — основной цикл алгоритма. Стартовое решение строится эвристикой MCT.
func (s *Solver) Solve(ctx context.Context, inst *alloc.Instance) (opt.Result, error) {
	start := time.Now()

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

	// Текущее решение
	curr := mct.Assign(inst)
	currCost := eval.MustAssignmentMakespan(curr)
	evals := 1

	// Глобально лучшее решение
	best := make([]int, n)
	copy(best, curr)
	bestCost := currCost

	// Табу-список - кольцевой буфер с мапой
	// Ёмкость выбирается с запасом относительно длины табу
	tabu := newTabuList(max(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))

	history := make([]float64, 0, maxIter)

	iter := 0
	for ; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := opt.FromAssignment(best, units, bestCost, evals, iter, map[string]any{
				"stopped": "context",
			})
			res.History = history
			res.Duration = time.Since(start)
			return res, err
		}

		// На одной машине ходов нет
		if units < 2 {
			break
		}

		// Лучший допустимый ход
		bestTask, bestUnit := -1, -1
		bestMoveCost := math.Inf(1)

		// Запасной ход (лучший без учёта табу),
		// используется если все допустимые ходы табуированы
		fallbackTask, fallbackUnit := -1, -1
		fallbackCost := math.Inf(1)

		// Итерация по случайно сгенерированным соседям
		for k := 0; k < s.Cfg.NeighborsPerIter; k++ {
			task := s.Rng.Intn(n)
			from := curr[task]
			to := s.Rng.Intn(units - 1)
			if to >= from {
				to++
			}

			curr[task] = to
			cost := eval.MustAssignmentMakespan(curr)
			curr[task] = from
			evals++

			if cost < fallbackCost {
				fallbackCost = cost
				fallbackTask, fallbackUnit = task, to
			}

			isTabu := tabu.IsTabu(moveKey(task, to), iter)
			aspiration := cost < bestCost // критерий аспирации

			// Табуированный ход пропускается,
			// если не выполняется критерий аспирации
			if isTabu && !aspiration {
				continue
			}

			if cost < bestMoveCost {
				bestMoveCost = cost
				bestTask, bestUnit = task, to
			}
		}

		// Выбор хода: сначала допустимый лучший, затем запасной
		chosenTask, chosenUnit, chosenCost := bestTask, bestUnit, bestMoveCost
		if chosenTask < 0 {
			chosenTask, chosenUnit, chosenCost = fallbackTask, fallbackUnit, fallbackCost
		}

		// Применение выбранного хода
		from := curr[chosenTask]
		curr[chosenTask] = chosenUnit
		currCost = chosenCost

		// Возврат задачи на прежнюю машину запрещён на срок tenure
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(chosenTask, from), iter+tenure)

		// Обновление глобально лучшего решения
		if currCost < bestCost {
			bestCost = currCost
			copy(best, curr)
		}

		history = append(history, bestCost)
	}

	res := opt.FromAssignment(best, units, bestCost, evals, iter, map[string]any{
		"tabu_tenure":        s.Cfg.TabuTenure,
		"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
		"neighbors_per_iter": s.Cfg.NeighborsPerIter,
	})
	res.History = history
	res.Duration = time.Since(start)
	return res, nil
}

// moveKey формирует уникальный ключ пары (задача, машина).
// Единица добавляется, чтобы ключ 0 означал пустую ячейку кольца.
func moveKey(task, unit int) uint64 {
	return ((uint64(uint32(task)) << 32) | uint64(uint32(unit))) + 1
}
