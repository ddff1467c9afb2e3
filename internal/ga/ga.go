package ga

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"mctPSO/internal/alloc"
	"mctPSO/internal/opt"
)

// Solver — реализация генетического алгоритма для задачи распределения
// задач по машинам. Особь — номер машины для каждой задачи.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый GA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

	// Проверка корректности входных данных и конфигурации
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

	tasks, units := inst.NumTasks(), inst.NumUnits()
	popSize := s.Cfg.Population

	// Вспомогательная анонимная функция для создания двумерного массива особей
	makePop := func() [][]int {
		backing := make([]int, popSize*tasks)
		pop := make([][]int, popSize)
		for i := 0; i < popSize; i++ {
			pop[i] = backing[i*tasks : (i+1)*tasks]
		}
		return pop
	}

	// Две популяции: текущая (A) и следующая (B)
	popA := makePop()
	popB := makePop()
	scoresA := make([]float64, popSize)
	scoresB := make([]float64, popSize)

	// Инициализация начальной популяции
	for i := 0; i < popSize; i++ {
		randomAssignment(popA[i], units, s.Rng)
		scoresA[i] = eval.MustAssignmentMakespan(popA[i])
	}
	evaluations := popSize

	// Поиск лучшего решения в начальной популяции
	best := make([]int, tasks)
	bestMakespan := scoresA[0]
	copy(best, popA[0])
	for i := 1; i < popSize; i++ {
		if scoresA[i] < bestMakespan {
			bestMakespan = scoresA[i]
			copy(best, popA[i])
		}
	}

	// Временный буфер для второго потомка,
	// если в популяции остаётся нечётное число мест
	scratchChild := make([]int, tasks)

	// Индексы для сортировки популяции по приспособленности
	idxs := make([]int, popSize)
	for i := range idxs {
		idxs[i] = i
	}

	history := make([]float64, 0, s.Cfg.Generations)

	for gen := 0; gen < s.Cfg.Generations; gen++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := opt.FromAssignment(
				best,
				units,
				bestMakespan,
				evaluations,
				gen,
				map[string]any{"stopped": "context"},
			)
			res.History = history
			res.Duration = time.Since(start)
			return res, err
		}

		// Сортировка индексов по возрастанию значения целевой функции
		sort.Slice(idxs, func(i, j int) bool {
			return scoresA[idxs[i]] < scoresA[idxs[j]]
		})

		write := 0

		// Элитизм (переносим лучших особей без изменений)
		for e := 0; e < s.Cfg.Elite; e++ {
			src := idxs[e]
			copy(popB[write], popA[src])
			scoresB[write] = scoresA[src]
			write++
		}

		// Генерация остальных особей нового поколения
		for write < popSize {
			// Турнирный отбор
			p1 := tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)
			p2 := tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)
			for p2 == p1 {
				p2 = tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)
			}

			child1 := popB[write]
			hasSecond := write+1 < popSize
			child2 := scratchChild
			if hasSecond {
				child2 = popB[write+1]
			}

			// Кроссовер
			if s.Rng.Float64() < s.Cfg.CrossoverRate {
				uniformCrossover(popA[p1], popA[p2], child1, child2, s.Rng)
			} else {
				copy(child1, popA[p1])
				copy(child2, popA[p2])
			}

			// Мутация
			if s.Rng.Float64() < s.Cfg.MutationRate {
				mutateReassign(child1, units, s.Cfg.GeneMutationRate, s.Rng)
			}
			if hasSecond && s.Rng.Float64() < s.Cfg.MutationRate {
				mutateReassign(child2, units, s.Cfg.GeneMutationRate, s.Rng)
			}

			// Оценка первого потомка
			ms1 := eval.MustAssignmentMakespan(child1)
			scoresB[write] = ms1
			evaluations++
			if ms1 < bestMakespan {
				bestMakespan = ms1
				copy(best, child1)
			}
			write++

			// Оценка второго потомка
			if hasSecond {
				ms2 := eval.MustAssignmentMakespan(child2)
				scoresB[write] = ms2
				evaluations++
				if ms2 < bestMakespan {
					bestMakespan = ms2
					copy(best, child2)
				}
				write++
			}
		}

		// Смена поколений
		popA, popB = popB, popA
		scoresA, scoresB = scoresB, scoresA

		history = append(history, bestMakespan)
	}

	res := opt.FromAssignment(
		best,
		units,
		bestMakespan,
		evaluations,
		s.Cfg.Generations,
		map[string]any{
			"population":  s.Cfg.Population,
			"generations": s.Cfg.Generations,
			"elite":       s.Cfg.Elite,
		},
	)
	res.History = history
	res.Duration = time.Since(start)
	return res, nil
}
