package main

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mctPSO/internal/aco"
	"mctPSO/internal/bench"
	"mctPSO/internal/ga"
	"mctPSO/internal/mct"
	"mctPSO/internal/metrics"
	"mctPSO/internal/opt"
	"mctPSO/internal/pso"
	"mctPSO/internal/sa"
	"mctPSO/internal/ts"
)

// Фабрики

func newGAFactory(cfg ga.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ga.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newSAFactory(cfg sa.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := sa.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newTSFactory(cfg ts.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ts.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newACOFactory(cfg aco.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := aco.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newPSOFactory(cfg pso.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := pso.New(cfg, rand.New(rand.NewSource(seed)))
		return solver
	}
}

func newMCTFactory() func(seed int64) opt.Optimizer {
	return func(int64) opt.Optimizer { return mct.New() }
}

type benchFlags struct {
	out          string
	pairs        string
	algos        string
	instanceSeed int64
	metricsAddr  string

	ga  ga.Config
	sa  sa.Config
	ts  ts.Config
	aco aco.Config
	pso pso.Config

	saNeigh   string
	psoRepair string
}

// defaultBenchFlags возвращает конфигурации алгоритмов для сравнения.
// PSO сравнивается в режиме argmax: одна машина на задачу, как у остальных.
func defaultBenchFlags() benchFlags {
	bf := benchFlags{
		ga:  ga.DefaultConfig(),
		sa:  sa.DefaultConfig(),
		ts:  ts.DefaultConfig(),
		aco: aco.DefaultConfig(),
		pso: pso.DefaultConfig(),
	}
	bf.pso.Repair = pso.RepairArgmax
	return bf
}

func newBenchCmd() *cobra.Command {
	bf := defaultBenchFlags()
	runner := bench.Runner{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Сравнить алгоритмы на случайных экземплярах и сохранить CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, bf, runner)
		},
	}

	// CLI флаги для настройки параметров алгоритмов и политики запуска
	f := cmd.Flags()
	f.StringVar(&bf.out, "out", "artifacts/results.csv", "путь к выходному CSV-файлу")
	f.StringVar(&bf.pairs, "pairs", "15x5,50x10,100x20", "конфигурации: количество задач Х количество машин (через запятую)")
	f.StringVar(&bf.algos, "algos", "MCT,PSO,GA,SA,TS,ACO", "список алгоритмов: MCT, PSO, GA, SA, TS, ACO (через запятую)")
	f.IntVar(&runner.Runs, "runs", 30, "количество запусков каждого алгоритма (с разными сидами)")
	f.Int64Var(&runner.BaseSeed, "seed", 1000, "базовый сид для запусков алгоритмов")
	f.Int64Var(&bf.instanceSeed, "instance_seed", 777, "базовый сид для генерации экземпляров задачи (фиксирован для конфигурации)")
	f.DurationVar(&runner.PerRunTimeout, "per_run_timeout", 0, "таймаут одного запуска; 0 — без ограничения")
	f.StringVar(&bf.metricsAddr, "metrics-addr", "", "адрес HTTP-сервера метрик Prometheus (пусто — не запускать)")

	// --- Генетический алгоритм ---
	f.IntVar(&bf.ga.Population, "ga_pop", bf.ga.Population, "размер популяции")
	f.IntVar(&bf.ga.Generations, "ga_gen", bf.ga.Generations, "количество поколений")
	f.IntVar(&bf.ga.Elite, "ga_elite", bf.ga.Elite, "размер элиты (количество лучших особей)")
	f.IntVar(&bf.ga.TournamentSize, "ga_tour", bf.ga.TournamentSize, "размер турнирной выборки")
	f.Float64Var(&bf.ga.CrossoverRate, "ga_cx", bf.ga.CrossoverRate, "вероятность применения кроссовера")
	f.Float64Var(&bf.ga.MutationRate, "ga_mut", bf.ga.MutationRate, "вероятность мутации")
	f.Float64Var(&bf.ga.GeneMutationRate, "ga_gene_mut", bf.ga.GeneMutationRate, "вероятность переназначения каждой задачи при мутации")

	// --- Алгоритм имитации отжига ---
	f.IntVar(&bf.sa.IterationsPerTask, "sa_iter_per_task", bf.sa.IterationsPerTask, "количество итераций на одну задачу (используется, если sa_iter == 0)")
	f.IntVar(&bf.sa.Iterations, "sa_iter", bf.sa.Iterations, "общее количество итераций (0 => sa_iter_per_task × nTasks)")
	f.Float64Var(&bf.sa.InitialTemp, "sa_t0", bf.sa.InitialTemp, "начальная температура")
	f.Float64Var(&bf.sa.FinalTemp, "sa_tmin", bf.sa.FinalTemp, "конечная температура")
	f.Float64Var(&bf.sa.Alpha, "sa_alpha", bf.sa.Alpha, "коэффициент охлаждения (alpha)")
	f.StringVar(&bf.saNeigh, "sa_neigh", string(bf.sa.Neighborhood), "тип окрестности: move | swap")

	// --- Табу-поиск ---
	f.IntVar(&bf.ts.IterationsPerTask, "ts_iter_per_task", bf.ts.IterationsPerTask, "количество итераций на одну задачу (используется, если ts_iter == 0)")
	f.IntVar(&bf.ts.Iterations, "ts_iter", bf.ts.Iterations, "общее количество итераций (0 => ts_iter_per_task × nTasks)")
	f.IntVar(&bf.ts.TabuTenure, "ts_tenure", bf.ts.TabuTenure, "длина табу-списка (в итерациях)")
	f.IntVar(&bf.ts.TabuTenureRand, "ts_tenure_rand", bf.ts.TabuTenureRand, "случайное добавление к сроку табу [0..rand]")
	f.IntVar(&bf.ts.NeighborsPerIter, "ts_neighbors", bf.ts.NeighborsPerIter, "количество рассматриваемых соседей на итерацию")

	// --- Муравьиный алгоритм ---
	f.IntVar(&bf.aco.IterationsPerTask, "aco_iter_per_task", bf.aco.IterationsPerTask, "количество итераций на одну задачу (используется, если aco_iter == 0)")
	f.IntVar(&bf.aco.Iterations, "aco_iter", bf.aco.Iterations, "общее количество итераций (0 => aco_iter_per_task × nTasks)")
	f.IntVar(&bf.aco.Ants, "aco_ants", bf.aco.Ants, "количество муравьёв")
	f.Float64Var(&bf.aco.Alpha, "aco_alpha", bf.aco.Alpha, "коэффициент alpha (влияние феромонов)")
	f.Float64Var(&bf.aco.Beta, "aco_beta", bf.aco.Beta, "коэффициент beta (влияние эвристики)")
	f.Float64Var(&bf.aco.Rho, "aco_rho", bf.aco.Rho, "коэффициент rho (испарения феромонов)")
	f.Float64Var(&bf.aco.Q, "aco_q", bf.aco.Q, "константа отложения феромонов")
	f.Float64Var(&bf.aco.Tau0, "aco_tau0", bf.aco.Tau0, "начальный уровень феромонов")

	// --- Рой частиц ---
	f.IntVar(&bf.pso.Iterations, "pso_iter", bf.pso.Iterations, "количество итераций")
	f.IntVar(&bf.pso.Particles, "pso_particles", bf.pso.Particles, "количество частиц")
	f.Float64Var(&bf.pso.W, "pso_w", bf.pso.W, "коэффициент W (инерция)")
	f.Float64Var(&bf.pso.C1, "pso_c1", bf.pso.C1, "коэффициент C1 (когнитивный)")
	f.Float64Var(&bf.pso.C2, "pso_c2", bf.pso.C2, "коэффициент C2 (социальный)")
	f.Float64Var(&bf.pso.VMax, "pso_vmax", bf.pso.VMax, "ограничение скорости частицы (<=0 — без ограничения)")
	f.StringVar(&bf.psoRepair, "pso_repair", string(bf.pso.Repair), "режим восстановления строк: none | argmax")
	f.BoolVar(&bf.pso.SeedMCT, "pso_seed_mct", bf.pso.SeedMCT, "инициализировать первую частицу решением MCT")

	return cmd
}

func runBench(cmd *cobra.Command, bf benchFlags, runner bench.Runner) error {
	ctx := cmd.Context()

	cases, err := bench.ParsePairs(bf.pairs, bf.instanceSeed)
	if err != nil {
		return errors.Wrap(err, "ошибка разбора --pairs")
	}

	bf.sa.Neighborhood = sa.Neighborhood(bf.saNeigh)
	bf.pso.Repair = pso.Repair(bf.psoRepair)

	checks := []struct {
		name string
		err  error
	}{
		{"генетического алгоритма", bf.ga.Validate()},
		{"алгоритма имитации отжига", bf.sa.Validate()},
		{"табу-поиска", bf.ts.Validate()},
		{"муравьиного алгоритма", bf.aco.Validate()},
		{"роя частиц", bf.pso.Validate()},
	}
	for _, c := range checks {
		if c.err != nil {
			return errors.Wrapf(c.err, "конфликт в конфигурации %s", c.name)
		}
	}

	available := map[string]bench.Algorithm{
		"MCT": {Name: "MCT", Factory: newMCTFactory()},
		"GA":  {Name: "GA", Factory: newGAFactory(bf.ga)},
		"SA":  {Name: "SA", Factory: newSAFactory(bf.sa)},
		"TS":  {Name: "TS", Factory: newTSFactory(bf.ts)},
		"ACO": {Name: "ACO", Factory: newACOFactory(bf.aco)},
		"PSO": {Name: "PSO", Factory: newPSOFactory(bf.pso)},
	}

	var selected []bench.Algorithm
	for _, a := range bench.SplitCSV(bf.algos) {
		al, ok := available[a]
		if !ok {
			return errors.Errorf("алгоритм не предоставлен в программе %q; доступные: %v", a, keys(available))
		}
		selected = append(selected, al)
	}

	if bf.metricsAddr != "" {
		runner.Metrics = metrics.NewRecorder()
		runner.Metrics.Serve(bf.metricsAddr)
	}
	runner.Log = log.StandardLogger()

	out := cmd.OutOrStdout()
	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			fmt.Fprintf(out, "Запущен алгоритм %s; %d задач %d машин (общее кол-во запусков=%d)...\n", a.Name, c.Tasks, c.Units, runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				return err
			}
			records = append(records, rec)

			fmt.Fprintf(out, "  Makespan: лучшее=%.4f среднее=%.4f стандартное отклонение=%.4f | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(bf.out, records); err != nil {
		return errors.Wrap(err, "ошибка при записи в CSV")
	}
	log.WithField("path", bf.out).Info("bench: results saved")
	return nil
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
