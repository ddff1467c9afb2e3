package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mctPSO/internal/config"
	"mctPSO/internal/opt"
	"mctPSO/internal/pso"
)

func newSolveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Найти распределение задач для одного экземпляра и вывести матрицу",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			applySolveFlags(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSolve(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	def := pso.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "путь к YAML-файлу конфигурации")
	f.Int64("seed", 1, "сид генератора случайных чисел")
	f.Int("particles", def.Particles, "количество частиц")
	f.Int("iterations", def.Iterations, "количество итераций")
	f.Float64("w", def.W, "коэффициент W (инерция)")
	f.Float64("c1", def.C1, "коэффициент C1 (когнитивный)")
	f.Float64("c2", def.C2, "коэффициент C2 (социальный)")
	f.Float64("vmax", def.VMax, "ограничение скорости частицы (0 — без ограничения)")
	f.String("repair", string(def.Repair), "режим восстановления строк: none | argmax")
	f.Bool("seed-mct", def.SeedMCT, "инициализировать первую частицу решением MCT")
	return cmd
}

// applySolveFlags переносит в конфигурацию только явно заданные флаги,
// чтобы они перекрывали значения из файла.
func applySolveFlags(f *pflag.FlagSet, cfg *config.File) {
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("particles") {
		cfg.PSO.Particles, _ = f.GetInt("particles")
	}
	if f.Changed("iterations") {
		cfg.PSO.Iterations, _ = f.GetInt("iterations")
	}
	if f.Changed("w") {
		cfg.PSO.W, _ = f.GetFloat64("w")
	}
	if f.Changed("c1") {
		cfg.PSO.C1, _ = f.GetFloat64("c1")
	}
	if f.Changed("c2") {
		cfg.PSO.C2, _ = f.GetFloat64("c2")
	}
	if f.Changed("vmax") {
		cfg.PSO.VMax, _ = f.GetFloat64("vmax")
	}
	if f.Changed("repair") {
		r, _ := f.GetString("repair")
		cfg.PSO.Repair = pso.Repair(r)
	}
	if f.Changed("seed-mct") {
		cfg.PSO.SeedMCT, _ = f.GetBool("seed-mct")
	}
}

func runSolve(ctx context.Context, cfg config.File, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	inst, err := cfg.BuildInstance()
	if err != nil {
		return err
	}

	entry := log.WithFields(log.Fields{
		"run_id":    uuid.NewString(),
		"seed":      cfg.Seed,
		"tasks":     inst.NumTasks(),
		"units":     inst.NumUnits(),
		"particles": cfg.PSO.Particles,
	})

	solver, err := pso.New(cfg.PSO, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return err
	}
	solver.Log = entry

	res, err := solver.Solve(ctx, inst)
	if errors.Is(err, opt.ErrNoSolution) {
		entry.Warn("решение не найдено: рой пуст или бюджет итераций равен нулю")
		_, werr := fmt.Fprintln(out, "no solution")
		return werr
	}
	if err != nil {
		return err
	}
	entry.WithFields(log.Fields{
		"makespan":    res.Makespan,
		"evaluations": res.Evaluations,
		"duration":    res.Duration,
	}).Info("pso: run finished")

	return printAllocation(out, res)
}

// printAllocation выводит матрицу распределения построчно.
func printAllocation(out io.Writer, res opt.Result) error {
	for _, row := range res.Allocation {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		if _, err := fmt.Fprintf(out, "[%s]\n", strings.Join(cells, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "makespan: %.4f\n", res.Makespan)
	return err
}
