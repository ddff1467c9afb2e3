package pso

import "fmt"

// Repair определяет, как из скорости получается новое распределение.
type Repair string

const (
	// RepairNone — жёсткий порог: 1, если скорость > 0. Строки матрицы
	// могут оказаться пустыми или содержать несколько единиц.
	RepairNone Repair = "none"
	// RepairArgmax — в каждой строке остаётся одна единица в столбце
	// с максимальной скоростью (одна задача — одна машина).
	RepairArgmax Repair = "argmax"
)

type Config struct {
	Iterations int `yaml:"iterations"`
	Particles  int `yaml:"particles"`

	W  float64 `yaml:"w"`
	C1 float64 `yaml:"c1"`
	C2 float64 `yaml:"c2"`

	// VMax <= 0 — без ограничения скорости.
	VMax float64 `yaml:"vmax"`

	Repair Repair `yaml:"repair"`
	// SeedMCT заменяет первую частицу решением эвристики MCT.
	SeedMCT bool `yaml:"seed_mct"`
}

func DefaultConfig() Config {
	return Config{
		Iterations: 100,
		Particles:  10,

		W:  0.7,
		C1: 1.5,
		C2: 1.5,

		VMax: 0,

		Repair:  RepairNone,
		SeedMCT: false,
	}
}

// Validate допускает нулевые Iterations и Particles: такой запуск
// завершается с opt.ErrNoSolution, а не ошибкой конфигурации.
func (c Config) Validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf(
			"Iterations должно быть >= 0 (получено %d)",
			c.Iterations,
		)
	}
	if c.Particles < 0 {
		return fmt.Errorf(
			"Particles должно быть >= 0 (получено %d)",
			c.Particles,
		)
	}
	if c.W < 0 {
		return fmt.Errorf(
			"W должно быть >= 0 (получено %f)",
			c.W,
		)
	}
	if c.C1 < 0 || c.C2 < 0 {
		return fmt.Errorf(
			"C1 и C2 должны быть >= 0 (получено %f, %f)",
			c.C1,
			c.C2,
		)
	}
	if c.VMax < 0 {
		return fmt.Errorf(
			"VMax должно быть >= 0 (получено %f)",
			c.VMax,
		)
	}
	switch c.Repair {
	case "", RepairNone, RepairArgmax:
		// ok
	default:
		return fmt.Errorf(
			"неизвестный режим восстановления %q",
			c.Repair,
		)
	}
	return nil
}
