package sa

import "fmt"

// Тип окрестности
type Neighborhood string

const (
	// NeighborhoodMove переназначает одну задачу на другую машину.
	NeighborhoodMove Neighborhood = "move"
	// NeighborhoodSwap обменивает машины двух задач.
	NeighborhoodSwap Neighborhood = "swap"
)

type Config struct {
	Iterations        int
	IterationsPerTask int

	InitialTemp float64
	FinalTemp   float64
	Alpha       float64

	Neighborhood Neighborhood
}

func DefaultConfig() Config {
	return Config{
		Iterations:        0,
		IterationsPerTask: 200,

		InitialTemp: 10.0,
		FinalTemp:   0.001,
		Alpha:       0.995,

		Neighborhood: NeighborhoodMove,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerTask <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerTask > 0",
		)
	}
	if c.InitialTemp <= 0 {
		return fmt.Errorf(
			"InitialTemp должно быть > 0 (получено %f)",
			c.InitialTemp,
		)
	}
	if c.FinalTemp <= 0 {
		return fmt.Errorf(
			"FinalTemp должно быть > 0 (получено %f)",
			c.FinalTemp,
		)
	}
	if c.FinalTemp >= c.InitialTemp {
		return fmt.Errorf(
			"FinalTemp должно быть < InitialTemp (получено %f >= %f)",
			c.FinalTemp,
			c.InitialTemp,
		)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf(
			"alpha должно лежать в интервале (0,1) (получено %f)",
			c.Alpha,
		)
	}
	switch c.Neighborhood {
	case NeighborhoodMove, NeighborhoodSwap:
		// ok
	default:
		return fmt.Errorf(
			"неизвестный тип окрестности %q",
			c.Neighborhood,
		)
	}
	return nil
}
