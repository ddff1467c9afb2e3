package ts

import "fmt"

type Config struct {
	Iterations        int
	IterationsPerTask int

	TabuTenure int

	TabuTenureRand int

	NeighborsPerIter int
}

func DefaultConfig() Config {
	return Config{
		Iterations:        0,
		IterationsPerTask: 40,

		TabuTenure:     7,
		TabuTenureRand: 3,

		NeighborsPerIter: 30,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerTask <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerTask > 0",
		)
	}
	if c.TabuTenure <= 0 {
		return fmt.Errorf(
			"TabuTenure должно быть > 0 (получено %d)",
			c.TabuTenure,
		)
	}
	if c.TabuTenureRand < 0 {
		return fmt.Errorf(
			"TabuTenureRand должно быть >= 0 (получено %d)",
			c.TabuTenureRand,
		)
	}
	if c.NeighborsPerIter <= 0 {
		return fmt.Errorf(
			"NeighborsPerIter должно быть > 0 (получено %d)",
			c.NeighborsPerIter,
		)
	}
	return nil
}
