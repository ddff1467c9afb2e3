package ga

import "math/rand"

// randomAssignment назначает каждой задаче случайную машину.
func randomAssignment(a []int, units int, rng *rand.Rand) {
	for i := range a {
		a[i] = rng.Intn(units)
	}
}

// tournamentSelect реализует турнирный отбор.
// возвращается индекс особи с наилучшим значением fitness (минимальный makespan).
func tournamentSelect(scores []float64, tournamentSize int, rng *rand.Rand) int {
	best := rng.Intn(len(scores))
	bestScore := scores[best]
	for i := 1; i < tournamentSize; i++ {
		cand := rng.Intn(len(scores))
		if scores[cand] < bestScore {
			best = cand
			bestScore = scores[cand]
		}
	}
	return best
}

// uniformCrossover — равномерный кроссовер: каждая задача берёт машину
// от одного из родителей, второй потомок получает дополнение.
func uniformCrossover(p1, p2, c1, c2 []int, rng *rand.Rand) {
	for i := range p1 {
		if rng.Intn(2) == 0 {
			c1[i], c2[i] = p1[i], p2[i]
		} else {
			c1[i], c2[i] = p2[i], p1[i]
		}
	}
}

// mutateReassign переназначает задачи на другую машину с вероятностью rate.
// Хотя бы одна задача меняется всегда.
func mutateReassign(a []int, units int, rate float64, rng *rand.Rand) {
	if units < 2 || len(a) == 0 {
		return
	}
	changed := false
	for i := range a {
		if rng.Float64() < rate {
			a[i] = otherUnit(a[i], units, rng)
			changed = true
		}
	}
	if !changed {
		i := rng.Intn(len(a))
		a[i] = otherUnit(a[i], units, rng)
	}
}

// otherUnit возвращает случайную машину, отличную от cur.
func otherUnit(cur, units int, rng *rand.Rand) int {
	u := rng.Intn(units - 1)
	if u >= cur {
		u++
	}
	return u
}
