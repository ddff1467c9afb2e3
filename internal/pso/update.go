package pso

import (
	"math/rand"

	"mctPSO/internal/alloc"
)

// updateVelocity обновляет скорость частицы на месте:
//
//	v = w*v + c1*r1*(pBest - pos) + c2*r2*(gBest - pos)
//
// r1 и r2 разыгрываются один раз на всё обновление.
func updateVelocity(
	vel [][]float64,
	pos, pBest, gBest alloc.Allocation,
	w, c1, c2, vMax float64,
	rng *rand.Rand,
) {
	r1 := rng.Float64()
	r2 := rng.Float64()

	for i := range vel {
		for j := range vel[i] {
			x := float64(pos[i][j])
			v := w*vel[i][j] +
				c1*r1*(float64(pBest[i][j])-x) +
				c2*r2*(float64(gBest[i][j])-x)

			// Ограничение скорости
			if vMax > 0 {
				if v > vMax {
					v = vMax
				} else if v < -vMax {
					v = -vMax
				}
			}
			vel[i][j] = v
		}
	}
}

// derivePosition — жёсткий порог: 1, где скорость строго больше нуля.
func derivePosition(vel [][]float64, pos alloc.Allocation) {
	for i := range vel {
		for j, v := range vel[i] {
			if v > 0 {
				pos[i][j] = 1
			} else {
				pos[i][j] = 0
			}
		}
	}
}

// repairPosition оставляет в каждой строке одну единицу в столбце
// с максимальной скоростью. При равенстве сохраняется текущая машина,
// если она среди лучших, иначе берётся меньший индекс.
func repairPosition(vel [][]float64, pos alloc.Allocation) {
	for i := range vel {
		row := vel[i]
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		for j := range row {
			if row[j] == row[best] && pos[i][j] == 1 {
				best = j
				break
			}
		}
		for j := range pos[i] {
			pos[i][j] = 0
		}
		pos[i][best] = 1
	}
}
