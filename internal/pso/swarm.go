package pso

import (
	"math"
	"math/rand"

	"mctPSO/internal/alloc"
)

// particle описывает одну частицу роя.
type particle struct {
	// pos — текущее распределение задач по машинам
	pos alloc.Allocation
	// vel — скорость, сохраняется между итерациями
	vel [][]float64

	// pBestPos — лучшее распределение частицы за всё время
	pBestPos alloc.Allocation
	// pBestCost — makespan в pBestPos
	pBestCost float64
}

// initSwarm создаёт n частиц размера nt x nv со случайными позициями
// и нулевыми скоростями.
func initSwarm(n, nt, nv int, repair Repair, rng *rand.Rand) []particle {
	ps := make([]particle, n)
	for k := range ps {
		ps[k] = particle{
			pos:       alloc.NewAllocation(nt, nv),
			vel:       newVelocity(nt, nv),
			pBestPos:  alloc.NewAllocation(nt, nv),
			pBestCost: math.Inf(1),
		}

		if repair == RepairArgmax {
			// Одна случайная машина на задачу
			for i := 0; i < nt; i++ {
				ps[k].pos[i][rng.Intn(nv)] = 1
			}
			continue
		}
		for i := 0; i < nt; i++ {
			for j := 0; j < nv; j++ {
				ps[k].pos[i][j] = rng.Intn(2)
			}
		}
	}
	return ps
}

// move обновляет скорость частицы и записывает в неё новое положение.
// Скорость накапливается от вызова к вызову.
func (p *particle) move(gBest alloc.Allocation, w, c1, c2, vMax float64, repair Repair, rng *rand.Rand) {
	updateVelocity(p.vel, p.pos, p.pBestPos, gBest, w, c1, c2, vMax, rng)
	if repair == RepairArgmax {
		repairPosition(p.vel, p.pos)
		return
	}
	derivePosition(p.vel, p.pos)
}

func newVelocity(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	v := make([][]float64, rows)
	for i := range v {
		v[i] = backing[i*cols : (i+1)*cols]
	}
	return v
}
