package grid

import "fmt"

// Geometry attaches physical coordinates and periodicity to an index domain
type Geometry struct {
	Domain   Box
	ProbLo   [3]float64
	CellSize [3]float64
	Periodic [3]bool
}

func NewGeometry(domain Box, probLo, probHi [3]float64, periodic [3]bool) (g Geometry) {
	g = Geometry{Domain: domain, ProbLo: probLo, Periodic: periodic}
	for d := 0; d < 3; d++ {
		if d < domain.Dim {
			g.CellSize[d] = (probHi[d] - probLo[d]) / float64(domain.Length(d))
			if g.CellSize[d] <= 0 {
				panic(fmt.Errorf("geometry extent in direction %d must be positive", d))
			}
		} else {
			g.CellSize[d] = 1
			g.Periodic[d] = false
		}
	}
	return
}

func (g Geometry) Dim() int { return g.Domain.Dim }

func (g Geometry) InvCellSize() (dxinv [3]float64) {
	for d := 0; d < 3; d++ {
		dxinv[d] = 1. / g.CellSize[d]
	}
	return
}

func (g Geometry) Periodicity() (p Periodicity) {
	for d := 0; d < g.Dim(); d++ {
		if g.Periodic[d] {
			p.Period[d] = g.Domain.Length(d)
		}
	}
	return
}

// Coarsen returns the geometry of the next multigrid level
func (g Geometry) Coarsen(r int) Geometry {
	c := g
	c.Domain = g.Domain.Coarsen(r)
	for d := 0; d < g.Dim(); d++ {
		c.CellSize[d] *= float64(r)
	}
	return c
}

func (g Geometry) CellCenter(iv IntVect) (x [3]float64) {
	for d := 0; d < g.Dim(); d++ {
		x[d] = g.ProbLo[d] + (float64(iv[d])+0.5)*g.CellSize[d]
	}
	return
}

// NodeLocation is the low corner of cell iv
func (g Geometry) NodeLocation(iv IntVect) (x [3]float64) {
	for d := 0; d < g.Dim(); d++ {
		x[d] = g.ProbLo[d] + float64(iv[d])*g.CellSize[d]
	}
	return
}
