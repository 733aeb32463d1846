package bc

import (
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
)

const (
	MaskInterior   int8 = iota // Valid data of some patch or periodic image
	MaskNotCovered             // Inside the domain, no patch
	MaskOutside                // Outside the domain
)

// MaskBox is the one cell ghost slab across face o of vbox, grown by one
// cell in the tangential directions so it reaches the edges and corners
func MaskBox(vbox grid.Box, o grid.Orientation) (mb grid.Box) {
	mb = vbox.AdjCell(o, 1)
	for d := 0; d < vbox.Dim; d++ {
		if d != o.Dir {
			mb = mb.GrowDir(d, 1)
		}
	}
	return
}

// NewMask classifies every cell of MaskBox(dc.Box(p), o)
func NewMask(dc *grid.Decomposition, geom grid.Geometry, p grid.PatchIndex, o grid.Orientation) (m *fab.IFab) {
	var (
		period = geom.Periodicity()
		domain = geom.Domain
	)
	m = fab.NewIFab(MaskBox(dc.Box(p), o))
	m.Box().ForEach(func(iv grid.IntVect) {
		for d := 0; d < domain.Dim; d++ {
			if !period.IsPeriodic(d) && (iv[d] < domain.Lo[d] || iv[d] > domain.Hi[d]) {
				m.Set(iv, MaskOutside)
				return
			}
		}
		if _, covered := dc.Boxes.Covers(period.Wrap(iv, domain)); covered {
			m.Set(iv, MaskInterior)
		} else {
			m.Set(iv, MaskNotCovered)
		}
	})
	return
}
