package cutcell

import (
	"fmt"

	"github.com/notargets/ebtensor/ebgeom"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

/*
FillVolumeFractions stores in component 0 of every allocated store the
fluid fraction of each cell: 1 for regular, 0 for covered, and for cut cells
the fraction of nsub^dim sub-cell centres where f is non negative.
*/
func FillVolumeFractions(mcf *MultiCutFab, geom grid.Geometry, f ebgeom.ImplicitFunction, nsub int) {
	if nsub < 1 {
		panic(fmt.Errorf("%w: volume fraction sub-sampling of %d", utils.ErrConfiguration, nsub))
	}
	var (
		dim   = geom.Dim()
		nsamp = 1
	)
	for d := 0; d < dim; d++ {
		nsamp *= nsub
	}
	mcf.Runner.ForEach(len(mcf.fabs), func(_, i int) {
		cf := mcf.fabs[i]
		if !cf.IsAllocated() {
			return
		}
		p := grid.PatchIndex(i)
		cf.Box().ForEach(func(iv grid.IntVect) {
			switch mcf.cellFlags.CellType(p, iv) {
			case ebgeom.Regular:
				cf.Set(iv, 0, 1)
			case ebgeom.Covered:
				cf.Set(iv, 0, 0)
			default:
				var (
					lo     = geom.NodeLocation(iv)
					nFluid int
				)
				for s := 0; s < nsamp; s++ {
					x := lo
					for d, rem := 0, s; d < dim; d++ {
						x[d] += (float64(rem%nsub) + 0.5) / float64(nsub) * geom.CellSize[d]
						rem /= nsub
					}
					if f.Value(x) >= 0 {
						nFluid++
					}
				}
				cf.Set(iv, 0, float64(nFluid)/float64(nsamp))
			}
		})
	})
}
