package cutcell

import (
	"fmt"

	"github.com/notargets/ebtensor/ebgeom"
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/metrics"
	"github.com/notargets/ebtensor/utils"
)

/*
MultiCutFab holds one CutFab per local patch. A patch store is allocated only
when the cell flags report a non regular cell within the patch box grown by
the ghost width. The flags are borrowed: they must outlive the collection.
*/
type MultiCutFab struct {
	Runner *utils.PatchRunner

	decomp    *grid.Decomposition
	nComp     int
	nGrow     int
	fabs      []*CutFab
	cellFlags ebgeom.Classification
}

func NewMultiCutFab(dc *grid.Decomposition, ncomp, ngrow int,
	cellFlags ebgeom.Classification) (mcf *MultiCutFab, err error) {
	mcf = &MultiCutFab{Runner: utils.DefaultRunner}
	if err = mcf.Define(dc, ncomp, ngrow, cellFlags); err != nil {
		return nil, err
	}
	return
}

/*
Define (re)builds the collection, releasing any previous stores. The cell
flags must classify every patch box grown by ngrow; otherwise Define returns
a configuration error and leaves the collection as it was.
*/
func (mcf *MultiCutFab) Define(dc *grid.Decomposition, ncomp, ngrow int, cellFlags ebgeom.Classification) error {
	if ncomp < 1 || ngrow < 0 {
		return fmt.Errorf("%w: cut collection with %d components and %d ghosts",
			utils.ErrConfiguration, ncomp, ngrow)
	}
	for _, p := range dc.LocalPatches() {
		if !cellFlags.Covers(p, dc.Box(p).Grow(ngrow)) {
			return fmt.Errorf("%w: cell flags of patch %d do not cover %d ghost cells",
				utils.ErrConfiguration, p, ngrow)
		}
	}
	mcf.Clear()
	mcf.decomp, mcf.nComp, mcf.nGrow, mcf.cellFlags = dc, ncomp, ngrow, cellFlags
	mcf.fabs = make([]*CutFab, dc.NumPatches())
	patches := dc.LocalPatches()
	mcf.Runner.ForEach(len(patches), func(_, i int) {
		p := patches[i]
		region := dc.Box(p).Grow(ngrow)
		mcf.fabs[p] = NewCutFab(region, ncomp, cellFlags.ContainsNonRegular(p, region))
	})
	allocated := mcf.NumAllocated()
	metrics.Default.CutPatches.WithLabelValues("allocated").Add(float64(allocated))
	metrics.Default.CutPatches.WithLabelValues("empty").Add(float64(len(patches) - allocated))
	return nil
}

// Clear drops every store and the borrowed flags
func (mcf *MultiCutFab) Clear() {
	mcf.fabs = nil
	mcf.cellFlags = nil
	mcf.decomp = nil
}

func (mcf *MultiCutFab) Fab(p grid.PatchIndex) *CutFab { return mcf.fabs[p] }

// Ok reports whether patch p carries cut cell data
func (mcf *MultiCutFab) Ok(p grid.PatchIndex) bool { return mcf.fabs[p].IsAllocated() }

func (mcf *MultiCutFab) NComp() int                         { return mcf.nComp }
func (mcf *MultiCutFab) NGrow() int                         { return mcf.nGrow }
func (mcf *MultiCutFab) Decomposition() *grid.Decomposition { return mcf.decomp }
func (mcf *MultiCutFab) CellFlags() ebgeom.Classification   { return mcf.cellFlags }

func (mcf *MultiCutFab) NumAllocated() (n int) {
	for _, cf := range mcf.fabs {
		if cf.IsAllocated() {
			n++
		}
	}
	return
}

// SetVal sets every allocated store; Empty stores carry nothing to set
func (mcf *MultiCutFab) SetVal(v float64) {
	mcf.Runner.ForEach(len(mcf.fabs), func(_, i int) {
		mcf.fabs[i].SetVal(v)
	})
}

/*
ToMultiFab expands the collection to a dense MultiFab of the same components
and ghost width. Regular cells take regularValue, covered cells coveredValue
and cut cells their stored value.
*/
func (mcf *MultiCutFab) ToMultiFab(regularValue, coveredValue float64) (mf *fab.MultiFab) {
	mf = fab.NewMultiFab(mcf.decomp, mcf.nComp, mcf.nGrow)
	mf.Runner = mcf.Runner
	mf.ForEachPatch(func(p grid.PatchIndex, f *fab.Fab) {
		cf := mcf.fabs[p]
		f.Box().ForEach(func(iv grid.IntVect) {
			for n := 0; n < mcf.nComp; n++ {
				var v float64
				switch mcf.cellFlags.CellType(p, iv) {
				case ebgeom.Regular:
					v = regularValue
				case ebgeom.Covered:
					v = coveredValue
				default:
					var ok bool
					if v, ok = cf.Get(iv, n); !ok {
						v = regularValue
					}
				}
				f.Set(iv, n, v)
			}
		})
	})
	return
}
