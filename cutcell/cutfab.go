// Package cutcell stores irregular geometry data only on the patches that
// contain cut cells.
package cutcell

import (
	"fmt"

	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

/*
CutFab is either Empty or Allocated. An Empty store describes a patch without
irregular cells and owns no buffer; every operation on it is a no-op or a pure
size computation, so algorithms can sweep all patches of a decomposition
without special cases. The tag is checked once at the top of each method.
*/
type CutFab struct {
	box   grid.Box
	nComp int
	data  *fab.Fab // nil when Empty
}

func NewCutFab(box grid.Box, nComp int, alloc bool) (cf *CutFab) {
	cf = &CutFab{box: box, nComp: nComp}
	if alloc {
		cf.data = fab.NewFab(box, nComp)
	}
	return
}

func (cf *CutFab) IsAllocated() bool { return cf.data != nil }
func (cf *CutFab) Box() grid.Box     { return cf.box }
func (cf *CutFab) NComp() int        { return cf.nComp }

// Fab returns the backing array, nil for an Empty store
func (cf *CutFab) Fab() *fab.Fab { return cf.data }

/*
CopyFromMem unpacks ncomp planes of dstBox from src. The returned byte count
is the same whether or not the store is allocated, so callers walking a packed
buffer over many patches advance their cursor uniformly. An Empty store never
reads src.
*/
func (cf *CutFab) CopyFromMem(dstBox grid.Box, dstComp, ncomp int, src []float64) (nbytes int) {
	if cf.data == nil {
		return fab.BytesPerValue * dstBox.NumPts() * ncomp
	}
	return cf.data.CopyFromMem(dstBox, dstComp, ncomp, src)
}

// CopyToMem is the packing side of CopyFromMem; an Empty store never writes dst
func (cf *CutFab) CopyToMem(srcBox grid.Box, srcComp, ncomp int, dst []float64) (nbytes int) {
	if cf.data == nil {
		return fab.BytesPerValue * srcBox.NumPts() * ncomp
	}
	return cf.data.CopyToMem(srcBox, srcComp, ncomp, dst)
}

// Copy is a no-op on an Empty store. An allocated store requires an
// allocated source of matching shape.
func (cf *CutFab) Copy(src *CutFab, srcBox grid.Box, srcComp int, dstBox grid.Box, dstComp, ncomp int) *CutFab {
	if cf.data == nil {
		return cf
	}
	if src.data == nil {
		panic(fmt.Errorf("%w: copy into an allocated store from an empty one", utils.ErrShapeMismatch))
	}
	cf.data.Copy(src.data, srcBox, srcComp, dstBox, dstComp, ncomp)
	return cf
}

func (cf *CutFab) SetVal(v float64) {
	if cf.data == nil {
		return
	}
	cf.data.SetVal(v)
}

// Get reports ok == false for an Empty store
func (cf *CutFab) Get(iv grid.IntVect, comp int) (v float64, ok bool) {
	if cf.data == nil {
		return 0, false
	}
	return cf.data.Get(iv, comp), true
}

func (cf *CutFab) Set(iv grid.IntVect, comp int, v float64) {
	if cf.data == nil {
		return
	}
	cf.data.Set(iv, comp, v)
}
