package fab

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// CellCentered is the Face value of a cell centered MultiFab
const CellCentered = -1

/*
MultiFab owns one Fab per local patch of a decomposition. A cell centered
MultiFab covers each patch box grown by NGrow; a face centered one (Face = d)
covers the faces normal to d of the grown box.
*/
type MultiFab struct {
	Decomp *grid.Decomposition
	NComp  int
	NGrow  int
	Face   int
	Runner *utils.PatchRunner
	fabs   []*Fab
}

func NewMultiFab(dc *grid.Decomposition, ncomp, ngrow int) *MultiFab {
	return newMultiFab(dc, ncomp, ngrow, CellCentered)
}

func NewFaceMultiFab(dc *grid.Decomposition, dir, ncomp, ngrow int) *MultiFab {
	if dir < 0 || dir >= dc.Dim() {
		panic(fmt.Errorf("%w: face direction %d for a %dD decomposition", utils.ErrShapeMismatch, dir, dc.Dim()))
	}
	return newMultiFab(dc, ncomp, ngrow, dir)
}

func newMultiFab(dc *grid.Decomposition, ncomp, ngrow, face int) (mf *MultiFab) {
	mf = &MultiFab{
		Decomp: dc,
		NComp:  ncomp,
		NGrow:  ngrow,
		Face:   face,
		Runner: utils.DefaultRunner,
		fabs:   make([]*Fab, dc.NumPatches()),
	}
	for _, p := range dc.LocalPatches() {
		mf.fabs[p] = NewFab(mf.GrownBox(p), ncomp)
	}
	return
}

func (mf *MultiFab) Fab(p grid.PatchIndex) *Fab { return mf.fabs[p] }

func (mf *MultiFab) NumPatches() int { return len(mf.fabs) }

// ValidBox is the patch box, converted to faces when face centered
func (mf *MultiFab) ValidBox(p grid.PatchIndex) grid.Box {
	b := mf.Decomp.Box(p)
	if mf.Face != CellCentered {
		b = b.SurroundingNodes(mf.Face)
	}
	return b
}

func (mf *MultiFab) GrownBox(p grid.PatchIndex) grid.Box {
	b := mf.Decomp.Box(p).Grow(mf.NGrow)
	if mf.Face != CellCentered {
		b = b.SurroundingNodes(mf.Face)
	}
	return b
}

// SameLayout is true when both share decomposition, centering and components
func (mf *MultiFab) SameLayout(o *MultiFab) bool {
	return mf.Decomp.Equal(o.Decomp) && mf.Face == o.Face && mf.NComp == o.NComp
}

// ForEachPatch runs fn patch-parallel over all local patches
func (mf *MultiFab) ForEachPatch(fn func(p grid.PatchIndex, f *Fab)) {
	patches := mf.Decomp.LocalPatches()
	mf.Runner.ForEach(len(patches), func(_, i int) {
		p := patches[i]
		fn(p, mf.fabs[p])
	})
}

func (mf *MultiFab) SetVal(v float64) {
	mf.ForEachPatch(func(_ grid.PatchIndex, f *Fab) { f.SetVal(v) })
}

func (mf *MultiFab) Clone() *MultiFab {
	c := &MultiFab{
		Decomp: mf.Decomp,
		NComp:  mf.NComp,
		NGrow:  mf.NGrow,
		Face:   mf.Face,
		Runner: mf.Runner,
		fabs:   make([]*Fab, len(mf.fabs)),
	}
	for p, f := range mf.fabs {
		if f != nil {
			c.fabs[p] = f.Clone()
		}
	}
	return c
}

// Copy copies ncomp components of src into dst over the valid region grown by ngrow
func Copy(dst, src *MultiFab, srcComp, dstComp, ncomp, ngrow int) {
	if !dst.Decomp.Equal(src.Decomp) || dst.Face != src.Face || ngrow > dst.NGrow || ngrow > src.NGrow {
		panic(fmt.Errorf("%w: MultiFab copy between different layouts", utils.ErrShapeMismatch))
	}
	dst.ForEachPatch(func(p grid.PatchIndex, f *Fab) {
		b := dst.ValidBox(p).Grow(ngrow)
		f.Copy(src.Fab(p), b, srcComp, b, dstComp, ncomp)
	})
}

// Saxpy computes y += a*x on the valid region of comp
func (mf *MultiFab) Saxpy(a float64, x *MultiFab, comp int) {
	if !mf.SameLayout(x) {
		panic(fmt.Errorf("%w: saxpy between different layouts", utils.ErrShapeMismatch))
	}
	mf.ForEachPatch(func(p grid.PatchIndex, f *Fab) {
		xf := x.Fab(p)
		mf.ValidBox(p).ForEach(func(iv grid.IntVect) {
			f.Add(iv, comp, a*xf.Get(iv, comp))
		})
	})
}

// ValidValues gathers comp over every valid region, patches in order
func (mf *MultiFab) ValidValues(comp int) (vals []float64) {
	for p, f := range mf.fabs {
		mf.ValidBox(grid.PatchIndex(p)).ForEach(func(iv grid.IntVect) {
			vals = append(vals, f.Get(iv, comp))
		})
	}
	return
}

func (mf *MultiFab) Norm0(comp int) float64 {
	return floats.Norm(mf.ValidValues(comp), math.Inf(1))
}

func (mf *MultiFab) Norm1(comp int) float64 { return floats.Norm(mf.ValidValues(comp), 1) }

func (mf *MultiFab) Norm2(comp int) float64 { return floats.Norm(mf.ValidValues(comp), 2) }

func (mf *MultiFab) Min(comp int) float64 { return floats.Min(mf.ValidValues(comp)) }

func (mf *MultiFab) Max(comp int) float64 { return floats.Max(mf.ValidValues(comp)) }

func (mf *MultiFab) Sum(comp int) float64 { return floats.Sum(mf.ValidValues(comp)) }

/*
FillBoundary fills the ghost cells of every patch from the valid cells of its
neighbours, including periodic images. Ghost cells that neither a patch nor a
periodic image covers are left untouched; filling those is the business of
the boundary condition code.
*/
func (mf *MultiFab) FillBoundary(period grid.Periodicity) {
	if mf.Face != CellCentered {
		panic(fmt.Errorf("%w: FillBoundary needs a cell centered MultiFab", utils.ErrShapeMismatch))
	}
	if mf.NGrow == 0 {
		return
	}
	shifts := period.Shifts()
	mf.ForEachPatch(func(p grid.PatchIndex, f *Fab) {
		dstGrown := mf.GrownBox(p)
		for q := range mf.fabs {
			srcValid := mf.Decomp.Box(grid.PatchIndex(q))
			for _, s := range shifts {
				if q == int(p) && s == (grid.IntVect{}) {
					continue
				}
				ov, ok := dstGrown.Intersect(srcValid.Shift(s))
				if !ok {
					continue
				}
				f.Copy(mf.fabs[q], ov.Shift(grid.IntVect{}.Sub(s)), 0, ov, 0, mf.NComp)
			}
		}
	})
}
