// Package fab holds dense per-patch arrays and their distributed collections
package fab

import (
	"fmt"

	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// BytesPerValue is the size of one stored real
const BytesPerValue = 8

/*
Fab is a dense array of NComp real planes over a box. Planes are stored one
after another and each plane is laid out with i fastest, so a component plane
is a contiguous slice.
*/
type Fab struct {
	box   grid.Box
	nComp int
	data  []float64
}

func NewFab(box grid.Box, nComp int) *Fab {
	if !box.Ok() || nComp < 1 {
		panic(fmt.Errorf("%w: fab needs a valid box and at least one component, have %v, %d",
			utils.ErrShapeMismatch, box, nComp))
	}
	return &Fab{box: box, nComp: nComp, data: make([]float64, box.NumPts()*nComp)}
}

func (f *Fab) Box() grid.Box   { return f.box }
func (f *Fab) NComp() int      { return f.nComp }
func (f *Fab) Data() []float64 { return f.data }
func (f *Fab) index(iv grid.IntVect, comp int) int {
	return comp*f.box.NumPts() + f.box.Index(iv)
}

func (f *Fab) Plane(comp int) []float64 {
	np := f.box.NumPts()
	return f.data[comp*np : (comp+1)*np]
}

func (f *Fab) Get(iv grid.IntVect, comp int) float64 { return f.data[f.index(iv, comp)] }

func (f *Fab) Set(iv grid.IntVect, comp int, v float64) { f.data[f.index(iv, comp)] = v }

func (f *Fab) Add(iv grid.IntVect, comp int, v float64) { f.data[f.index(iv, comp)] += v }

func (f *Fab) SetVal(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

func (f *Fab) SetValBox(box grid.Box, comp, ncomp int, v float64) {
	f.checkRange(box, comp, ncomp)
	for n := comp; n < comp+ncomp; n++ {
		box.ForEach(func(iv grid.IntVect) { f.Set(iv, n, v) })
	}
}

func (f *Fab) Clone() *Fab {
	c := &Fab{box: f.box, nComp: f.nComp, data: make([]float64, len(f.data))}
	copy(c.data, f.data)
	return c
}

// Copy copies ncomp planes of src restricted to srcBox into dstBox of f
func (f *Fab) Copy(src *Fab, srcBox grid.Box, srcComp int, dstBox grid.Box, dstComp, ncomp int) *Fab {
	if !srcBox.SameShape(dstBox) {
		panic(fmt.Errorf("%w: copy from %v into %v", utils.ErrShapeMismatch, srcBox, dstBox))
	}
	src.checkRange(srcBox, srcComp, ncomp)
	f.checkRange(dstBox, dstComp, ncomp)
	offset := dstBox.Lo.Sub(srcBox.Lo)
	for n := 0; n < ncomp; n++ {
		srcBox.ForEach(func(iv grid.IntVect) {
			f.Set(iv.Add(offset), dstComp+n, src.Get(iv, srcComp+n))
		})
	}
	return f
}

// CopyToMem packs box/comps into dst and returns the number of bytes written
func (f *Fab) CopyToMem(srcBox grid.Box, srcComp, ncomp int, dst []float64) (nbytes int) {
	f.checkRange(srcBox, srcComp, ncomp)
	npts := srcBox.NumPts()
	if len(dst) < npts*ncomp {
		panic(fmt.Errorf("%w: buffer of %d values for %d", utils.ErrShapeMismatch, len(dst), npts*ncomp))
	}
	var ind int
	for n := srcComp; n < srcComp+ncomp; n++ {
		srcBox.ForEach(func(iv grid.IntVect) {
			dst[ind] = f.Get(iv, n)
			ind++
		})
	}
	return BytesPerValue * npts * ncomp
}

// CopyFromMem unpacks src into box/comps and returns the number of bytes read
func (f *Fab) CopyFromMem(dstBox grid.Box, dstComp, ncomp int, src []float64) (nbytes int) {
	f.checkRange(dstBox, dstComp, ncomp)
	npts := dstBox.NumPts()
	if len(src) < npts*ncomp {
		panic(fmt.Errorf("%w: buffer of %d values for %d", utils.ErrShapeMismatch, len(src), npts*ncomp))
	}
	var ind int
	for n := dstComp; n < dstComp+ncomp; n++ {
		dstBox.ForEach(func(iv grid.IntVect) {
			f.Set(iv, n, src[ind])
			ind++
		})
	}
	return BytesPerValue * npts * ncomp
}

func (f *Fab) checkRange(box grid.Box, comp, ncomp int) {
	if comp < 0 || ncomp < 0 || comp+ncomp > f.nComp {
		panic(fmt.Errorf("%w: components [%d,%d) of %d", utils.ErrShapeMismatch, comp, comp+ncomp, f.nComp))
	}
	if !f.box.ContainsBox(box) {
		panic(fmt.Errorf("%w: region %v outside %v", utils.ErrShapeMismatch, box, f.box))
	}
}

// IFab is the integer companion of Fab, used for masks and cell flags
type IFab struct {
	box  grid.Box
	data []int8
}

func NewIFab(box grid.Box) *IFab {
	return &IFab{box: box, data: make([]int8, box.NumPts())}
}

func (f *IFab) Box() grid.Box                 { return f.box }
func (f *IFab) Get(iv grid.IntVect) int8      { return f.data[f.box.Index(iv)] }
func (f *IFab) Set(iv grid.IntVect, v int8)   { f.data[f.box.Index(iv)] = v }
func (f *IFab) Contains(iv grid.IntVect) bool { return f.box.Contains(iv) }

func (f *IFab) SetVal(v int8) {
	for i := range f.data {
		f.data[i] = v
	}
}
