package bc

import (
	"fmt"
	"math"

	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// MaxOrder is the highest Dirichlet extrapolation order, using two interior
// cells
const MaxOrder = 2

func ValidateOrder(order int) error {
	if order < 1 || order > MaxOrder {
		return fmt.Errorf("%w: extrapolation order %d, want 1..%d", utils.ErrConfiguration, order, MaxOrder)
	}
	return nil
}

/*
ExtrapolateGhost returns the ghost value across a boundary face from the
interior values along the inward normal, interior[0] being the cell next to
the face. Positions are measured inward from the face in cells: interior
centres at 0.5, 1.5, the ghost centre at -0.5 and the boundary point at
0.5 - dist/dx.

	Dirichlet:  Lagrange polynomial through (boundary, bval) and the interior
	            points, evaluated at the ghost centre. Interior points that
	            coincide with the boundary point are dropped.
	Neumann:    interior[0] + bval*dx, bval the outward normal derivative
	ReflectOdd: -interior[0]

ok is false for kinds that do not extrapolate.
*/
func ExtrapolateGhost(kind BCType, dist, dx float64, interior []float64, bval float64) (ghost float64, ok bool) {
	switch kind {
	case BCNeumann:
		return interior[0] + bval*dx, true
	case BCReflectOdd:
		return -interior[0], true
	case BCDirichlet:
	default:
		return 0, false
	}
	var (
		xs [MaxOrder + 1]float64
		ys [MaxOrder + 1]float64
		np = 1
	)
	xs[0], ys[0] = 0.5-dist/dx, bval
	for k, v := range interior {
		xk := 0.5 + float64(k)
		if math.Abs(xk-xs[0]) < 1.e-10 {
			continue
		}
		xs[np], ys[np] = xk, v
		np++
	}
	const xg = -0.5
	for i := 0; i < np; i++ {
		w := 1.
		for j := 0; j < np; j++ {
			if j != i {
				w *= (xg - xs[j]) / (xs[i] - xs[j])
			}
		}
		ghost += w * ys[i]
	}
	return ghost, true
}

// PatchData gathers the boundary description of one patch for ghost fills
type PatchData struct {
	Box    grid.Box
	Table  *Table
	Masks  []*fab.IFab // per face
	Values []*fab.Fab  // per face, nil entries are homogeneous
}

// Gather collects the data of patch p; bv may be nil
func Gather(m Model, bv *Values, dc *grid.Decomposition, p grid.PatchIndex) (pd PatchData) {
	dim := dc.Dim()
	pd = PatchData{
		Box:    dc.Box(p),
		Table:  m.Table(p),
		Masks:  make([]*fab.IFab, grid.NumFaces(dim)),
		Values: make([]*fab.Fab, grid.NumFaces(dim)),
	}
	for _, o := range grid.Orientations(dim) {
		pd.Masks[o.Index(dim)] = m.Mask(p, o)
		pd.Values[o.Index(dim)] = bv.Face(p, o)
	}
	return
}

func (pd PatchData) Mask(o grid.Orientation) *fab.IFab { return pd.Masks[o.Index(pd.Box.Dim)] }

// IsBoundary reports whether the face o ghost slab at iv lies on a domain
// boundary rather than over valid data
func (pd PatchData) IsBoundary(o grid.Orientation, iv grid.IntVect) bool {
	return pd.Mask(o).Get(iv) != MaskInterior
}

/*
Extrapolate computes the component comp ghost value at g across face o from
the cells stepping inward from g. The number of interior cells used is
min(order, patch length normal to o). Boundary data are read only when
inhomogeneous is set and the face has data.
*/
func (pd PatchData) Extrapolate(f *fab.Fab, o grid.Orientation, g grid.IntVect, comp, order int,
	dx float64, inhomogeneous bool) (v float64, ok bool) {
	fc := pd.Table.Get(o, comp)
	if !fc.Kind.IsPhysical() {
		return 0, false
	}
	var (
		line [MaxOrder]float64
		n    = min(order, pd.Box.Length(o.Dir), MaxOrder)
		step = o.InwardStep()
		bval float64
	)
	for k := 0; k < n; k++ {
		line[k] = f.Get(g.Add(grid.Unit(o.Dir, (k+1)*step)), comp)
	}
	if bf := pd.Values[o.Index(pd.Box.Dim)]; inhomogeneous && bf != nil {
		bval = bf.Get(g, comp)
	}
	return ExtrapolateGhost(fc.Kind, fc.Dist, dx, line[:n], bval)
}

// FillFaces sets the face ghost cells of every physical face of the patch,
// not the edges or corners. Ghosts over valid data are left for the
// exchange.
func (pd PatchData) FillFaces(f *fab.Fab, order int, dxinv [3]float64, inhomogeneous bool) {
	if !f.Box().ContainsBox(pd.Box.Grow(1)) {
		panic(fmt.Errorf("%w: face fill needs one ghost cell, have %v for %v",
			utils.ErrShapeMismatch, f.Box(), pd.Box))
	}
	for _, o := range grid.Orientations(pd.Box.Dim) {
		if !pd.Table.HasPhysical(o) {
			continue
		}
		dx := 1. / dxinv[o.Dir]
		pd.Box.AdjCell(o, 1).ForEach(func(g grid.IntVect) {
			if !pd.IsBoundary(o, g) {
				return
			}
			for n := 0; n < min(f.NComp(), pd.Table.NComp); n++ {
				if v, ok := pd.Extrapolate(f, o, g, n, order, dx, inhomogeneous); ok {
					f.Set(g, n, v)
				}
			}
		})
	}
}
