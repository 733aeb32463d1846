package bc

import (
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
)

/*
Values holds the prescribed boundary data of every patch face: the value for
Dirichlet components and the outward normal derivative for Neumann ones. The
data of a face lives on MaskBox of that face, one entry per ghost cell at its
tangential position. A nil *Values stands for homogeneous data everywhere.
*/
type Values struct {
	Dim, NComp int
	fabs       [][]*fab.Fab // [patch][face]
}

func NewValues(dc *grid.Decomposition, ncomp int) (bv *Values) {
	dim := dc.Dim()
	bv = &Values{Dim: dim, NComp: ncomp, fabs: make([][]*fab.Fab, dc.NumPatches())}
	for _, p := range dc.LocalPatches() {
		bv.fabs[p] = make([]*fab.Fab, grid.NumFaces(dim))
		for _, o := range grid.Orientations(dim) {
			bv.fabs[p][o.Index(dim)] = fab.NewFab(MaskBox(dc.Box(p), o), ncomp)
		}
	}
	return
}

// Face returns the data of face o of patch p, nil when homogeneous
func (bv *Values) Face(p grid.PatchIndex, o grid.Orientation) *fab.Fab {
	if bv == nil {
		return nil
	}
	return bv.fabs[p][o.Index(bv.Dim)]
}

// SetFunc evaluates fn at the boundary point of every ghost cell: the ghost
// cell centre moved onto the face it lies behind
func (bv *Values) SetFunc(dc *grid.Decomposition, geom grid.Geometry,
	fn func(o grid.Orientation, comp int, x [3]float64) float64) {
	for _, p := range dc.LocalPatches() {
		vbox := dc.Box(p)
		for _, o := range grid.Orientations(bv.Dim) {
			f := bv.Face(p, o)
			face := vbox.Lo[o.Dir]
			if o.Side == grid.High {
				face = vbox.Hi[o.Dir] + 1
			}
			f.Box().ForEach(func(iv grid.IntVect) {
				x := geom.CellCenter(iv)
				x[o.Dir] = geom.ProbLo[o.Dir] + float64(face)*geom.CellSize[o.Dir]
				for n := 0; n < bv.NComp; n++ {
					f.Set(iv, n, fn(o, n, x))
				}
			})
		}
	}
}

func (bv *Values) SetVal(v float64) {
	for _, faces := range bv.fabs {
		for _, f := range faces {
			if f != nil {
				f.SetVal(v)
			}
		}
	}
}
