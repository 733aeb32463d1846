// Package tensor layers the cross coupled part of a viscous stress operator
// on top of a scalar multigrid operator.
package tensor

import (
	"fmt"

	"github.com/notargets/ebtensor/bc"
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

/*
BoundaryFiller fills the edge and corner ghost cells of a vector field at
physical boundaries. The face ghost cells must already hold their final
values; the edges read them and the corners read the edges.

A ghost cell touching k boundary faces is resolved face by face: a face
takes part when its own ghost slab next to the cell is a boundary according
to the mask, and then extrapolates inward along its normal as the face fill
does. The cell gets the average of the participating faces. Cells over valid
data, and cells with no participating face, keep their value.
*/
type BoundaryFiller struct {
	Order int
}

func NewBoundaryFiller(order int) (*BoundaryFiller, error) {
	if err := bc.ValidateOrder(order); err != nil {
		return nil, err
	}
	return &BoundaryFiller{Order: order}, nil
}

// FillEdges fills the twelve edges of a 3D patch and returns the number of
// cells written. 2D patches have no edges.
func (bf *BoundaryFiller) FillEdges(vel *fab.Fab, pd bc.PatchData, dxinv [3]float64, inhomogeneous bool) (nfilled int) {
	if pd.Box.Dim != 3 {
		return
	}
	bf.checkField(vel, pd)
	for d1 := 0; d1 < 3; d1++ {
		for d2 := d1 + 1; d2 < 3; d2++ {
			for _, s1 := range []grid.Side{grid.Low, grid.High} {
				for _, s2 := range []grid.Side{grid.Low, grid.High} {
					faces := []grid.Orientation{{Dir: d1, Side: s1}, {Dir: d2, Side: s2}}
					nfilled += bf.fillRegion(vel, pd, faces, dxinv, inhomogeneous)
				}
			}
		}
	}
	return
}

// FillCorners fills the 4 corners of a 2D patch or the 8 of a 3D patch
func (bf *BoundaryFiller) FillCorners(vel *fab.Fab, pd bc.PatchData, dxinv [3]float64, inhomogeneous bool) (nfilled int) {
	bf.checkField(vel, pd)
	dim := pd.Box.Dim
	for corner := 0; corner < 1<<dim; corner++ {
		faces := make([]grid.Orientation, dim)
		for d := 0; d < dim; d++ {
			faces[d] = grid.Orientation{Dir: d, Side: grid.Side((corner >> d) & 1)}
		}
		nfilled += bf.fillRegion(vel, pd, faces, dxinv, inhomogeneous)
	}
	return
}

// Fill runs the edges, then the corners
func (bf *BoundaryFiller) Fill(vel *fab.Fab, pd bc.PatchData, dxinv [3]float64, inhomogeneous bool) (edges, corners int) {
	edges = bf.FillEdges(vel, pd, dxinv, inhomogeneous)
	corners = bf.FillCorners(vel, pd, dxinv, inhomogeneous)
	return
}

func (bf *BoundaryFiller) checkField(vel *fab.Fab, pd bc.PatchData) {
	if !vel.Box().ContainsBox(pd.Box.Grow(1)) {
		panic(fmt.Errorf("%w: edge and corner fill needs one ghost cell, have %v for %v",
			utils.ErrShapeMismatch, vel.Box(), pd.Box))
	}
}

// fillRegion fills the ghost cells lying across all of faces at once
func (bf *BoundaryFiller) fillRegion(vel *fab.Fab, pd bc.PatchData, faces []grid.Orientation,
	dxinv [3]float64, inhomogeneous bool) (nfilled int) {
	var (
		region = pd.Box
		ncomp  = min(vel.NComp(), pd.Table.NComp)
		sum    = make([]float64, ncomp)
		count  = make([]int, ncomp)
	)
	for _, o := range faces {
		region = region.AdjCell(o, 1)
	}
	region.ForEach(func(g grid.IntVect) {
		if !pd.IsBoundary(faces[0], g) {
			return
		}
		for n := range sum {
			sum[n], count[n] = 0, 0
		}
		for _, o := range faces {
			// The face ghost next to g, stepped back inside along the other faces
			nb := g
			for _, other := range faces {
				if other != o {
					nb = nb.Add(grid.Unit(other.Dir, other.InwardStep()))
				}
			}
			if !pd.IsBoundary(o, nb) {
				continue
			}
			for n := 0; n < ncomp; n++ {
				if v, ok := pd.Extrapolate(vel, o, g, n, bf.Order, 1./dxinv[o.Dir], inhomogeneous); ok {
					sum[n] += v
					count[n]++
				}
			}
		}
		var written bool
		for n := 0; n < ncomp; n++ {
			if count[n] > 0 {
				vel.Set(g, n, sum[n]/float64(count[n]))
				written = true
			}
		}
		if written {
			nfilled++
		}
	})
	return
}
