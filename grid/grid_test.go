package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	{ // 2D boxes keep a degenerate third axis
		b := NewBox(IntVect{0, 0, 5}, IntVect{3, 3, 9}, 2)
		assert.Equal(t, 16, b.NumPts())
		assert.Equal(t, 0, b.Lo[2])
		g := b.Grow(1)
		assert.Equal(t, IntVect{-1, -1, 0}, g.Lo)
		assert.Equal(t, IntVect{4, 4, 0}, g.Hi)
		assert.Equal(t, 36, g.NumPts())
	}
	{ // Intersection and containment
		a := NewBox(IntVect{0, 0, 0}, IntVect{7, 7, 7}, 3)
		b := NewBox(IntVect{4, 6, -2}, IntVect{10, 10, 2}, 3)
		r, ok := a.Intersect(b)
		require.True(t, ok)
		assert.Equal(t, IntVect{4, 6, 0}, r.Lo)
		assert.Equal(t, IntVect{7, 7, 2}, r.Hi)
		_, ok = a.Intersect(b.Shift(IntVect{20, 0, 0}))
		assert.False(t, ok)
		assert.True(t, a.ContainsBox(r))
	}
	{ // Faces, slabs and linear indexing
		b := NewBox(IntVect{0, 0, 0}, IntVect{3, 1, 0}, 2)
		assert.Equal(t, 10, b.SurroundingNodes(0).NumPts())
		lo := b.AdjCell(Orientation{0, Low}, 1)
		assert.Equal(t, IntVect{-1, 0, 0}, lo.Lo)
		assert.Equal(t, IntVect{-1, 1, 0}, lo.Hi)
		hi := b.AdjCell(Orientation{1, High}, 2)
		assert.Equal(t, IntVect{0, 2, 0}, hi.Lo)
		assert.Equal(t, IntVect{3, 3, 0}, hi.Hi)
		assert.Equal(t, 0, b.Index(IntVect{0, 0, 0}))
		assert.Equal(t, 5, b.Index(IntVect{1, 1, 0}))
		var n int
		b.ForEach(func(iv IntVect) {
			assert.Equal(t, n, b.Index(iv))
			n++
		})
		assert.Equal(t, b.NumPts(), n)
	}
	{ // Coarsening rounds toward minus infinity
		b := NewBox(IntVect{-4, 0, 0}, IntVect{7, 3, 0}, 2)
		c := b.Coarsen(2)
		assert.Equal(t, IntVect{-2, 0, 0}, c.Lo)
		assert.Equal(t, IntVect{3, 1, 0}, c.Hi)
		assert.Equal(t, b, c.Refine(2))
		assert.Equal(t, -1, floorDiv(-1, 2))
	}
}

func TestOrientation(t *testing.T) {
	faces := Orientations(3)
	require.Len(t, faces, 6)
	for iface, o := range faces {
		assert.Equal(t, iface, o.Index(3))
		assert.Equal(t, o, OrientationFromIndex(iface, 3))
	}
	assert.Equal(t, Orientation{1, High}, faces[4])
	assert.Equal(t, 1, faces[0].InwardStep())
	assert.Equal(t, -1, faces[5].InwardStep())
	assert.Equal(t, Orientation{2, Low}, faces[5].Flip())
}

func TestPeriodicity(t *testing.T) {
	domain := NewBox(IntVect{0, 0, 0}, IntVect{7, 3, 0}, 2)
	assert.Equal(t, []IntVect{{0, 0, 0}}, NonPeriodic().Shifts())
	p := Periodicity{Period: IntVect{8, 0, 0}}
	assert.Equal(t, []IntVect{{0, 0, 0}, {-8, 0, 0}, {8, 0, 0}}, p.Shifts())
	assert.Equal(t, IntVect{7, 2, 0}, p.Wrap(IntVect{-1, 2, 0}, domain))
	assert.Equal(t, IntVect{0, 5, 0}, p.Wrap(IntVect{8, 5, 0}, domain))
	p2 := Periodicity{Period: IntVect{8, 4, 0}}
	assert.Len(t, p2.Shifts(), 9)

	g := NewGeometry(domain, [3]float64{0, 0, 0}, [3]float64{2, 1, 0}, [3]bool{true, false, true})
	assert.Equal(t, p, g.Periodicity())
	assert.InDelta(t, 0.25, g.CellSize[0], 1e-15)
	assert.Equal(t, [3]float64{4, 4, 1}, g.InvCellSize())
	assert.InDelta(t, 0.375, g.CellCenter(IntVect{1, 1, 0})[1], 1e-15)
	gc := g.Coarsen(2)
	assert.Equal(t, 0.5, gc.CellSize[0])
	assert.Equal(t, 4, gc.Domain.Length(0))
}

func TestDecomposition(t *testing.T) {
	domain := NewBox(IntVect{0, 0, 0}, IntVect{15, 7, 0}, 2)
	ba := NewBoxArray(domain, 4)
	require.Len(t, ba, 8)
	assert.Equal(t, domain.NumPts(), ba.NumPts())
	assert.Equal(t, domain, ba.MinimalBox())
	assert.True(t, ba.Coarsenable(2))
	assert.False(t, NewBoxArray(domain, 3).Coarsenable(2))
	assert.Equal(t, []int{0, 1, 4, 5}, ba.Intersections(NewBox(IntVect{2, 2, 0}, IntVect{5, 5, 0}, 2)))

	dm := NewContiguousMapping(3, len(ba))
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 2, 2}, dm.Owners)
	assert.Equal(t, []PatchIndex{6, 7}, dm.PatchesOf(2))
	assert.Equal(t, []int{48, 48, 32}, dm.RankLoads(ba))

	dc := NewDecomposition(ba, dm)
	assert.Equal(t, 2, dc.Dim())
	assert.Len(t, dc.LocalPatches(), 8)
	assert.True(t, dc.Equal(NewDecomposition(ba, NewContiguousMapping(3, len(ba)))))
	assert.False(t, dc.Equal(NewDecomposition(ba, NewContiguousMapping(2, len(ba)))))
	cdc := dc.Coarsen(2)
	assert.Equal(t, NewBox(IntVect{0, 0, 0}, IntVect{1, 1, 0}, 2), cdc.Box(0))
	assert.Equal(t, 1, cdc.Owner(3))

	single, err := NewMetisMapping(ba, 1, 0.05)
	require.NoError(t, err)
	assert.Equal(t, make([]int, len(ba)), single.Owners)

	xadj, adjncy, vwgt, adjwgt := buildPatchGraph(ba)
	assert.Len(t, xadj, len(ba)+1)
	assert.Equal(t, int32(16), vwgt[0])
	assert.Equal(t, len(adjncy), len(adjwgt))
	// Patch 0 touches 1, 4 and 5 (corner)
	assert.Equal(t, []int32{1, 4, 5}, adjncy[xadj[0]:xadj[1]])
	assert.Equal(t, []int32{8, 8, 2}, adjwgt[xadj[0]:xadj[1]])
	{ // METIS needs w(p,q) == w(q,p), also between patches of different size
		uneven := BoxArray{
			NewBox(IntVect{0, 0, 0}, IntVect{3, 7, 0}, 2),
			NewBox(IntVect{4, 0, 0}, IntVect{7, 3, 0}, 2),
			NewBox(IntVect{4, 4, 0}, IntVect{7, 7, 0}, 2),
		}
		xadj, adjncy, _, adjwgt := buildPatchGraph(uneven)
		weight := func(p, q int) int32 {
			for k := xadj[p]; k < xadj[p+1]; k++ {
				if adjncy[k] == int32(q) {
					return adjwgt[k]
				}
			}
			return 0
		}
		for p := range uneven {
			for q := range uneven {
				assert.Equal(t, weight(p, q), weight(q, p))
			}
		}
		assert.Equal(t, int32(9), weight(0, 1))
	}
}
