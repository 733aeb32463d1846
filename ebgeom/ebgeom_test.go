package ebgeom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/ebtensor/grid"
)

func TestClassification(t *testing.T) {
	var (
		domain = grid.NewBox(grid.IntVect{0, 0, 0}, grid.IntVect{7, 7, 0}, 2)
		geom   = grid.NewGeometry(domain, [3]float64{0, 0, 0}, [3]float64{1, 1, 0}, [3]bool{})
		ba     = grid.NewBoxArray(domain, 4)
		dc     = grid.NewDecomposition(ba, grid.NewContiguousMapping(1, len(ba)))
	)
	{ // Circle of radius 0.2 centred in patch 0
		circle := Sphere{Center: [3]float64{0.25, 0.25, 0}, Radius: 0.2, Dim: 2}
		ff := NewFlagFieldFromImplicit(dc, geom, 1, circle)
		assert.Equal(t, Covered, ff.CellType(0, grid.IntVect{1, 1, 0}))
		assert.Equal(t, Regular, ff.CellType(3, grid.IntVect{6, 6, 0}))
		assert.Equal(t, SingleValued, ff.CellType(0, grid.IntVect{0, 0, 0}))
		assert.True(t, ff.ContainsNonRegular(0, ba[0]))
		assert.False(t, ff.ContainsNonRegular(3, ba[3]))
		// The grown region of patch 1 reaches the cut cells of patch 0
		assert.False(t, ff.ContainsNonRegular(1, ba[1]))
		assert.True(t, ff.ContainsNonRegular(1, ba[1].Grow(1)))
		stats := ff.Stats()
		assert.Equal(t, 64, stats[Regular]+stats[SingleValued]+stats[Covered])
		assert.Equal(t, 4, stats[Covered])
	}
	{ // Explicit flags
		ff := NewFlagField(dc, geom, 0)
		assert.False(t, ff.ContainsNonRegular(0, ba[0]))
		ff.SetCellType(0, grid.IntVect{2, 2, 0}, SingleValued)
		assert.True(t, ff.ContainsNonRegular(0, ba[0]))
		assert.False(t, ff.ContainsNonRegular(0, grid.NewBox(grid.IntVect{0, 0, 0}, grid.IntVect{1, 1, 0}, 2)))
		assert.Equal(t, "SingleValued", ff.CellType(0, grid.IntVect{2, 2, 0}).String())
		assert.True(t, ff.Covers(0, ba[0]))
		assert.False(t, ff.Covers(0, ba[0].Grow(1)))
		assert.False(t, ff.Covers(grid.PatchIndex(len(ba)), ba[0]))
	}
	{
		u := Union{Sphere{Radius: 1, Dim: 2}, Plane{Normal: [3]float64{1, 0, 0}}}
		assert.Equal(t, -0.5, u.Value([3]float64{0.5, 0, 0}))
		assert.Equal(t, 0.5, Complement{u}.Value([3]float64{0.5, 0, 0}))
		assert.Equal(t, 2., ImplicitFunc(func(x [3]float64) float64 { return 2 * x[0] }).Value([3]float64{1}))
	}
}
