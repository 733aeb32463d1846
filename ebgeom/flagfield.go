package ebgeom

import (
	"fmt"

	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

/*
FlagField stores a CellType for every cell of every patch grown by NGrow. It
is the geometry classification the cut cell containers are built against.
*/
type FlagField struct {
	Decomp *grid.Decomposition
	Geom   grid.Geometry
	NGrow  int
	flags  []*fab.IFab
}

// NewFlagField returns an all regular field, to be refined with SetCellType
func NewFlagField(dc *grid.Decomposition, geom grid.Geometry, ngrow int) (ff *FlagField) {
	ff = &FlagField{
		Decomp: dc,
		Geom:   geom,
		NGrow:  ngrow,
		flags:  make([]*fab.IFab, dc.NumPatches()),
	}
	for _, p := range dc.LocalPatches() {
		ff.flags[p] = fab.NewIFab(dc.Box(p).Grow(ngrow))
		ff.flags[p].SetVal(int8(Regular))
	}
	return
}

/*
NewFlagFieldFromImplicit samples f at the corner nodes of each cell: a cell
whose corners all lie in the fluid is regular, all in the body is covered, and
anything else is cut.
*/
func NewFlagFieldFromImplicit(dc *grid.Decomposition, geom grid.Geometry, ngrow int,
	f ImplicitFunction) (ff *FlagField) {
	ff = NewFlagField(dc, geom, ngrow)
	patches := dc.LocalPatches()
	utils.DefaultRunner.ForEach(len(patches), func(_, i int) {
		p := patches[i]
		ff.flags[p].Box().ForEach(func(iv grid.IntVect) {
			ff.flags[p].Set(iv, int8(ClassifyCell(geom, iv, f)))
		})
	})
	return
}

func ClassifyCell(geom grid.Geometry, iv grid.IntVect, f ImplicitFunction) CellType {
	var (
		dim            = geom.Dim()
		nFluid, nSolid int
	)
	for corner := 0; corner < 1<<dim; corner++ {
		node := iv
		for d := 0; d < dim; d++ {
			node[d] += (corner >> d) & 1
		}
		v := f.Value(geom.NodeLocation(node))
		if v >= 0 {
			nFluid++
		}
		if v <= 0 {
			nSolid++
		}
	}
	switch {
	case nFluid == 1<<dim:
		return Regular
	case nSolid == 1<<dim:
		return Covered
	}
	return SingleValued
}

func (ff *FlagField) SetCellType(p grid.PatchIndex, iv grid.IntVect, ct CellType) {
	ff.flags[p].Set(iv, int8(ct))
}

func (ff *FlagField) CellType(p grid.PatchIndex, iv grid.IntVect) CellType {
	f := ff.flags[p]
	if !f.Contains(iv) {
		panic(fmt.Errorf("%w: cell %v outside the flags of patch %d", utils.ErrShapeMismatch, iv, p))
	}
	return CellType(f.Get(iv))
}

func (ff *FlagField) Covers(p grid.PatchIndex, region grid.Box) bool {
	if int(p) < 0 || int(p) >= len(ff.flags) || ff.flags[p] == nil {
		return false
	}
	return ff.flags[p].Box().ContainsBox(region)
}

// ContainsNonRegular only looks at the part of region the flags cover
func (ff *FlagField) ContainsNonRegular(p grid.PatchIndex, region grid.Box) (found bool) {
	f := ff.flags[p]
	region, ok := region.Intersect(f.Box())
	if !ok {
		return false
	}
	region.ForEach(func(iv grid.IntVect) {
		if !found && CellType(f.Get(iv)) != Regular {
			found = true
		}
	})
	return
}

// Stats counts the valid cells of each type
func (ff *FlagField) Stats() (counts map[CellType]int) {
	counts = make(map[CellType]int)
	for _, p := range ff.Decomp.LocalPatches() {
		ff.Decomp.Box(p).ForEach(func(iv grid.IntVect) {
			counts[ff.CellType(p, iv)]++
		})
	}
	return
}
