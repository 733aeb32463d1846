// Package ebgeom classifies grid cells against an embedded boundary
package ebgeom

import (
	"github.com/notargets/ebtensor/grid"
)

type CellType int8

const (
	Regular      CellType = iota
	SingleValued          // cut by the embedded boundary
	Covered
)

func (ct CellType) String() string {
	switch ct {
	case Regular:
		return "Regular"
	case SingleValued:
		return "SingleValued"
	case Covered:
		return "Covered"
	}
	return "Unknown"
}

// Classification answers which cells of a patch are not plain regular cells.
// Implementations must outlive every container built against them.
type Classification interface {
	// Covers reports whether every cell of region has a classification
	Covers(p grid.PatchIndex, region grid.Box) bool
	ContainsNonRegular(p grid.PatchIndex, region grid.Box) bool
	CellType(p grid.PatchIndex, iv grid.IntVect) CellType
}
