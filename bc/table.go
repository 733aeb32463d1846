package bc

import (
	"fmt"

	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// FaceCondition is the kind and the distance from the last interior cell
// centre to the boundary, in physical units
type FaceCondition struct {
	Kind BCType
	Dist float64
}

// Table holds one FaceCondition per face and component of a patch. Faces are
// indexed low faces first, as grid.Orientation.Index.
type Table struct {
	Dim, NComp int
	conds      [][]FaceCondition
}

func NewTable(dim, ncomp int) (t *Table) {
	t = &Table{Dim: dim, NComp: ncomp, conds: make([][]FaceCondition, grid.NumFaces(dim))}
	for iface := range t.conds {
		t.conds[iface] = make([]FaceCondition, ncomp)
	}
	return
}

func (t *Table) Set(o grid.Orientation, comp int, kind BCType, dist float64) {
	t.conds[o.Index(t.Dim)][comp] = FaceCondition{Kind: kind, Dist: dist}
}

func (t *Table) Get(o grid.Orientation, comp int) FaceCondition {
	return t.conds[o.Index(t.Dim)][comp]
}

func (t *Table) Kind(o grid.Orientation, comp int) BCType { return t.Get(o, comp).Kind }

func (t *Table) Dist(o grid.Orientation, comp int) float64 { return t.Get(o, comp).Dist }

// HasPhysical reports whether any component extrapolates on face o
func (t *Table) HasPhysical(o grid.Orientation) bool {
	for _, c := range t.conds[o.Index(t.Dim)] {
		if c.Kind.IsPhysical() {
			return true
		}
	}
	return false
}

// FaceBCs gives per face (low faces first) the kind of every component
type FaceBCs [][]BCType

// UniformBCs applies the same kind to all components of every face
func UniformBCs(dim, ncomp int, kind BCType) (fb FaceBCs) {
	fb = make(FaceBCs, grid.NumFaces(dim))
	for iface := range fb {
		fb[iface] = make([]BCType, ncomp)
		for n := range fb[iface] {
			fb[iface][n] = kind
		}
	}
	return
}

// Validate checks the shape of fb and its consistency with the periodic
// directions of geom
func (fb FaceBCs) Validate(geom grid.Geometry, ncomp int) error {
	dim := geom.Dim()
	if len(fb) != grid.NumFaces(dim) {
		return fmt.Errorf("%w: %d faces of boundary conditions for a %dD domain",
			utils.ErrShapeMismatch, len(fb), dim)
	}
	for iface, kinds := range fb {
		o := grid.OrientationFromIndex(iface, dim)
		if len(kinds) != ncomp {
			return fmt.Errorf("%w: face %d has %d components, want %d",
				utils.ErrShapeMismatch, iface, len(kinds), ncomp)
		}
		for n, kind := range kinds {
			if (kind == BCPeriodic) != geom.Periodic[o.Dir] {
				return fmt.Errorf("%w: face %d component %d is %s but direction %d periodic is %t",
					utils.ErrConfiguration, iface, n, kind, o.Dir, geom.Periodic[o.Dir])
			}
		}
	}
	return nil
}
