package bc

import (
	"fmt"

	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// Model supplies the boundary description of each patch. Implementations are
// read only once built and may be shared by concurrent patch work.
type Model interface {
	Table(p grid.PatchIndex) *Table
	Mask(p grid.PatchIndex, o grid.Orientation) *fab.IFab
}

// DomainModel places the physical conditions on the faces of the domain box.
// Patch faces inside the domain are interior, faces on a periodic direction
// are periodic, and every physical face sits half a cell from the last
// interior cell centre.
type DomainModel struct {
	Decomp *grid.Decomposition
	Geom   grid.Geometry
	NComp  int
	BCs    FaceBCs
	tables []*Table
	masks  [][]*fab.IFab
}

func NewDomainModel(dc *grid.Decomposition, geom grid.Geometry, bcs FaceBCs) (m *DomainModel, err error) {
	if len(bcs) == 0 {
		return nil, fmt.Errorf("%w: no boundary conditions", utils.ErrConfiguration)
	}
	ncomp := len(bcs[0])
	if err = bcs.Validate(geom, ncomp); err != nil {
		return
	}
	if dc.Dim() != geom.Dim() {
		return nil, fmt.Errorf("%w: %dD decomposition on a %dD geometry",
			utils.ErrShapeMismatch, dc.Dim(), geom.Dim())
	}
	var (
		dim    = geom.Dim()
		domain = geom.Domain
	)
	m = &DomainModel{
		Decomp: dc,
		Geom:   geom,
		NComp:  ncomp,
		BCs:    bcs,
		tables: make([]*Table, dc.NumPatches()),
		masks:  make([][]*fab.IFab, dc.NumPatches()),
	}
	for _, p := range dc.LocalPatches() {
		vbox := dc.Box(p)
		t := NewTable(dim, ncomp)
		m.masks[p] = make([]*fab.IFab, grid.NumFaces(dim))
		for _, o := range grid.Orientations(dim) {
			m.masks[p][o.Index(dim)] = NewMask(dc, geom, p, o)
			onDomain := vbox.Lo[o.Dir] == domain.Lo[o.Dir]
			if o.Side == grid.High {
				onDomain = vbox.Hi[o.Dir] == domain.Hi[o.Dir]
			}
			for n := 0; n < ncomp; n++ {
				switch kind := bcs[o.Index(dim)][n]; {
				case !onDomain:
					t.Set(o, n, BCInterior, 0)
				case kind == BCPeriodic:
					t.Set(o, n, BCPeriodic, 0)
				default:
					t.Set(o, n, kind, 0.5*geom.CellSize[o.Dir])
				}
			}
		}
		m.tables[p] = t
	}
	return
}

func (m *DomainModel) Table(p grid.PatchIndex) *Table { return m.tables[p] }

func (m *DomainModel) Mask(p grid.PatchIndex, o grid.Orientation) *fab.IFab {
	return m.masks[p][o.Index(m.Geom.Dim())]
}

// Coarsen builds the model of the next multigrid level
func (m *DomainModel) Coarsen(r int) (*DomainModel, error) {
	return NewDomainModel(m.Decomp.Coarsen(r), m.Geom.Coarsen(r), m.BCs)
}
