package linop

import (
	"fmt"
	"log"

	"github.com/james-bowman/sparse"

	"github.com/notargets/ebtensor/bc"
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// mgLevel is one level of the multigrid hierarchy of one AMR level
type mgLevel struct {
	decomp   *grid.Decomposition
	geom     grid.Geometry
	bcModel  *bc.DomainModel
	acoef    *fab.MultiFab
	bcoef    [3]*fab.MultiFab
	stencils []*sparse.CSR // per patch, rows over valid cells, columns over the box grown by one
}

/*
ABecLaplacian is the operator

	L(u) = alpha*a*u - beta*div(b grad u)

applied to each component of an NComp field independently, with a cell
centred a and face centred b. Coefficients default to a = 0 and b = 1.
*/
type ABecLaplacian struct {
	Runner *utils.PatchRunner

	alpha, beta float64
	maxOrder    int
	ncomp       int
	levels      [][]*mgLevel // [amrlev][mglev]
	prepared    bool
}

/*
NewABecLaplacian defines the operator on one decomposition per AMR level.
Each AMR level is coarsened by two into multigrid levels while every patch
stays at least two cells wide, up to maxCoarsening times.
*/
func NewABecLaplacian(geoms []grid.Geometry, decomps []*grid.Decomposition, bcs bc.FaceBCs,
	ncomp, maxCoarsening int) (op *ABecLaplacian, err error) {
	if len(geoms) == 0 || len(geoms) != len(decomps) {
		return nil, fmt.Errorf("%w: %d geometries for %d decompositions",
			utils.ErrConfiguration, len(geoms), len(decomps))
	}
	if ncomp < 1 {
		return nil, fmt.Errorf("%w: operator with %d components", utils.ErrConfiguration, ncomp)
	}
	op = &ABecLaplacian{
		Runner:   utils.DefaultRunner,
		alpha:    0,
		beta:     1,
		maxOrder: 2,
		ncomp:    ncomp,
		levels:   make([][]*mgLevel, len(geoms)),
	}
	for amrlev := range geoms {
		var lev *mgLevel
		if lev, err = newMGLevel(geoms[amrlev], decomps[amrlev], bcs); err != nil {
			return nil, err
		}
		op.levels[amrlev] = []*mgLevel{lev}
		for n := 0; n < maxCoarsening && canCoarsen(lev); n++ {
			if lev, err = newMGLevel(lev.geom.Coarsen(2), lev.decomp.Coarsen(2), bcs); err != nil {
				return nil, err
			}
			op.levels[amrlev] = append(op.levels[amrlev], lev)
		}
	}
	return
}

func newMGLevel(geom grid.Geometry, dc *grid.Decomposition, bcs bc.FaceBCs) (lev *mgLevel, err error) {
	lev = &mgLevel{decomp: dc, geom: geom}
	if lev.bcModel, err = bc.NewDomainModel(dc, geom, bcs); err != nil {
		return nil, err
	}
	lev.acoef = fab.NewMultiFab(dc, 1, 0)
	lev.acoef.SetVal(0)
	for d := 0; d < geom.Dim(); d++ {
		lev.bcoef[d] = fab.NewFaceMultiFab(dc, d, 1, 0)
		lev.bcoef[d].SetVal(1)
	}
	return
}

func canCoarsen(lev *mgLevel) bool {
	ba := lev.decomp.Boxes
	if !ba.Coarsenable(2) || !lev.geom.Domain.Coarsen(2).Refine(2).SameShape(lev.geom.Domain) {
		return false
	}
	for _, b := range ba.Coarsen(2) {
		for d := 0; d < b.Dim; d++ {
			if b.Length(d) < 2 {
				return false
			}
		}
	}
	return true
}

func (op *ABecLaplacian) SetScalars(alpha, beta float64) {
	op.alpha, op.beta = alpha, beta
	op.prepared = false
}

// SetMaxOrder sets the Dirichlet extrapolation order of the ghost fill
func (op *ABecLaplacian) SetMaxOrder(order int) error {
	if err := bc.ValidateOrder(order); err != nil {
		return err
	}
	op.maxOrder = order
	return nil
}

// SetACoeffs copies the cell centred a of an AMR level
func (op *ABecLaplacian) SetACoeffs(amrlev int, a *fab.MultiFab) error {
	lev, err := op.level(amrlev, 0)
	if err != nil {
		return err
	}
	if a.Face != fab.CellCentered || !a.Decomp.Equal(lev.decomp) {
		return fmt.Errorf("%w: a coefficients must be cell centred on the level %d layout",
			utils.ErrShapeMismatch, amrlev)
	}
	fab.Copy(lev.acoef, a, 0, 0, 1, 0)
	op.prepared = false
	return nil
}

// SetBCoeffs copies the face centred b of an AMR level, b[d] holding the
// faces normal to d
func (op *ABecLaplacian) SetBCoeffs(amrlev int, b [3]*fab.MultiFab) error {
	lev, err := op.level(amrlev, 0)
	if err != nil {
		return err
	}
	if err = CheckFaceLayout(lev.decomp, b); err != nil {
		return err
	}
	for d := 0; d < lev.geom.Dim(); d++ {
		fab.Copy(lev.bcoef[d], b[d], 0, 0, 1, 0)
	}
	op.prepared = false
	return nil
}

// CheckFaceLayout verifies that b[d] is face centred in d on dc for every
// active direction
func CheckFaceLayout(dc *grid.Decomposition, b [3]*fab.MultiFab) error {
	for d := 0; d < dc.Dim(); d++ {
		switch {
		case b[d] == nil:
			return fmt.Errorf("%w: no face coefficients in direction %d", utils.ErrShapeMismatch, d)
		case b[d].Face != d:
			return fmt.Errorf("%w: coefficients for direction %d are centred on %d",
				utils.ErrShapeMismatch, d, b[d].Face)
		case !b[d].Decomp.Equal(dc):
			return fmt.Errorf("%w: coefficients for direction %d on a different decomposition",
				utils.ErrShapeMismatch, d)
		}
	}
	return nil
}

/*
PrepareForSolve averages the coefficients down the multigrid hierarchy and
assembles the stencil of every patch on every level.
*/
func (op *ABecLaplacian) PrepareForSolve() error {
	var nnz int
	for amrlev, mgLevels := range op.levels {
		for mglev, lev := range mgLevels {
			if mglev > 0 {
				averageDown(mgLevels[mglev-1], lev)
			}
			lev.stencils = make([]*sparse.CSR, lev.decomp.NumPatches())
			patches := lev.decomp.LocalPatches()
			op.Runner.ForEach(len(patches), func(_, i int) {
				lev.stencils[patches[i]] = op.buildStencil(lev, patches[i])
			})
			for _, st := range lev.stencils {
				nnz += st.NNZ()
			}
		}
		log.Printf("ABecLaplacian: AMR level %d, %d multigrid levels\n", amrlev, len(mgLevels))
	}
	log.Printf("ABecLaplacian: alpha = %g, beta = %g, %d stencil entries\n", op.alpha, op.beta, nnz)
	op.prepared = true
	return nil
}

// averageDown sets the coarse coefficients to the mean of the fine ones they
// cover
func averageDown(fine, coarse *mgLevel) {
	dim := fine.geom.Dim()
	coarse.acoef.ForEachPatch(func(p grid.PatchIndex, cf *fab.Fab) {
		ff := fine.acoef.Fab(p)
		coarse.acoef.ValidBox(p).ForEach(func(iv grid.IntVect) {
			var sum float64
			fineCells(iv, dim).ForEach(func(jv grid.IntVect) { sum += ff.Get(jv, 0) })
			cf.Set(iv, 0, sum/float64(fineCells(iv, dim).NumPts()))
		})
	})
	for d := 0; d < dim; d++ {
		fb, cb := fine.bcoef[d], coarse.bcoef[d]
		cb.ForEachPatch(func(p grid.PatchIndex, cf *fab.Fab) {
			ff := fb.Fab(p)
			cb.ValidBox(p).ForEach(func(iv grid.IntVect) {
				faces := fineCells(iv, dim)
				faces.Hi[d] = faces.Lo[d]
				var sum float64
				faces.ForEach(func(jv grid.IntVect) { sum += ff.Get(jv, 0) })
				cf.Set(iv, 0, sum/float64(faces.NumPts()))
			})
		})
	}
}

// fineCells is the 2^dim block of fine indices under coarse index iv
func fineCells(iv grid.IntVect, dim int) grid.Box {
	return grid.NewBox(iv, iv, dim).Refine(2)
}

/*
buildStencil assembles the matrix of L on patch p. Row r is the valid cell
of linear index r in the patch box; columns index the box grown by one, so
the matrix multiplies a ghost filled component plane directly.
*/
func (op *ABecLaplacian) buildStencil(lev *mgLevel, p grid.PatchIndex) *sparse.CSR {
	var (
		vbox  = lev.decomp.Box(p)
		gbox  = vbox.Grow(1)
		dim   = lev.geom.Dim()
		dxinv = lev.geom.InvCellSize()
		dok   = sparse.NewDOK(vbox.NumPts(), gbox.NumPts())
		af    = lev.acoef.Fab(p)
	)
	vbox.ForEach(func(iv grid.IntVect) {
		var (
			row  = vbox.Index(iv)
			diag = op.alpha * af.Get(iv, 0)
		)
		for d := 0; d < dim; d++ {
			var (
				bf  = lev.bcoef[d].Fab(p)
				fac = op.beta * dxinv[d] * dxinv[d]
				bl  = bf.Get(iv, 0)
				bh  = bf.Get(iv.Add(grid.Unit(d, 1)), 0)
			)
			diag += fac * (bl + bh)
			dok.Set(row, gbox.Index(iv.Add(grid.Unit(d, -1))), -fac*bl)
			dok.Set(row, gbox.Index(iv.Add(grid.Unit(d, 1))), -fac*bh)
		}
		dok.Set(row, gbox.Index(iv), diag)
	})
	return dok.ToCSR()
}

/*
Apply fills the ghost cells of in, then computes out = L(in) on the valid
cells of every patch. Boundary data are read only on the finest multigrid
level, when bcMode is Inhomogeneous and bndry is not nil; coarser levels
always see homogeneous data.
*/
func (op *ABecLaplacian) Apply(amrlev, mglev int, out, in *fab.MultiFab, bcMode BCMode, _ StateMode,
	bndry *bc.Values) error {
	if !op.prepared {
		return fmt.Errorf("%w: Apply before PrepareForSolve", utils.ErrConfiguration)
	}
	lev, err := op.level(amrlev, mglev)
	if err != nil {
		return err
	}
	if err = op.checkFields(lev, out, in); err != nil {
		return err
	}
	inhomogeneous := bcMode == Inhomogeneous && bndry != nil && mglev == 0
	if !inhomogeneous {
		bndry = nil
	}
	op.fillGhosts(lev, in, bndry, inhomogeneous)
	patches := lev.decomp.LocalPatches()
	op.Runner.ForEach(len(patches), func(_, i int) {
		p := patches[i]
		applyStencil(lev.stencils[p], lev.decomp.Box(p), out.Fab(p), in.Fab(p))
	})
	return nil
}

// fillGhosts exchanges ghost cells and extrapolates across physical faces
func (op *ABecLaplacian) fillGhosts(lev *mgLevel, in *fab.MultiFab, bndry *bc.Values, inhomogeneous bool) {
	in.FillBoundary(lev.geom.Periodicity())
	dxinv := lev.geom.InvCellSize()
	in.ForEachPatch(func(p grid.PatchIndex, f *fab.Fab) {
		bc.Gather(lev.bcModel, bndry, lev.decomp, p).FillFaces(f, op.maxOrder, dxinv, inhomogeneous)
	})
}

// applyStencil multiplies each component plane of in by the patch matrix
func applyStencil(st *sparse.CSR, vbox grid.Box, out, in *fab.Fab) {
	raw := st.RawMatrix()
	for n := 0; n < in.NComp(); n++ {
		var (
			x   = in.Plane(n)
			row int
		)
		vbox.ForEach(func(iv grid.IntVect) {
			var sum float64
			for k := raw.Indptr[row]; k < raw.Indptr[row+1]; k++ {
				sum += raw.Data[k] * x[raw.Ind[k]]
			}
			out.Set(iv, n, sum)
			row++
		})
	}
}

func (op *ABecLaplacian) level(amrlev, mglev int) (*mgLevel, error) {
	if amrlev < 0 || amrlev >= len(op.levels) || mglev < 0 || mglev >= len(op.levels[amrlev]) {
		return nil, fmt.Errorf("%w: no level (%d, %d)", utils.ErrConfiguration, amrlev, mglev)
	}
	return op.levels[amrlev][mglev], nil
}

func (op *ABecLaplacian) checkFields(lev *mgLevel, out, in *fab.MultiFab) error {
	switch {
	case !in.Decomp.Equal(lev.decomp) || !out.Decomp.Equal(lev.decomp):
		return fmt.Errorf("%w: fields not on the operator layout", utils.ErrShapeMismatch)
	case in.Face != fab.CellCentered || out.Face != fab.CellCentered:
		return fmt.Errorf("%w: fields must be cell centred", utils.ErrShapeMismatch)
	case in.NComp != op.ncomp || out.NComp != op.ncomp:
		return fmt.Errorf("%w: fields with %d and %d components, operator has %d",
			utils.ErrShapeMismatch, in.NComp, out.NComp, op.ncomp)
	case in.NGrow != 1:
		return fmt.Errorf("%w: input needs one ghost cell, has %d", utils.ErrShapeMismatch, in.NGrow)
	}
	return nil
}

func (op *ABecLaplacian) NumAMRLevels() int          { return len(op.levels) }
func (op *ABecLaplacian) NumMGLevels(amrlev int) int { return len(op.levels[amrlev]) }
func (op *ABecLaplacian) NComp() int                 { return op.ncomp }
func (op *ABecLaplacian) Scalars() (alpha, beta float64) {
	return op.alpha, op.beta
}
func (op *ABecLaplacian) MaxOrder() int { return op.maxOrder }

func (op *ABecLaplacian) Geometry(amrlev, mglev int) grid.Geometry {
	return op.levels[amrlev][mglev].geom
}

func (op *ABecLaplacian) Decomposition(amrlev, mglev int) *grid.Decomposition {
	return op.levels[amrlev][mglev].decomp
}

func (op *ABecLaplacian) BCModel(amrlev, mglev int) bc.Model {
	return op.levels[amrlev][mglev].bcModel
}

// BCoeffs returns the face coefficients of a level, read only
func (op *ABecLaplacian) BCoeffs(amrlev, mglev int) [3]*fab.MultiFab {
	return op.levels[amrlev][mglev].bcoef
}
