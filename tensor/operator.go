package tensor

import (
	"fmt"

	"github.com/notargets/ebtensor/bc"
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/linop"
	"github.com/notargets/ebtensor/metrics"
	"github.com/notargets/ebtensor/utils"
)

// NeedsBoundaryCrossTerm is true only for the finest multigrid level acting
// on the solution with prescribed boundary data. Everywhere else the cross
// term from the boundary vanishes and the base operator is the whole action.
func NeedsBoundaryCrossTerm(mglev int, sMode linop.StateMode, bcMode linop.BCMode) bool {
	return mglev == 0 && sMode == linop.Solution && bcMode == linop.Inhomogeneous
}

/*
Operator is the tensor viscous operator for a velocity field with one
component per direction. The base operator carries the diagonal part with
its face coefficients set to the shear coefficient; the operator adds the
cross coupled fluxes when NeedsBoundaryCrossTerm holds.

The coefficient fields handed to SetShearCoefficient and SetBulkCoefficient
are borrowed: they must outlive the operator and must not change between
PrepareForSolve and the last Apply.
*/
type Operator struct {
	Base   linop.Operator
	Filler *BoundaryFiller

	eta, kappa []*[3]*fab.MultiFab // per AMR level, nil until set
	prepared   bool
}

func NewOperator(base linop.Operator) (op *Operator, err error) {
	dim := base.Geometry(0, 0).Dim()
	if base.NComp() != dim {
		return nil, fmt.Errorf("%w: tensor operator needs %d components, base has %d",
			utils.ErrConfiguration, dim, base.NComp())
	}
	op = &Operator{
		Base:  base,
		eta:   make([]*[3]*fab.MultiFab, base.NumAMRLevels()),
		kappa: make([]*[3]*fab.MultiFab, base.NumAMRLevels()),
	}
	if op.Filler, err = NewBoundaryFiller(base.MaxOrder()); err != nil {
		return nil, err
	}
	return
}

// SetShearCoefficient sets eta on an AMR level, also as the base face
// coefficients
func (op *Operator) SetShearCoefficient(amrlev int, eta [3]*fab.MultiFab) error {
	if err := op.checkCoefficient(amrlev, eta); err != nil {
		return err
	}
	if err := op.Base.SetBCoeffs(amrlev, eta); err != nil {
		return err
	}
	op.eta[amrlev] = &eta
	op.prepared = false
	return nil
}

// SetBulkCoefficient sets kappa on an AMR level
func (op *Operator) SetBulkCoefficient(amrlev int, kappa [3]*fab.MultiFab) error {
	if err := op.checkCoefficient(amrlev, kappa); err != nil {
		return err
	}
	op.kappa[amrlev] = &kappa
	op.prepared = false
	return nil
}

func (op *Operator) checkCoefficient(amrlev int, coef [3]*fab.MultiFab) error {
	if amrlev < 0 || amrlev >= op.Base.NumAMRLevels() {
		return fmt.Errorf("%w: no AMR level %d", utils.ErrConfiguration, amrlev)
	}
	return linop.CheckFaceLayout(op.Base.Decomposition(amrlev, 0), coef)
}

// PrepareForSolve fails when any AMR level misses a coefficient
func (op *Operator) PrepareForSolve() error {
	for amrlev := range op.eta {
		if op.eta[amrlev] == nil || op.kappa[amrlev] == nil {
			return fmt.Errorf("%w: shear and bulk coefficients must be set on AMR level %d",
				utils.ErrConfiguration, amrlev)
		}
	}
	if err := op.Base.PrepareForSolve(); err != nil {
		return err
	}
	op.Filler.Order = op.Base.MaxOrder()
	op.prepared = true
	return nil
}

/*
Apply computes out = L(in). A nil bndry means homogeneous boundary data
whatever bcMode says. in must have one ghost cell; its ghosts are filled.

Zero valued but non nil bndry in Inhomogeneous mode is still a solution
apply: the ghosts match the homogeneous fill, but the cross couplings of in
are added. Pass nil or Homogeneous to get the base action alone.
*/
func (op *Operator) Apply(amrlev, mglev int, out, in *fab.MultiFab, bcMode linop.BCMode,
	sMode linop.StateMode, bndry *bc.Values) error {
	if !op.prepared {
		return fmt.Errorf("%w: Apply before PrepareForSolve", utils.ErrConfiguration)
	}
	if bndry == nil {
		bcMode = linop.Homogeneous
	}
	if err := op.Base.Apply(amrlev, mglev, out, in, bcMode, sMode, bndry); err != nil {
		return err
	}
	if !NeedsBoundaryCrossTerm(mglev, sMode, bcMode) {
		metrics.Default.OperatorApplies.WithLabelValues("base").Inc()
		return nil
	}
	var (
		dc          = op.Base.Decomposition(amrlev, mglev)
		model       = op.Base.BCModel(amrlev, mglev)
		dxinv       = op.Base.Geometry(amrlev, mglev).InvCellSize()
		_, beta     = op.Base.Scalars()
		ca          = CrossTermAssembler{Beta: beta}
		eta, kappa  = op.eta[amrlev], op.kappa[amrlev]
		edgeCounts  = make([]int, dc.NumPatches())
		cornerCount = make([]int, dc.NumPatches())
	)
	in.ForEachPatch(func(p grid.PatchIndex, f *fab.Fab) {
		var (
			pd         = bc.Gather(model, bndry, dc, p)
			etaP, kapP [3]*fab.Fab
		)
		edgeCounts[p], cornerCount[p] = op.Filler.Fill(f, pd, dxinv, true)
		for d := 0; d < dc.Dim(); d++ {
			etaP[d], kapP[d] = eta[d].Fab(p), kappa[d].Fab(p)
		}
		ca.Accumulate(pd.Box, out.Fab(p), f, etaP, kapP, dxinv)
	})
	var edges, corners int
	for p := range edgeCounts {
		edges += edgeCounts[p]
		corners += cornerCount[p]
	}
	metrics.Default.BoundaryFills.WithLabelValues("edge").Add(float64(edges))
	metrics.Default.BoundaryFills.WithLabelValues("corner").Add(float64(corners))
	metrics.Default.OperatorApplies.WithLabelValues("cross_term").Inc()
	return nil
}
