// Package linop holds the scalar multigrid operators that the tensor
// operator builds on.
package linop

import (
	"github.com/notargets/ebtensor/bc"
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
)

// BCMode says whether boundary data are the prescribed values or zero
type BCMode uint8

const (
	Homogeneous BCMode = iota
	Inhomogeneous
)

func (m BCMode) String() string {
	if m == Inhomogeneous {
		return "Inhomogeneous"
	}
	return "Homogeneous"
}

// StateMode says whether the operator acts on the solution or on a
// multigrid correction
type StateMode uint8

const (
	Solution StateMode = iota
	Correction
)

func (m StateMode) String() string {
	if m == Correction {
		return "Correction"
	}
	return "Solution"
}

// Operator is the face of a multigrid operator seen by the solver driver and
// by the operators that extend it
type Operator interface {
	// Apply computes out = L(in) on valid cells. It fills the ghost cells
	// of in first, exchange and physical faces, and needs exactly one ghost
	// cell.
	Apply(amrlev, mglev int, out, in *fab.MultiFab, bcMode BCMode, sMode StateMode, bndry *bc.Values) error
	SetBCoeffs(amrlev int, b [3]*fab.MultiFab) error
	PrepareForSolve() error

	NumAMRLevels() int
	NumMGLevels(amrlev int) int
	NComp() int
	Geometry(amrlev, mglev int) grid.Geometry
	Decomposition(amrlev, mglev int) *grid.Decomposition
	BCModel(amrlev, mglev int) bc.Model
	Scalars() (alpha, beta float64)
	MaxOrder() int
}
