package tensor

import (
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ebtensor/bc"
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/linop"
	"github.com/notargets/ebtensor/metrics"
	"github.com/notargets/ebtensor/utils"
)

type problem struct {
	geom grid.Geometry
	dc   *grid.Decomposition
	base *linop.ABecLaplacian
	op   *Operator
	bv   *bc.Values
	in   *fab.MultiFab
}

func velocity(x [3]float64, comp int) float64 {
	if comp == 0 {
		return x[0] * x[1]
	}
	return x[0]*x[0] + x[1]
}

func faceCoef(dc *grid.Decomposition, v float64) (coef [3]*fab.MultiFab) {
	for d := 0; d < dc.Dim(); d++ {
		coef[d] = fab.NewFaceMultiFab(dc, d, 1, 0)
		coef[d].SetVal(v)
	}
	return
}

// newProblem sets up a 2D velocity problem on [0,1]^2 with Dirichlet walls
func newProblem(t *testing.T, n, maxSize int) (pb *problem) {
	var (
		domain = grid.NewBox(grid.IntVect{}, grid.IntVect{n - 1, n - 1, 0}, 2)
		ba     = grid.NewBoxArray(domain, maxSize)
		err    error
	)
	pb = &problem{
		geom: grid.NewGeometry(domain, [3]float64{}, [3]float64{1, 1, 0}, [3]bool{}),
		dc:   grid.NewDecomposition(ba, grid.NewContiguousMapping(2, len(ba))),
	}
	pb.base, err = linop.NewABecLaplacian([]grid.Geometry{pb.geom}, []*grid.Decomposition{pb.dc},
		bc.UniformBCs(2, 2, bc.BCDirichlet), 2, 4)
	require.NoError(t, err)
	pb.op, err = NewOperator(pb.base)
	require.NoError(t, err)
	require.NoError(t, pb.op.SetShearCoefficient(0, faceCoef(pb.dc, 1)))
	require.NoError(t, pb.op.SetBulkCoefficient(0, faceCoef(pb.dc, 0.5)))
	require.NoError(t, pb.op.PrepareForSolve())
	pb.bv = bc.NewValues(pb.dc, 2)
	pb.bv.SetFunc(pb.dc, pb.geom, func(_ grid.Orientation, comp int, x [3]float64) float64 {
		return velocity(x, comp) + 1
	})
	pb.in = fab.NewMultiFab(pb.dc, 2, 1)
	pb.in.ForEachPatch(func(p grid.PatchIndex, f *fab.Fab) {
		pb.dc.Box(p).ForEach(func(iv grid.IntVect) {
			for n := 0; n < 2; n++ {
				f.Set(iv, n, velocity(pb.geom.CellCenter(iv), n))
			}
		})
	})
	return
}

func assertSameValid(t *testing.T, a, b *fab.MultiFab) {
	for _, p := range a.Decomp.LocalPatches() {
		assert.Equal(t, a.Fab(p).Data(), b.Fab(p).Data())
	}
}

func TestNeedsBoundaryCrossTerm(t *testing.T) {
	var nTrue int
	for _, mglev := range []int{0, 1, 3} {
		for _, sMode := range []linop.StateMode{linop.Solution, linop.Correction} {
			for _, bcMode := range []linop.BCMode{linop.Homogeneous, linop.Inhomogeneous} {
				if NeedsBoundaryCrossTerm(mglev, sMode, bcMode) {
					nTrue++
					assert.Equal(t, 0, mglev)
					assert.Equal(t, linop.Solution, sMode)
					assert.Equal(t, linop.Inhomogeneous, bcMode)
				}
			}
		}
	}
	assert.Equal(t, 1, nTrue)
}

func TestOperatorReducesToBase(t *testing.T) {
	{ // Single 4x4 patch, no boundary data
		pb := newProblem(t, 4, 4)
		outB := fab.NewMultiFab(pb.dc, 2, 0)
		outT := fab.NewMultiFab(pb.dc, 2, 0)
		require.NoError(t, pb.base.Apply(0, 0, outB, pb.in.Clone(), linop.Homogeneous, linop.Solution, nil))
		require.NoError(t, pb.op.Apply(0, 0, outT, pb.in.Clone(), linop.Inhomogeneous, linop.Solution, nil))
		assertSameValid(t, outB, outT)
	}
	{ // Correction mode and coarse levels ignore the cross term
		pb := newProblem(t, 8, 4)
		require.Equal(t, 2, pb.base.NumMGLevels(0))
		outB := fab.NewMultiFab(pb.dc, 2, 0)
		outT := fab.NewMultiFab(pb.dc, 2, 0)
		require.NoError(t, pb.base.Apply(0, 0, outB, pb.in.Clone(), linop.Inhomogeneous, linop.Correction, pb.bv))
		require.NoError(t, pb.op.Apply(0, 0, outT, pb.in.Clone(), linop.Inhomogeneous, linop.Correction, pb.bv))
		assertSameValid(t, outB, outT)

		cdc := pb.base.Decomposition(0, 1)
		cin := fab.NewMultiFab(cdc, 2, 1)
		cin.SetVal(2)
		coutB := fab.NewMultiFab(cdc, 2, 0)
		coutT := fab.NewMultiFab(cdc, 2, 0)
		require.NoError(t, pb.base.Apply(0, 1, coutB, cin.Clone(), linop.Inhomogeneous, linop.Solution, pb.bv))
		require.NoError(t, pb.op.Apply(0, 1, coutT, cin.Clone(), linop.Inhomogeneous, linop.Solution, pb.bv))
		assertSameValid(t, coutB, coutT)
	}
}

func TestOperatorCrossTerm(t *testing.T) {
	var (
		pb      = newProblem(t, 8, 4)
		outB    = fab.NewMultiFab(pb.dc, 2, 0)
		outT    = fab.NewMultiFab(pb.dc, 2, 0)
		inT     = pb.in.Clone()
		dxinv   = pb.geom.InvCellSize()
		eta     = faceCoef(pb.dc, 1)
		kappa   = faceCoef(pb.dc, 0.5)
		cross   = metrics.Default.OperatorApplies.WithLabelValues("cross_term")
		corners = metrics.Default.BoundaryFills.WithLabelValues("corner")
	)
	var (
		nCross   = testutil.ToFloat64(cross)
		nCorners = testutil.ToFloat64(corners)
	)
	require.NoError(t, pb.base.Apply(0, 0, outB, pb.in.Clone(), linop.Inhomogeneous, linop.Solution, pb.bv))
	require.NoError(t, pb.op.Apply(0, 0, outT, inT, linop.Inhomogeneous, linop.Solution, pb.bv))
	assert.Equal(t, 1., testutil.ToFloat64(cross)-nCross)
	// Three corners of each patch lie on the domain boundary
	assert.Equal(t, 12., testutil.ToFloat64(corners)-nCorners)

	var maxDiv float64
	for _, p := range pb.dc.LocalPatches() {
		var (
			vbox       = pb.dc.Box(p)
			expected   = fab.NewFab(vbox, 2)
			etaP, kapP [3]*fab.Fab
		)
		for d := 0; d < 2; d++ {
			etaP[d], kapP[d] = eta[d].Fab(p), kappa[d].Fab(p)
		}
		CrossTermAssembler{Beta: 1}.Accumulate(vbox, expected, inT.Fab(p), etaP, kapP, dxinv)
		vbox.ForEach(func(iv grid.IntVect) {
			for n := 0; n < 2; n++ {
				diff := outT.Fab(p).Get(iv, n) - outB.Fab(p).Get(iv, n)
				assert.InDelta(t, expected.Get(iv, n), diff, 1.e-9)
				maxDiv = math.Max(maxDiv, math.Abs(expected.Get(iv, n)))
			}
		})
	}
	assert.True(t, maxDiv > 1.e-3)
}

func TestOperatorZeroBoundaryValues(t *testing.T) {
	var (
		pb    = newProblem(t, 8, 4)
		zero  = bc.NewValues(pb.dc, 2)
		outH  = fab.NewMultiFab(pb.dc, 2, 0)
		outZ  = fab.NewMultiFab(pb.dc, 2, 0)
		outT  = fab.NewMultiFab(pb.dc, 2, 0)
		inT   = pb.in.Clone()
		dxinv = pb.geom.InvCellSize()
		cross = metrics.Default.OperatorApplies.WithLabelValues("cross_term")
	)
	zero.SetVal(0)
	{ // Zero data fill the same ghosts as homogeneous data
		require.NoError(t, pb.base.Apply(0, 0, outH, pb.in.Clone(), linop.Homogeneous, linop.Solution, nil))
		require.NoError(t, pb.base.Apply(0, 0, outZ, pb.in.Clone(), linop.Inhomogeneous, linop.Solution, zero))
		assertSameValid(t, outH, outZ)
	}
	{ // A nil handle gives the base action alone
		outN := fab.NewMultiFab(pb.dc, 2, 0)
		require.NoError(t, pb.op.Apply(0, 0, outN, pb.in.Clone(), linop.Inhomogeneous, linop.Solution, nil))
		assertSameValid(t, outH, outN)
	}
	{ // A zero valued handle still adds the cross couplings of the field
		nCross := testutil.ToFloat64(cross)
		require.NoError(t, pb.op.Apply(0, 0, outT, inT, linop.Inhomogeneous, linop.Solution, zero))
		assert.Equal(t, 1., testutil.ToFloat64(cross)-nCross)
		var (
			eta     = faceCoef(pb.dc, 1)
			kappa   = faceCoef(pb.dc, 0.5)
			maxDiff float64
		)
		for _, p := range pb.dc.LocalPatches() {
			var (
				vbox       = pb.dc.Box(p)
				expected   = fab.NewFab(vbox, 2)
				etaP, kapP [3]*fab.Fab
			)
			for d := 0; d < 2; d++ {
				etaP[d], kapP[d] = eta[d].Fab(p), kappa[d].Fab(p)
			}
			CrossTermAssembler{Beta: 1}.Accumulate(vbox, expected, inT.Fab(p), etaP, kapP, dxinv)
			vbox.ForEach(func(iv grid.IntVect) {
				for n := 0; n < 2; n++ {
					diff := outT.Fab(p).Get(iv, n) - outZ.Fab(p).Get(iv, n)
					assert.InDelta(t, expected.Get(iv, n), diff, 1.e-9)
					maxDiff = math.Max(maxDiff, math.Abs(diff))
				}
			})
		}
		assert.Greater(t, maxDiff, 1.e-3)
	}
}

// velocity3 has bilinear components, so the discrete cross term is exact:
// its divergence is -beta (eta + kappa - 2/3 eta) in every component
func velocity3(x [3]float64, comp int) float64 {
	return x[comp] * x[(comp+1)%3]
}

func TestCrossTerm3D(t *testing.T) {
	var (
		vbox  = grid.NewBox(grid.IntVect{}, grid.IntVect{3, 3, 3}, 3)
		dxinv = [3]float64{2, 4, 1}
		eta   = 1.
		kappa = 0.5
		want  = -(eta + kappa - 2./3.*eta)
	)
	{ // Assembler fluxes and divergence against the analytic values
		var (
			vel        = fab.NewFab(vbox.Grow(1), 3)
			out        = fab.NewFab(vbox, 3)
			etaF, kapF [3]*fab.Fab
			ca         = CrossTermAssembler{Beta: 1}
		)
		vel.Box().ForEach(func(iv grid.IntVect) {
			var x [3]float64
			for d := 0; d < 3; d++ {
				x[d] = (float64(iv[d]) + 0.5) / dxinv[d]
			}
			for n := 0; n < 3; n++ {
				vel.Set(iv, n, velocity3(x, n))
			}
		})
		for d := 0; d < 3; d++ {
			etaF[d] = fab.NewFab(vbox.SurroundingNodes(d), 1)
			etaF[d].SetVal(eta)
			kapF[d] = fab.NewFab(vbox.SurroundingNodes(d), 1)
			kapF[d].SetVal(kappa)
		}
		fluxes := ca.Fluxes(vbox, vel, etaF, kapF, dxinv)
		// Shear: -eta du0/dy = -x on the x face at x = 1
		assert.InDelta(t, -1., fluxes[0].Get(grid.IntVect{2, 1, 1}, 1), 1.e-12)
		// Shear: -eta du2/dx = -z on the z face at z = 2
		assert.InDelta(t, -2., fluxes[2].Get(grid.IntVect{1, 1, 2}, 0), 1.e-12)
		// No du0/dz coupling
		assert.InDelta(t, 0., fluxes[0].Get(grid.IntVect{2, 1, 1}, 2), 1.e-12)
		// Trace: -(kappa - 2/3 eta)(du0/dx + du2/dz) = (y + x)/6 at y = 0.5, x = 0.75
		assert.InDelta(t, (0.5+0.75)/6., fluxes[1].Get(grid.IntVect{1, 2, 1}, 1), 1.e-12)
		ca.Accumulate(vbox, out, vel, etaF, kapF, dxinv)
		vbox.ForEach(func(iv grid.IntVect) {
			for n := 0; n < 3; n++ {
				assert.InDelta(t, want, out.Get(iv, n), 1.e-10)
			}
		})
	}
	{ // Operator on a single patch with Dirichlet walls on all six faces
		var (
			domain  = grid.NewBox(grid.IntVect{}, grid.IntVect{3, 3, 3}, 3)
			geom    = grid.NewGeometry(domain, [3]float64{}, [3]float64{2, 1, 4}, [3]bool{})
			dc      = grid.NewDecomposition(grid.BoxArray{domain}, grid.NewContiguousMapping(1, 1))
			edges   = metrics.Default.BoundaryFills.WithLabelValues("edge")
			corners = metrics.Default.BoundaryFills.WithLabelValues("corner")
		)
		require.Equal(t, dxinv, geom.InvCellSize())
		base, err := linop.NewABecLaplacian([]grid.Geometry{geom}, []*grid.Decomposition{dc},
			bc.UniformBCs(3, 3, bc.BCDirichlet), 3, 0)
		require.NoError(t, err)
		op, err := NewOperator(base)
		require.NoError(t, err)
		etaM, kapM := faceCoef(dc, eta), faceCoef(dc, kappa)
		require.NoError(t, op.SetShearCoefficient(0, etaM))
		require.NoError(t, op.SetBulkCoefficient(0, kapM))
		require.NoError(t, op.PrepareForSolve())
		bv := bc.NewValues(dc, 3)
		bv.SetFunc(dc, geom, func(_ grid.Orientation, comp int, x [3]float64) float64 {
			return velocity3(x, comp) + 1
		})
		in := fab.NewMultiFab(dc, 3, 1)
		in.ForEachPatch(func(p grid.PatchIndex, f *fab.Fab) {
			dc.Box(p).ForEach(func(iv grid.IntVect) {
				for n := 0; n < 3; n++ {
					f.Set(iv, n, velocity3(geom.CellCenter(iv), n))
				}
			})
		})
		var (
			outB     = fab.NewMultiFab(dc, 3, 0)
			outT     = fab.NewMultiFab(dc, 3, 0)
			inT      = in.Clone()
			nEdges   = testutil.ToFloat64(edges)
			nCorners = testutil.ToFloat64(corners)
		)
		require.NoError(t, base.Apply(0, 0, outB, in.Clone(), linop.Inhomogeneous, linop.Solution, bv))
		require.NoError(t, op.Apply(0, 0, outT, inT, linop.Inhomogeneous, linop.Solution, bv))
		assert.Equal(t, 48., testutil.ToFloat64(edges)-nEdges)
		assert.Equal(t, 8., testutil.ToFloat64(corners)-nCorners)
		var (
			expected   = fab.NewFab(domain, 3)
			etaP, kapP [3]*fab.Fab
		)
		for d := 0; d < 3; d++ {
			etaP[d], kapP[d] = etaM[d].Fab(0), kapM[d].Fab(0)
		}
		CrossTermAssembler{Beta: 1}.Accumulate(domain, expected, inT.Fab(0), etaP, kapP, dxinv)
		inner := grid.NewBox(grid.IntVect{1, 1, 1}, grid.IntVect{2, 2, 2}, 3)
		domain.ForEach(func(iv grid.IntVect) {
			for n := 0; n < 3; n++ {
				diff := outT.Fab(0).Get(iv, n) - outB.Fab(0).Get(iv, n)
				assert.InDelta(t, expected.Get(iv, n), diff, 1.e-9)
				if inner.Contains(iv) {
					assert.InDelta(t, want, diff, 1.e-9)
				}
			}
		})
	}
}

func TestOperatorConfiguration(t *testing.T) {
	var (
		domain = grid.NewBox(grid.IntVect{}, grid.IntVect{3, 3, 0}, 2)
		geom   = grid.NewGeometry(domain, [3]float64{}, [3]float64{1, 1, 0}, [3]bool{})
		dc     = grid.NewDecomposition(grid.BoxArray{domain}, grid.NewContiguousMapping(1, 1))
		bcs    = bc.UniformBCs(2, 2, bc.BCDirichlet)
	)
	{ // One component per direction
		scalar, err := linop.NewABecLaplacian([]grid.Geometry{geom}, []*grid.Decomposition{dc},
			bc.UniformBCs(2, 1, bc.BCDirichlet), 1, 0)
		require.NoError(t, err)
		_, err = NewOperator(scalar)
		assert.True(t, errors.Is(err, utils.ErrConfiguration))
	}
	base, err := linop.NewABecLaplacian([]grid.Geometry{geom}, []*grid.Decomposition{dc}, bcs, 2, 0)
	require.NoError(t, err)
	op, err := NewOperator(base)
	require.NoError(t, err)
	in := fab.NewMultiFab(dc, 2, 1)
	out := fab.NewMultiFab(dc, 2, 0)
	{ // Coefficients are checked against the base layout
		err = op.SetShearCoefficient(0, [3]*fab.MultiFab{in, in})
		assert.True(t, errors.Is(err, utils.ErrShapeMismatch))
		other := grid.NewDecomposition(grid.NewBoxArray(domain, 2), grid.NewContiguousMapping(1, 4))
		err = op.SetBulkCoefficient(0, faceCoef(other, 1))
		assert.True(t, errors.Is(err, utils.ErrShapeMismatch))
		err = op.SetBulkCoefficient(1, faceCoef(dc, 1))
		assert.True(t, errors.Is(err, utils.ErrConfiguration))
	}
	{ // Both coefficients before use
		err = op.Apply(0, 0, out, in, linop.Inhomogeneous, linop.Solution, nil)
		assert.True(t, errors.Is(err, utils.ErrConfiguration))
		require.NoError(t, op.SetShearCoefficient(0, faceCoef(dc, 1)))
		assert.True(t, errors.Is(op.PrepareForSolve(), utils.ErrConfiguration))
		require.NoError(t, op.SetBulkCoefficient(0, faceCoef(dc, 1)))
		require.NoError(t, op.PrepareForSolve())
		assert.NoError(t, op.Apply(0, 0, out, in, linop.Inhomogeneous, linop.Solution, nil))
		// Setting a coefficient again needs a new PrepareForSolve
		require.NoError(t, op.SetBulkCoefficient(0, faceCoef(dc, 2)))
		err = op.Apply(0, 0, out, in, linop.Inhomogeneous, linop.Solution, nil)
		assert.True(t, errors.Is(err, utils.ErrConfiguration))
	}
}

func TestCrossTermAssembler(t *testing.T) {
	var (
		vbox  = grid.NewBox(grid.IntVect{}, grid.IntVect{3, 3, 0}, 2)
		dxinv = [3]float64{2, 4, 1}
		vel   = fab.NewFab(vbox.Grow(1), 2)
		out   = fab.NewFab(vbox, 2)
		eta   [3]*fab.Fab
		kappa [3]*fab.Fab
		ca    = CrossTermAssembler{Beta: 1}
	)
	vel.Box().ForEach(func(iv grid.IntVect) {
		x, y := (float64(iv[0])+0.5)/dxinv[0], (float64(iv[1])+0.5)/dxinv[1]
		vel.Set(iv, 0, x*y)
	})
	for d := 0; d < 2; d++ {
		eta[d] = fab.NewFab(vbox.SurroundingNodes(d), 1)
		eta[d].SetVal(1)
		kappa[d] = fab.NewFab(vbox.SurroundingNodes(d), 1)
		kappa[d].SetVal(0.5)
	}
	{ // Shear flux uses eta, trace flux kappa - 2/3 eta
		fluxes := ca.Fluxes(vbox, vel, eta, kappa, dxinv)
		assert.InDelta(t, -1., fluxes[0].Get(grid.IntVect{2, 1, 0}, 1), 1.e-14)
		assert.InDelta(t, 0., fluxes[0].Get(grid.IntVect{2, 1, 0}, 0), 1.e-14)
		assert.InDelta(t, -(0.5-2./3.)*0.5, fluxes[1].Get(grid.IntVect{1, 2, 0}, 1), 1.e-14)
	}
	{ // The divergence adds to what is there
		out.SetVal(5)
		ca.Accumulate(vbox, out, vel, eta, kappa, dxinv)
		vbox.ForEach(func(iv grid.IntVect) {
			assert.InDelta(t, 5., out.Get(iv, 0), 1.e-12)
			assert.InDelta(t, 5.-(0.5+1./3.), out.Get(iv, 1), 1.e-12)
		})
	}
	{ // Swapping the coefficients changes the operator
		swapped := fab.NewFab(vbox, 2)
		ca.Accumulate(vbox, swapped, vel, kappa, eta, dxinv)
		assert.InDelta(t, -(1 + 0.5/3.), swapped.Get(grid.IntVect{1, 1, 0}, 1), 1.e-12)
	}
}
