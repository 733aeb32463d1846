/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/ebtensor/bc"
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/linop"
	"github.com/notargets/ebtensor/tensor"
	"github.com/notargets/ebtensor/utils"
)

// ApplyCmd represents the apply command
var ApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the tensor viscous operator to a test velocity field",
	Long: `Builds the base diagonal operator and the tensor operator over it from an
input file, applies both to the velocity u = (y, x) + (x^2, y^2) with the
configured boundary values, and reports norms of the results and of the
cross coupled contribution.`,
	Run: func(cmd *cobra.Command, args []string) {
		fileName, _ := cmd.Flags().GetString("inputConditionsFile")
		usePerf, _ := cmd.Flags().GetBool("perf")
		ip := processInput(fileName)
		pb, err := NewProblem(ip)
		if err != nil {
			panic(err)
		}
		var ar *ApplyRun
		if ar, err = NewApplyRun(pb); err != nil {
			panic(err)
		}
		if usePerf {
			var cycles uint64
			if cycles, err = countCycles(ar.Run); err == nil {
				fmt.Printf("CPU cycles: %d\n", cycles)
			} else {
				fmt.Printf("CPU cycle counter unavailable: %s\n", err.Error())
				err = ar.Run()
			}
		} else {
			err = ar.Run()
		}
		if err != nil {
			panic(err)
		}
		ar.Report()
		printMetrics()
	},
}

func init() {
	rootCmd.AddCommand(ApplyCmd)
	ApplyCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Cells\n\t- BCs\n\t- Eta, Kappa")
	ApplyCmd.Flags().Bool("perf", false, "count CPU cycles of the operator applications")
}

// ApplyRun holds both operators and their inputs and outputs for one problem
type ApplyRun struct {
	pb             *Problem
	base           *linop.ABecLaplacian
	op             *tensor.Operator
	bndry          *bc.Values
	vel            *fab.MultiFab
	outBase, outOp *fab.MultiFab
}

// sampleVelocity is the analytic field the apply run starts from
func sampleVelocity(x [3]float64, comp int) float64 {
	switch comp {
	case 0:
		return x[1] + x[0]*x[0]
	case 1:
		return x[0] + x[1]*x[1]
	}
	return x[0] * x[1] * x[2]
}

func NewApplyRun(pb *Problem) (ar *ApplyRun, err error) {
	var (
		ip  = pb.Input
		dim = ip.Dimension
		bcs bc.FaceBCs
	)
	ar = &ApplyRun{pb: pb}
	if bcs, err = ip.FaceBCs(dim); err != nil {
		return
	}
	if ar.base, err = linop.NewABecLaplacian([]grid.Geometry{pb.Geom}, []*grid.Decomposition{pb.Decomp},
		bcs, dim, ip.MaxCoarsening); err != nil {
		return
	}
	ar.base.SetScalars(ip.Alpha, ip.Beta)
	if err = ar.base.SetMaxOrder(ip.MaxOrder); err != nil {
		return
	}
	// The a coefficient is the fluid volume fraction
	if err = ar.base.SetACoeffs(0, pb.Cut.ToMultiFab(1, 0)); err != nil {
		return
	}
	if ar.op, err = tensor.NewOperator(ar.base); err != nil {
		return
	}
	if err = ar.op.SetShearCoefficient(0, faceConst(pb.Decomp, ip.Eta)); err != nil {
		return
	}
	if err = ar.op.SetBulkCoefficient(0, faceConst(pb.Decomp, ip.Kappa)); err != nil {
		return
	}
	if err = ar.op.PrepareForSolve(); err != nil {
		return
	}
	ar.bndry = bc.NewValues(pb.Decomp, dim)
	ar.bndry.SetFunc(pb.Decomp, pb.Geom, func(o grid.Orientation, comp int, x [3]float64) float64 {
		return ip.BoundaryValue(o, comp)
	})
	ar.vel = fab.NewMultiFab(pb.Decomp, dim, 1)
	ar.vel.ForEachPatch(func(p grid.PatchIndex, f *fab.Fab) {
		pb.Decomp.Box(p).ForEach(func(iv grid.IntVect) {
			x := pb.Geom.CellCenter(iv)
			for n := 0; n < dim; n++ {
				f.Set(iv, n, sampleVelocity(x, n))
			}
		})
	})
	ar.outBase = fab.NewMultiFab(pb.Decomp, dim, 0)
	ar.outOp = fab.NewMultiFab(pb.Decomp, dim, 0)
	return
}

func faceConst(dc *grid.Decomposition, v float64) (coef [3]*fab.MultiFab) {
	for d := 0; d < dc.Dim(); d++ {
		coef[d] = fab.NewFaceMultiFab(dc, d, 1, 0)
		coef[d].SetVal(v)
	}
	return
}

func (ar *ApplyRun) Run() (err error) {
	if err = ar.base.Apply(0, 0, ar.outBase, ar.vel, linop.Inhomogeneous, linop.Solution, ar.bndry); err != nil {
		return
	}
	if err = ar.op.Apply(0, 0, ar.outOp, ar.vel, linop.Inhomogeneous, linop.Solution, ar.bndry); err != nil {
		return
	}
	for n := 0; n < ar.base.NComp(); n++ {
		if utils.IsNan(ar.outOp.ValidValues(n)) {
			return fmt.Errorf("NaN in component %d of the tensor operator output", n)
		}
	}
	return
}

func (ar *ApplyRun) Report() {
	diff := ar.outOp.Clone()
	for n := 0; n < ar.base.NComp(); n++ {
		diff.Saxpy(-1, ar.outBase, n)
		fmt.Printf("component %d: |base| = %12.6e |tensor| = %12.6e |cross| = %12.6e, max |cross| = %12.6e\n",
			n, ar.outBase.Norm2(n), ar.outOp.Norm2(n), diff.Norm2(n), diff.Norm0(n))
	}
}
