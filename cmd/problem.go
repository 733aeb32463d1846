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
	"os"

	"github.com/notargets/ebtensor/InputParameters"
	"github.com/notargets/ebtensor/cutcell"
	"github.com/notargets/ebtensor/ebgeom"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// Problem is the grid, geometry and cut cell data an input file describes
type Problem struct {
	Input  *InputParameters.InputParametersEB
	Geom   grid.Geometry
	Decomp *grid.Decomposition
	Body   ebgeom.ImplicitFunction
	Flags  *ebgeom.FlagField
	Cut    *cutcell.MultiCutFab
}

func NewProblem(ip *InputParameters.InputParametersEB) (pb *Problem, err error) {
	pb = &Problem{Input: ip, Geom: ip.Geometry()}
	if pb.Decomp, err = NewDecomposition(ip, ip.MaxGridSize); err != nil {
		return nil, err
	}
	if pb.Body, err = NewBody(ip.Body, ip.Dimension); err != nil {
		return nil, err
	}
	pb.Flags = ebgeom.NewFlagFieldFromImplicit(pb.Decomp, pb.Geom, ip.NGrow, pb.Body)
	if pb.Cut, err = cutcell.NewMultiCutFab(pb.Decomp, ip.NComp, ip.NGrow, pb.Flags); err != nil {
		return nil, err
	}
	cutcell.FillVolumeFractions(pb.Cut, pb.Geom, pb.Body, ip.VolFracSamples)
	return
}

// NewDecomposition chops the domain into patches of at most maxGridSize cells
// per direction and distributes them with the configured partitioner
func NewDecomposition(ip *InputParameters.InputParametersEB, maxGridSize int) (dc *grid.Decomposition, err error) {
	var (
		ba = grid.NewBoxArray(ip.Domain(), maxGridSize)
		dm grid.DistributionMapping
	)
	switch ip.Partitioner {
	case "metis":
		if dm, err = grid.NewMetisMapping(ba, ip.NRanks, 0.05); err != nil {
			return
		}
	default:
		dm = grid.NewContiguousMapping(ip.NRanks, len(ba))
	}
	return grid.NewDecomposition(ba, dm), nil
}

func NewBody(b InputParameters.Body, dim int) (f ebgeom.ImplicitFunction, err error) {
	var x0, n [3]float64
	switch b.Type {
	case "", "none":
		return ebgeom.ImplicitFunc(func([3]float64) float64 { return 1 }), nil
	case "sphere":
		copy(x0[:], b.Center)
		f = ebgeom.Sphere{Center: x0, Radius: b.Radius, Dim: dim}
	case "plane":
		copy(x0[:], b.Point)
		copy(n[:], b.Normal)
		f = ebgeom.Plane{Point: x0, Normal: n}
	default:
		return nil, fmt.Errorf("%w: unknown body type %q", utils.ErrConfiguration, b.Type)
	}
	if b.Invert {
		f = ebgeom.Complement{F: f}
	}
	return
}

func processInput(fileName string) (ip *InputParameters.InputParametersEB) {
	var err error
	if len(fileName) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Cylinder in a channel"
Dimension: 2
Cells: [32, 16]
ProbLo: [0, 0]
ProbHi: [2, 1]
Periodic: [true, false]
MaxGridSize: 8
NRanks: 4
Partitioner: metis
Body:
  Type: sphere
  Center: [1, 0.5]
  Radius: 0.2
BCs:
  ylo: [wall]
  yhi: [wall]
BoundaryValues:
  yhi: [1, 0]
Eta: 1
Kappa: 0.5
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if ip, err = InputParameters.ReadFile(fileName); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	ip.Print()
	return
}
