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

	"github.com/notargets/ebtensor/cutcell"
	"github.com/notargets/ebtensor/ebgeom"
	"github.com/notargets/ebtensor/grid"
)

// ClassifyCmd represents the classify command
var ClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify cells and build the sparse cut cell storage",
	Long: `Classifies every cell of the decomposed domain as regular, cut or covered,
allocates cut cell storage only on the patches that need it, computes volume
fractions and checks the redistribution to a coarser patch layout.`,
	Run: func(cmd *cobra.Command, args []string) {
		fileName, _ := cmd.Flags().GetString("inputConditionsFile")
		ip := processInput(fileName)
		pb, err := NewProblem(ip)
		if err != nil {
			panic(err)
		}
		if err = RunClassify(pb); err != nil {
			panic(err)
		}
		printMetrics()
	},
}

func init() {
	rootCmd.AddCommand(ClassifyCmd)
	ClassifyCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Cells\n\t- Body\n\t- BCs")
}

func RunClassify(pb *Problem) (err error) {
	var (
		dc     = pb.Decomp
		counts = pb.Flags.Stats()
		dV     = 1.
	)
	for d := 0; d < pb.Geom.Dim(); d++ {
		dV *= pb.Geom.CellSize[d]
	}
	fmt.Printf("%d patches on %d ranks, cells per rank %v\n",
		dc.NumPatches(), dc.NRanks(), dc.DistMap.RankLoads(dc.Boxes))
	fmt.Printf("Cells: %d regular, %d cut, %d covered\n",
		counts[ebgeom.Regular], counts[ebgeom.SingleValued], counts[ebgeom.Covered])
	for _, p := range dc.LocalPatches() {
		state := "empty"
		if pb.Cut.Ok(p) {
			state = "allocated"
		}
		fmt.Printf("patch %4d %-24v rank %3d: %s\n", p, dc.Box(p), dc.Owner(p), state)
	}
	dense := pb.Cut.ToMultiFab(1, 0)
	fluidVolume := dense.Sum(0) * dV
	fmt.Printf("Volume fraction min %8.5f max %8.5f, fluid volume %12.8f\n",
		dense.Min(0), dense.Max(0), fluidVolume)

	// Redistribute onto patches twice as large and compare
	var coarse *grid.Decomposition
	if coarse, err = NewDecomposition(pb.Input, 2*pb.Input.MaxGridSize); err != nil {
		return
	}
	var (
		ng    = pb.Input.NGrow
		flags = ebgeom.NewFlagFieldFromImplicit(coarse, pb.Geom, ng, pb.Body)
		dst   *cutcell.MultiCutFab
	)
	if dst, err = cutcell.NewMultiCutFab(coarse, pb.Cut.NComp(), ng, flags); err != nil {
		return
	}
	dst.SetVal(0)
	if err = dst.ParallelCopy(pb.Cut, 0, 0, pb.Cut.NComp(), 0, 0, pb.Geom.Periodicity()); err != nil {
		return
	}
	moved := dst.ToMultiFab(1, 0).Sum(0) * dV
	fmt.Printf("Redistributed to %d patches (%d allocated), fluid volume %12.8f, difference %8.2e\n",
		coarse.NumPatches(), dst.NumAllocated(), moved, moved-fluidVolume)
	return
}
