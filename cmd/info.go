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
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/notargets/ebtensor/utils"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report the host features relevant to the patch workers",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s/%s, %d CPUs, %d patch workers\n",
			runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), utils.DefaultRunner.ParallelDegree)
		for _, f := range CPUFeatures() {
			fmt.Printf("\t%s\n", f)
		}
		fmt.Println(utils.GetMemUsage())
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
}

// CPUFeatures lists the vector extensions the host reports
func CPUFeatures() (features []string) {
	flags := []struct {
		name string
		has  bool
	}{
		{"sse2", cpu.X86.HasSSE2},
		{"avx", cpu.X86.HasAVX},
		{"avx2", cpu.X86.HasAVX2},
		{"fma", cpu.X86.HasFMA},
		{"avx512f", cpu.X86.HasAVX512F},
		{"asimd", cpu.ARM64.HasASIMD},
		{"sve", cpu.ARM64.HasSVE},
	}
	for _, f := range flags {
		if f.has {
			features = append(features, f.name)
		}
	}
	if len(features) == 0 {
		features = append(features, "no vector extensions reported")
	}
	return
}
