package main

import "github.com/notargets/ebtensor/cmd"

func main() {
	cmd.Execute()
}
