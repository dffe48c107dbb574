package main

import (
	"os"

	edrilacmder "github.com/nexprism/lms-Admin-panel-edrila-sub002/cmd/edrila"
)

func main() {
	cmd := edrilacmder.NewEdrilaCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
