package main

import (
	"os"

	venyrocmder "github.com/papercomputeco/venyro/cmd/venyro"
)

func main() {
	cmd := venyrocmder.NewVenyroCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
