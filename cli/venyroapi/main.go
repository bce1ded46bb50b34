package main

import (
	"os"

	apicmder "github.com/papercomputeco/venyro/cmd/venyro/serve/api"
)

func main() {
	cmd := apicmder.NewAPICmd()
	cmd.Use = "venyroapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .venyro/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
