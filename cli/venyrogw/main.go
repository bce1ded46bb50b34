package main

import (
	"os"

	gatewaycmder "github.com/papercomputeco/venyro/cmd/venyro/serve/gateway"
)

func main() {
	cmd := gatewaycmder.NewGatewayCmd()
	cmd.Use = "venyrogw"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .venyro/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
