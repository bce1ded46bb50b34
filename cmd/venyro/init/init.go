// Package initcmder provides the init command for initializing a local .venyro
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/venyro/pkg/config"
)

const (
	dirName = ".venyro"
)

const initLongDesc string = `Initialize a new .venyro/ directory in the current working directory.

Creates a local .venyro/ directory that takes precedence over the default
~/.venyro/ directory for configuration and chat sessions, and writes a
config.toml holding the default settings if none exists yet.

This is useful for maintaining separate gateway settings per project.

Examples:
  venyro init`

const initShortDesc string = "Initialize a local .venyro/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runInit(w io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .venyro directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
		return err
	}

	fmt.Fprintf(w, "Initialized .venyro directory: %s\n", dir)
	return nil
}
