package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/hdrmeasure/internal/config"
	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/util"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage analysis configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Write the effective default configuration as YAML",
		Long: `Write the built-in defaults, with any HDRMEASURE_* environment overrides
applied, to PATH. The file can be edited and passed to analyze --config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeDefaultConfig(args[0], force); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func writeDefaultConfig(path string, force bool) error {
	if util.FileExists(path) && !force {
		return herrors.NewPathError(fmt.Sprintf("%s already exists (use --force)", path))
	}
	cfg := config.NewConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return herrors.NewConfigError("reading environment", err)
	}
	if err := cfg.Validate(); err != nil {
		return herrors.NewConfigError("invalid configuration", err)
	}
	if err := cfg.Save(path); err != nil {
		return herrors.NewIOError(fmt.Sprintf("writing %s", path), err)
	}
	return nil
}
