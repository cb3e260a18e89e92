package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/clipnote/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the clipnote config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default configuration to the config path.

Examples:
  # Create ~/.config/clipnote/config.yaml
  clipnote config init

  # Overwrite an existing file
  clipnote config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.configPath
			if path == "" {
				defaultPath, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if err := config.WriteFile(path, config.Default(), force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\nUse --force to overwrite.\n", path)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := resolveConfig(root)
			if err != nil {
				return err
			}
			data, err := config.Marshal(provider.Current())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", provider.Path(), data)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
