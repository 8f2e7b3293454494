package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/victorgalvez56/nvim-voice/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(a))
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default configuration to the config path unless a file is already
there. An existing file is loaded and validated instead. Use --force to
replace it with the defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if force {
				if err := config.SaveConfig(config.DefaultConfig(), a.configPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", a.configPath)
				return nil
			}

			_, created, err := config.LoadOrCreate(a.configPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "wrote %s\n", a.configPath)
			} else {
				fmt.Fprintf(out, "%s already exists\n", a.configPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
