package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/cellgrid/internal/configfile"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	var (
		write     string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if write != "" {
				if err := configfile.Write(write, cfg, overwrite); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", write)
				return err
			}
			return configfile.Dump(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "write the configuration to this path instead of printing it")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file with --write")
	return cmd
}
