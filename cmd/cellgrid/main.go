// Command cellgrid renders terminal text headlessly and reports frame
// statistics.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/internal/configfile"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cellgrid:", err)
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	verbose    bool
}

func (f *rootFlags) load() (cellgrid.Config, error) {
	return configfile.Load(f.configPath)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "cellgrid",
		Short:         "Headless GPU terminal frame renderer",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				cellgrid.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log retries and atlas changes to stderr")

	root.AddCommand(newRenderCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}
