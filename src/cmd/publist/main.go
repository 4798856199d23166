package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"publist/src/cmd/publist/cmdutil"
	"publist/src/cmd/publist/fetchcmd"
	"publist/src/cmd/publist/idscmd"
	"publist/src/cmd/publist/rendercmd"
	"publist/src/cmd/publist/runcmd"
)

// newRootCmd wires the subcommands onto a fresh root command.
func newRootCmd(deps cmdutil.Deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "publist",
		Short: "Researcher publication lists from ORCID, Scopus and doi.org",
	}
	root.PersistentFlags().String(cmdutil.FlagConfig, "", "Config file (default ./publist.yaml when present)")
	root.PersistentFlags().String(cmdutil.FlagLogLevel, "", "Log level: debug, info, warn, error")
	root.AddCommand(
		runcmd.New(deps),
		idscmd.New(deps),
		fetchcmd.New(deps),
		rendercmd.New(),
	)
	return root
}

func main() {
	if err := newRootCmd(cmdutil.Deps{}).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
