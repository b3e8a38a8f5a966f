// Command storefront runs the storefront GraphQL API.
package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const configFlag = "config"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Product catalog and order API over GraphQL",
		Long: `storefront serves a product catalog and the orders placed against it
through a single GraphQL endpoint.

Configuration is read from an optional file, STOREFRONT_* environment
variables and flags, in increasing precedence.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

func configFlagDef() cobraflags.Flag {
	return &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to a configuration file (yaml, json or toml)",
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
