// Command edtctl is the operator-facing entry point for booting a
// single-process OCR-style runtime and driving it through a handful of
// canned scenarios (spec.md §8's end-to-end examples). Grounded on the
// teacher's cmd/cli/cli layout (a cobra root command with leaf verbs),
// generalized from aistore's cluster-admin verbs (bucket/object/job) to
// this runtime's boot/run/status verbs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "edtctl",
		Short: "drive a single-process OCR-style EDT runtime",
	}
	root.PersistentFlags().Int("workers", 4, "worker pool size")
	root.PersistentFlags().Int("verbosity", 0, "log verbosity")
	_ = viper.BindPFlag("workers", root.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("verbosity", root.PersistentFlags().Lookup("verbosity"))

	root.AddCommand(newRunCmd())
	root.AddCommand(newStatusCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
