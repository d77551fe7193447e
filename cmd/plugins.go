package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetlab/dispatchsim/app/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered policy, behavior and mutation types",
	Run:   listPlugins,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

func listPlugins(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "policies:")
	for _, n := range plugins.PolicyNames() {
		fmt.Fprintf(out, "  %s\n", n)
	}
	fmt.Fprintln(out, "behaviors:")
	for _, n := range plugins.BehaviorNames() {
		fmt.Fprintf(out, "  %s\n", n)
	}
	fmt.Fprintln(out, "mutations:")
	for _, n := range plugins.MutationNames() {
		fmt.Fprintf(out, "  %s\n", n)
	}
}
