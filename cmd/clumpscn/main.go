package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/clumpscn/internal/version"
)

// newRootCmd builds the command tree. Tests use it to get a fresh tree per run.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clumpscn",
		Short: "A data clump detector for object-oriented code",
		Long: `clumpscn finds data clumps: groups of fields or method parameters
that keep appearing together across classes and methods.

It consumes the JSON entity model produced by an AST extractor (one file
per class or interface) and reports every clump with a probability that
accounts for unknown types and unknown class hierarchies.

Detected clump kinds:
  • fields to fields          (two classes share a group of fields)
  • parameters to parameters  (two methods share a group of parameters)
  • parameters to fields      (a method's parameters mirror a class's fields)`,
		Version:       version.Short(),
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewDetectCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
