// Command creginfo reports format version, corruption status, and
// optionally a recursive key-hierarchy dump for a Windows 9x/Me registry
// hive file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose  bool
	jsonOut  bool
	codepage string
	dumpTree bool
)

var rootCmd = &cobra.Command{
	Use:     "creginfo <hive>",
	Short:   "Report format version, corruption status, and key hierarchy for a CREG hive",
	Version: "0.1.0",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&codepage, "codepage", "c", "", "codepage to decode names/strings with (default windows-1252)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.Flags().BoolVarP(&dumpTree, "recursive", "H", false, "recursively dump the key hierarchy")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}
