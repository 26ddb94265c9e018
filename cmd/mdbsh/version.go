package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/mdbsh/mdb"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print engine versions and check compatibility",
	Long: `Print the engine version mdbsh was built against and the version of the
library it is running with. The binding refuses to start when the runtime
has a different major version or an older minor version.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	engine, closeEngine := newEngine(logger)
	defer closeEngine()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "built against: %s\n", engine.BuildVersion())
	fmt.Fprintf(out, "runtime:       %s\n", engine.RuntimeVersion())

	b, err := mdb.New(engine, mdb.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(out, "status:        incompatible")
		return err
	}
	b.Close()
	fmt.Fprintln(out, "status:        compatible")
	return nil
}
