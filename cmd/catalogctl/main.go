package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Operational commands for the catalog backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSchemaCheckCommand(),
		newSchemaFixCommand(),
		newSeedCommand(),
		newSetupStorageCommand(),
		newSyncLegacyCommand(),
		newUploadLegacyCommand(),
		newSweepOrphansCommand(),
	)
	return root
}
