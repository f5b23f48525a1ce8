// financectl runs maintenance tasks against the finance database.
//
// Usage (from backend directory):
//
//	DB_DRIVER=mysql DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/financectl migrate
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "financectl",
		Short: "Finance backend maintenance",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newMigrateCommand(),
		newSeedAdminCommand(),
		newExportDRECommand(),
		newPubSubSetupCommand(),
		newBackfillSummariesCommand(),
		newPurgeIdempotencyCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
