package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "init-db-migrate",
	Short: "Initialize tables and run database migrations",
	Long:  `This job runs the embedded goose migrations against the configured database.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer shoppingDB.Close()

		log.Info().Msg("Running migrations...")
		if err := shoppingDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		log.Info().Msg("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
