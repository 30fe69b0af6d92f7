package cmd

import (
	"github.com/lista-de-compras/shopping-list-services/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	createUserName     string
	createUserEmail    string
	createUserPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account from the command line",
	Run: func(cmd *cobra.Command, args []string) {
		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer shoppingDB.Close()

		hash, err := bcrypt.GenerateFromPassword([]byte(createUserPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}

		user, err := shoppingDB.CreateUser(&models.User{
			Name:         createUserName,
			Email:        createUserEmail,
			PasswordHash: string(hash),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create user")
		}

		log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("User created")
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().StringVar(&createUserName, "name", "", "display name for the new user")
	createUserCmd.Flags().StringVar(&createUserEmail, "email", "", "login email for the new user")
	createUserCmd.Flags().StringVar(&createUserPassword, "password", "", "password for the new user")
	createUserCmd.MarkFlagRequired("name")
	createUserCmd.MarkFlagRequired("email")
	createUserCmd.MarkFlagRequired("password")
}
