package main

import (
	"fmt"

	"storefront/internal/auth"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token signed with the configured JWT secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		if tokenRole != auth.RoleCustomer && tokenRole != auth.RoleAdmin {
			return fmt.Errorf("invalid --role %q: must be %s or %s", tokenRole, auth.RoleCustomer, auth.RoleAdmin)
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL).Generate(userID, tokenRole)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (UUID) to put in the subject claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleCustomer, "role claim: customer or admin")
	_ = tokenCmd.MarkFlagRequired("user")
}
