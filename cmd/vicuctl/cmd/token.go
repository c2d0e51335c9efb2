package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/vicu/vicu-api/internal/config"
	"github.com/vicu/vicu-api/internal/service"
)

// TokenCmd signs a bearer token with AUTH_JWT_SECRET so the API can be
// exercised locally without the auth provider.
func TokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to sign tokens with APP_ENV=production")
			}

			auth := service.NewAuthService(cfg.AuthJWTSecret)
			token, err := auth.SignJWT(args[0], jwt.MapClaims{
				"exp": time.Now().Add(ttl).Unix(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
