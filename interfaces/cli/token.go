package cli

import (
	"errors"
	"fmt"
	"time"

	"mindbloom-backend/pkg/auth"

	"github.com/spf13/cobra"
)

type tokenOptions struct {
	userID string
	email  string
	name   string
	roles  []string
	expiry time.Duration
}

func newTokenCmd(a *app) *cobra.Command {
	opts := tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an HS256 access token for local testing",
		Long: `Issue a token signed with JWT_SECRET that the API accepts.

  mindbloomctl token --user u-1 --email ana@example.com --role caregiver`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			token, err := issueToken(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.userID, "user", "", "subject of the token (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "email claim")
	cmd.Flags().StringVar(&opts.name, "name", "", "name claim")
	cmd.Flags().StringSliceVar(&opts.roles, "role", []string{"patient"}, "roles claim, repeatable")
	cmd.Flags().DurationVar(&opts.expiry, "expiry", 24*time.Hour, "token lifetime")
	return cmd
}

func issueToken(secret, issuer string, audience []string, opts tokenOptions) (string, error) {
	if opts.userID == "" {
		return "", errors.New("--user is required")
	}
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set; tokens for RS256 deployments come from the identity provider")
	}
	gen, err := auth.NewJWTGenerator(secret, issuer, audience, opts.expiry)
	if err != nil {
		return "", err
	}
	return gen.GenerateToken(opts.userID, opts.email, opts.name, opts.roles)
}
