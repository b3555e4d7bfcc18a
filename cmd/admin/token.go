package main

import (
	"time"

	"github.com/shaygp/boxd/internal/auth"
	"github.com/spf13/cobra"
)

var tokenTTL = auth.DefaultTokenTTL

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an API token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := bootstrap()
		if err != nil {
			return err
		}
		defer c.Cleanup(cmd.Context())

		user, err := c.Repositories().Profiles.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		token, expires, err := c.Auth().IssueToken(user, tokenTTL)
		if err != nil {
			return err
		}

		out.Info("Token for %s, valid until %s", user.Username, expires.Format(time.RFC3339))
		return out.Value("", map[string]any{
			"user_id":    user.ID,
			"token":      token,
			"expires_at": expires,
		})
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", tokenTTL, "Token lifetime")
}
