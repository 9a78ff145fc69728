package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cppla/forumcore/config"
	"github.com/cppla/forumcore/services"
	"github.com/cppla/forumcore/utils"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	UserID   string
	Username string
	Role     string
	TTL      time.Duration
}

// NewTokenCommand mints a signed development token for a user.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Get().JWTSecret == "" {
				return errors.New("JWT_SECRET must be set to sign tokens")
			}
			switch services.Role(opts.Role) {
			case services.RoleUser, services.RoleAdmin:
			default:
				return fmt.Errorf("invalid role %q: must be user or admin", opts.Role)
			}
			tok, err := utils.GenerateToken(opts.UserID, opts.Username, opts.Role, opts.TTL)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&opts.Username, "username", "", "username")
	cmd.Flags().StringVar(&opts.Role, "role", string(services.RoleUser), "role (user|admin)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
