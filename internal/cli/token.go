package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookhive-backend/internal/platform/auth"
	"bookhive-backend/internal/platform/db"
)

type TokenOptions struct {
	*RootOptions
	Subject int64
	Role    string
	TTL     time.Duration
}

// NewTokenCommand prints a signed bearer token. Meant for development and
// smoke tests; real tokens come from the identity provider.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an HS256 token for a member id",
		Example: `  bookhive token --sub 1 --role librarian
  bookhive token --sub 42 --ttl 2h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Subject <= 0 {
				return errors.New("--sub must be a positive member id")
			}
			if opts.Role != auth.RoleMember && opts.Role != auth.RoleLibrarian {
				return fmt.Errorf("--role must be %s or %s", auth.RoleMember, auth.RoleLibrarian)
			}

			cfg, err := db.LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			tok, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), opts.Subject, opts.Role, opts.TTL, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.Subject, "sub", 0, "member id (required)")
	cmd.Flags().StringVar(&opts.Role, "role", auth.RoleMember, "member|librarian")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}
