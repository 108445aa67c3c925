package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/platform/crypto"
	"kpiteam/internal/platform/kv"
)

func NewWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the most recent login",
		Long:  "Read the session database named by SESSION_DB_PATH and print the identity of the most recent login that has not logged out.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()
			sealer, err := crypto.New(cfg.SessionEncryptionKey)
			if err != nil {
				return wrapExitError(ExitCommandError, "invalid session key", err)
			}
			slot, err := kv.Open(cfg.SessionDBPath, sealer)
			if err != nil {
				return wrapExitError(ExitFailure, "open session database", err)
			}
			defer slot.Close()

			user, ok, err := auth.NewSessions(slot, nil, cfg.JWTSecret, cfg.SessionTTL).Restore(cmd.Context())
			if err != nil {
				return wrapExitError(ExitFailure, "read session", err)
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if !ok {
					return enc.Encode(map[string]any{"signedIn": false})
				}
				return enc.Encode(map[string]any{"signedIn": true, "user": user})
			}
			if !ok {
				_, err = fmt.Fprintln(out, "Not signed in")
				return err
			}
			_, err = fmt.Fprintf(out, "%s (%s, %s)\n", user.Name, user.Code, user.Role)
			return err
		},
	}
}
