package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kpiteam/internal/platform/bridge"
)

type InvokeOptions struct {
	*RootOptions
	Timeout time.Duration
}

func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <action> [payload]",
		Short: "Call one remote action and print the result",
		Long: `Call one remote action through the configured transport.

Example:
  kpiteam invoke getAllData
  kpiteam invoke saveKPI '{"id":"k9","name":"Uptime"}'
  kpiteam invoke deleteKPI '"k9"'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload json.RawMessage
			if len(args) == 2 {
				payload = json.RawMessage(args[1])
			}
			return invokeAction(cmd, opts, args[0], payload)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall call timeout")
	return cmd
}

func invokeAction(cmd *cobra.Command, opts *InvokeOptions, action string, payload json.RawMessage) error {
	if payload != nil && !json.Valid(payload) {
		return wrapExitError(ExitCommandError, "invalid payload", fmt.Errorf("payload must be JSON"))
	}

	cfg := opts.loadConfig()
	if err := cfg.Validate(); err != nil {
		return wrapExitError(ExitCommandError, "invalid configuration", err)
	}
	b, err := bridge.FromConfig(cfg, nil, nil)
	if err != nil {
		return wrapExitError(ExitCommandError, "transport", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var arg any
	if payload != nil {
		arg = payload
	}
	data, err := b.Invoke(ctx, action, arg)
	if err != nil {
		return wrapExitError(ExitFailure, action+" failed", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		_, err := fmt.Fprintln(out, string(data))
		return err
	}
	fmt.Fprintf(out, "Action: %s (transport %s)\n", action, b.Mode())
	var pretty bytes.Buffer
	if len(data) == 0 {
		pretty.WriteString("null")
	} else if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(data)
	}
	_, err = fmt.Fprintln(out, pretty.String())
	return err
}
