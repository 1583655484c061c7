// Command identityresolver runs the identity resolution service and exposes
// a handful of operator CLI subcommands that exercise the same components
// the server does, wired directly in-process rather than over a remote API.
//
// Logging:
//   - One base slog logger is created here and passed down via dependency
//     injection; components scope it with their own "component" attribute.
//   - No global slog configuration (no slog.SetDefault).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	rootCmd := &cobra.Command{
		Use:   "identityresolver",
		Short: "Crowdsourced caller-ID identity resolution service",
	}
	rootCmd.PersistentFlags().String("config", "", "path to config YAML (required)")

	rootCmd.AddCommand(
		newServeCmd(logger),
		newResolveCmd(logger),
		newSubmitCmd(logger),
		newRegistryCmd(logger),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT, matching the
// interrupt-driven shutdown path every long-running subcommand uses.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func configPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return "", errConfigRequired
	}
	return path, nil
}
