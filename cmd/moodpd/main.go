// moodpd relays m00d command datagrams from the network to a serial mood lamp.
//
// Commands arrive as UDP datagrams, are validated, translated to the lamp's
// serial dialect and written without ever blocking the event loop. An OSC
// socket and an interactive console are optional extra inputs; MQTT and
// InfluxDB receive a mirror of what was sent.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "moodpd",
		Short: "Relay m00d datagrams to a serial mood lamp",
		Long: `moodpd listens for m00d command datagrams on UDP and forwards them
to a mood lamp on a serial port, in either the legacy framed dialect
or the newer text dialect.

Log flags for -l: e (errors), i (info), d (debug), q (quiet).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.allowRawSet = cmd.Flags().Changed("allow-raw")
			return run(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", os.Getenv("MOODPD_CONFIG"), "path to YAML config file")
	flags.BoolVarP(&opts.allowRaw, "allow-raw", "r", false, "let network peers send raw bytes to the lamp")
	flags.StringVarP(&opts.logFlags, "log", "l", "", "log flags (e, i, d, q)")
	flags.StringVarP(&opts.device, "tty", "t", "", "serial device of the lamp")
	flags.StringVar(&opts.dialect, "dialect", "", "serial dialect: framed or text")

	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "moodpd %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
