package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/tuner/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tuner: %v\n", err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "tuner",
		Short: "Browse and follow an internet radio station collection",
		Long: `Tuner shows your radio station collection and follows what the
playback process is doing: which station is loading or playing and the
track metadata it reports.

Stations come from ~/.config/tuner/stations.toml when it exists, otherwise
from the playback process itself.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "override tuner config path (optional)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "override preferences path (optional)")
	flags.IntVar(&opts.PollEvery, "poll", 0, "poll interval in seconds (optional, defaults to the config value)")

	cmd.AddCommand(watchCmd(&opts))
	cmd.AddCommand(stationsCmd(&opts))
	return cmd
}

func watchCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the collection without the UI, logging every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunHeadless(cmd.Context(), *opts, cmd.ErrOrStderr())
		},
	}
}

func stationsCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "Print the station list in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.ListStations(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}
}
