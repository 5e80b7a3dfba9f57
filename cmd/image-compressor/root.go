package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		workersFlag int
		verbose     bool
	)

	ctx := newCommandContext(&configFlag, &workersFlag)

	rootCmd := &cobra.Command{
		Use:           "image-compressor",
		Short:         "Compress, resize and convert images in place",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so that stdout stays machine-readable.
			zlog.Logger = zlog.Logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else if cmd.Name() != "serve" {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().IntVarP(&workersFlag, "workers", "w", 0, "Files compressed concurrently (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every processed file")

	rootCmd.AddCommand(newCompressCommand(ctx))
	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newProfilesCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
