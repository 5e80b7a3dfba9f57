package main

import (
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Compress images as they appear in directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			profile, err := a.cfg.Profile(profileName)
			if err != nil {
				return err
			}

			w, err := watcher.New(a.service, profile, a.cfg.Watch.Debounce)
			if err != nil {
				return err
			}
			defer w.Close()

			for _, dir := range args {
				if err := w.Add(dir); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			tty := isTerminal(out)
			zlog.Logger.Warn().Strs("dirs", args).Str("profile", profile.Name).Msg("watching for images")

			return w.Run(cmd.Context(), func(o model.Outcome) {
				if !tty {
					if err := writeJSONLine(out, o); err != nil {
						zlog.Logger.Err(err).Msg("failed to write outcome")
					}
					return
				}
				renderOutcomes(out, []model.Outcome{o})
			})
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Profile to compress with (default: active profile)")

	return cmd
}
