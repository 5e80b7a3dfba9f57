package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/scan"
)

// errNoImages is returned when none of the arguments names an image.
var errNoImages = errors.New("no images found")

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var (
		profileName string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "compress <path>...",
		Short: "Compress images and every image below directories",
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

			paths, err := scan.Collect(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errNoImages
			}

			outcomes := a.service.Compress(cmd.Context(), profile, paths)

			out := cmd.OutOrStdout()
			if jsonOutput || !isTerminal(out) {
				for _, o := range outcomes {
					if err := writeJSONLine(out, o); err != nil {
						return err
					}
				}
			} else {
				renderOutcomes(out, outcomes)
			}

			return failures(outcomes)
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Profile to compress with (default: active profile)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print one JSON object per file")

	return cmd
}

// failures returns an error when any file failed for a reason other than the
// output not being smaller.
func failures(outcomes []model.Outcome) error {
	failed := 0
	for _, o := range outcomes {
		if !o.Succeeded() && o.Kind != model.KindNotSmaller {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
}
