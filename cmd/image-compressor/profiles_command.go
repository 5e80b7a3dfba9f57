package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/image-compressor/internal/model"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List configured profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput || !isTerminal(out) {
				for _, p := range cfg.Profiles {
					if err := writeJSONLine(out, p); err != nil {
						return err
					}
				}
				return nil
			}

			rows := make([][]string, 0, len(cfg.Profiles))
			for _, p := range cfg.Profiles {
				rows = append(rows, profileRow(p, p.Name == cfg.ActiveProfile))
			}
			_, err = fmt.Fprintln(out, renderTable(
				[]string{"Name", "Mode", "Qualities (jpg/png/webp/gif/avif)", "Resize", "Convert", "Output"},
				rows,
				nil,
			))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print one JSON object per profile")

	return cmd
}

func profileRow(p model.Profile, active bool) []string {
	name := p.Name
	if active {
		name += " *"
	}

	mode := "lossless"
	if p.Lossy {
		mode = "lossy"
	}

	resize := "-"
	if p.ResizeEnabled {
		resize = fmt.Sprintf("%dx%d", p.MaxWidth, p.MaxHeight)
		if p.BackgroundFillEnabled {
			resize += " fill " + p.BackgroundFill
		}
	}

	convert := "-"
	if p.ConvertEnabled {
		convert = p.ConvertFormat.String()
	}

	output := "same name"
	switch {
	case p.Overwrite:
		output = "overwrite"
	case p.PostfixEnabled:
		output = "postfix " + strconv.Quote(p.Postfix)
	}

	return []string{
		name,
		mode,
		fmt.Sprintf("%d/%d/%d/%d/%d", p.JPEGQuality, p.PNGQuality, p.WebPQuality, p.GIFQuality, p.AVIFQuality),
		resize,
		convert,
		output,
	}
}
