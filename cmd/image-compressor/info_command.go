package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aliskhannn/image-compressor/internal/probe"
)

func newInfoCommand(_ *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Describe a file before compressing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := probe.Info(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput || !isTerminal(out) {
				return writeJSONLine(out, info)
			}

			rows := [][]string{{info.Filename, info.Extension, humanize.Bytes(uint64(info.Size))}}
			_, err = fmt.Fprintln(out, renderTable([]string{"File", "Extension", "Size"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")

	return cmd
}
