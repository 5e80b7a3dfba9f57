package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/service/compress"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSONLine encodes v as a single line of JSON.
func writeJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

var outcomeHeaders = []string{"File", "Result", "Original", "Output", "Saved", "Time"}

var outcomeAligns = []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}

func outcomeRow(o model.Outcome) []string {
	elapsed := o.Duration.Round(time.Millisecond).String()
	if !o.Succeeded() {
		return []string{filepath.Base(o.Path), string(o.Kind), "", "", "", elapsed}
	}

	r := o.Result
	status := "compressed"
	if r.Converted {
		status = "converted"
	}
	if r.OutPath != r.Path {
		status += " -> " + filepath.Base(r.OutPath)
	}
	return []string{
		filepath.Base(o.Path),
		status,
		humanize.Bytes(uint64(r.OriginalSize)),
		humanize.Bytes(uint64(r.OutSize)),
		fmt.Sprintf("%.1f%%", r.Savings()*100),
		elapsed,
	}
}

// renderOutcomes prints a table of outcomes followed by the batch totals.
func renderOutcomes(w io.Writer, outcomes []model.Outcome) {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, outcomeRow(o))
	}
	fmt.Fprintln(w, renderTable(outcomeHeaders, rows, outcomeAligns))
	fmt.Fprintln(w, totalsLine(compress.Summarize(outcomes)))
}

func totalsLine(t compress.Totals) string {
	line := fmt.Sprintf("%d compressed, %d failed", t.Succeeded, t.Failed)
	if t.OriginalBytes > 0 {
		saved := t.OriginalBytes - t.OutBytes
		line += fmt.Sprintf(", saved %s of %s", humanize.Bytes(uint64(max(saved, 0))), humanize.Bytes(uint64(t.OriginalBytes)))
	}
	return line
}
