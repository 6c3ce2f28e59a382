package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// cellWidthMax wraps long messages and paths instead of widening the table.
const cellWidthMax = 60

// renderTable draws rows under headers. Rows shorter than the header are
// padded; aligns may be shorter than headers, the rest align left.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	width := len(headers)
	if width == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(tableRow(headers, width))
	for _, cells := range rows {
		tw.AppendRow(tableRow(cells, width))
	}
	tw.SetColumnConfigs(columnConfigs(width, aligns))
	return tw.Render()
}

func tableRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}

func columnConfigs(width int, aligns []columnAlignment) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, width)
	for i := range configs {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, WidthMax: cellWidthMax}
	}
	return configs
}
