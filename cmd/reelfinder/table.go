package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/reelfinder/reelfinder/internal/catalog"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const plotWidth = 76

// renderMatches lays out matches as a rounded table, one row per record,
// followed by the cast and plot of each record.
func renderMatches(matches []catalog.Detail) string {
	headers := []string{"#", "Title", "Year", "Type", "Seasons", "Rating", "Genre", "IMDb ID"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}

	rows := make([][]string, 0, len(matches))
	for i, m := range matches {
		seasons := ""
		if m.IsSeries() && m.Seasons != nil {
			seasons = strconv.Itoa(*m.Seasons)
		}
		rating := "N/A"
		if m.Rating != nil {
			rating = strconv.FormatFloat(*m.Rating, 'f', 1, 64) + "/10"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.Title,
			m.Year,
			m.TypeLabel(),
			seasons,
			rating,
			m.Genre,
			m.ID,
		})
	}

	var b strings.Builder
	b.WriteString(renderTable(headers, rows, aligns))
	for i, m := range matches {
		if m.Cast == "" && m.Plot == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n%d. %s", i+1, m.Title)
		if m.Cast != "" {
			fmt.Fprintf(&b, "\n   Cast: %s", m.Cast)
		}
		if m.Plot != "" {
			wrapped := text.WrapSoft(m.Plot, plotWidth)
			b.WriteString("\n   " + strings.ReplaceAll(wrapped, "\n", "\n   "))
		}
	}
	return b.String()
}

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
