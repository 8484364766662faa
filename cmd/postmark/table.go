package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"postmark/internal/api"
)

// tableColumn describes one column of a postmark listing. Count columns
// (records, annotation tallies) are right aligned; path and key columns
// stay left aligned so mixed-direction cell text keeps a stable gutter.
type tableColumn struct {
	title string
	count bool
}

func renderTable(columns []tableColumn, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.count {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

// collisionTable lays out one row per shadowed path, printing the key
// and surviving path only on the first row of each collision group.
func collisionTable(collisions []api.Collision) string {
	rows := make([][]string, 0, len(collisions))
	for _, c := range collisions {
		for i, shadowed := range c.Shadowed {
			key, survivor := "", ""
			if i == 0 {
				key, survivor = c.Key, c.Survivor
			}
			rows = append(rows, []string{key, survivor, shadowed})
		}
	}
	return renderTable(
		[]tableColumn{{title: "Key"}, {title: "Survivor"}, {title: "Shadowed"}},
		rows,
	)
}

// sessionTable renders the daemon status session listing. The first
// column carries the current-session marker.
func sessionTable(rows [][]string) string {
	return renderTable(
		[]tableColumn{
			{title: ""},
			{title: "Session"},
			{title: "Archive"},
			{title: "State"},
			{title: "Records", count: true},
			{title: "Annotated", count: true},
			{title: "Collisions", count: true},
		},
		rows,
	)
}
