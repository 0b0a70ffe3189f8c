package render

import "github.com/jedib0t/go-pretty/v6/table"

// KeyValueTable renders two-column rows as a bordered table, used by the
// status command's text output.
func KeyValueTable(title string, rows [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	return tw.Render()
}
