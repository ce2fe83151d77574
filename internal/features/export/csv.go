package export

import (
	"bytes"
	"strconv"
	"strings"

	"go-league/internal/features/report"
)

// HeaderLines is the number of branding lines before the column header row.
const HeaderLines = 5

const timestampLayout = "Jan 2, 2006 3:04 PM"

// HeaderBlock returns the branding lines shared by the text renderers.
func HeaderBlock(t report.Table) [][]string {
	h := t.Header
	org := h.OrgName
	if h.ScopeLabel != "" {
		org += " - " + h.ScopeLabel
	}
	return [][]string{
		{org},
		{"Report", h.ReportTitle},
		{"Generated By", h.GeneratedBy},
		{"Generated At", h.GeneratedAt.Format(timestampLayout)},
		{"Rows", strconv.Itoa(len(t.Rows))},
	}
}

// RenderCSV writes the header block, one label row and one line per row.
// Every field is quoted.
func RenderCSV(t report.Table) Document {
	var buf bytes.Buffer
	for _, line := range HeaderBlock(t) {
		writeRecord(&buf, line)
	}

	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	writeRecord(&buf, labels)

	for _, cells := range report.FormatRows(t.Rows, t.Columns) {
		writeRecord(&buf, cells)
	}

	return Document{
		Filename: Filename(t.Header, "csv"),
		MIMEType: MIMECSV,
		Body:     buf.Bytes(),
	}
}

func writeRecord(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(quote(f))
	}
	buf.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
