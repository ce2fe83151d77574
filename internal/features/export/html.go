package export

import (
	"bytes"
	"html/template"

	"go-league/internal/features/report"
)

var documentTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Header.ReportTitle}} - {{.Header.OrgName}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1f2933; margin: 32px; }
header { border-bottom: 3px solid #1f6feb; margin-bottom: 16px; padding-bottom: 8px; }
header h1 { margin: 0; font-size: 22px; }
header .org { font-size: 14px; color: #52606d; }
header .meta { font-size: 11px; color: #7b8794; margin-top: 4px; }
.cards { display: flex; gap: 12px; margin: 16px 0; }
.card { flex: 1; border: 1px solid #d9e2ec; border-radius: 6px; padding: 10px; }
.card .label { font-size: 11px; text-transform: uppercase; color: #7b8794; }
.card .value { font-size: 20px; font-weight: bold; }
table { width: 100%; border-collapse: collapse; font-size: 12px; }
th { background: #f0f4f8; text-align: left; }
th, td { border: 1px solid #d9e2ec; padding: 4px 6px; }
tr:nth-child(even) td { background: #fafbfc; }
@media print { body { margin: 0; } .cards { break-inside: avoid; } }
</style>
</head>
<body>
<header>
<div class="org">{{.Header.OrgName}}{{if .Header.ScopeLabel}} &middot; {{.Header.ScopeLabel}}{{end}}</div>
<h1>{{.Header.ReportTitle}}</h1>
<div class="meta">Generated by {{.Header.GeneratedBy}} on {{.GeneratedAt}} &middot; {{.RowCount}} rows</div>
</header>
{{if .Cards}}<section class="cards">
{{range .Cards}}<div class="card"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</section>
{{end}}<table>
<thead><tr>{{range .Columns}}<th>{{.Label}}</th>{{end}}</tr></thead>
<tbody>
{{range .Cells}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type documentData struct {
	Header      report.BrandingHeader
	GeneratedAt string
	RowCount    int
	Cards       []report.StatCard
	Columns     []report.ColumnDef
	Cells       [][]string
}

// RenderHTML produces the printable document. Cells are the same strings the
// CSV renderer writes.
func RenderHTML(t report.Table) (Document, error) {
	data := documentData{
		Header:      t.Header,
		GeneratedAt: t.Header.GeneratedAt.Format(timestampLayout),
		RowCount:    len(t.Rows),
		Cards:       report.Cards(t.Stats),
		Columns:     t.Columns,
		Cells:       report.FormatRows(t.Rows, t.Columns),
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return Document{}, err
	}
	return Document{
		Filename: Filename(t.Header, "html"),
		MIMEType: MIMEHTML,
		Body:     buf.Bytes(),
	}, nil
}
