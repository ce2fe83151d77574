package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-league/internal/config"
	"go-league/internal/features/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var generatedAt = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func testHeader(rt report.ReportType) report.BrandingHeader {
	def, _ := report.Lookup(rt)
	id := report.StaticIdentity{
		Org:   "Riverside Youth Soccer",
		User:  "Jo Admin",
		Clock: func() time.Time { return generatedAt },
	}
	return report.NewBrandingHeader(id, "Spring 2024", def)
}

func paymentRows(n int) []report.Row {
	rows := make([]report.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, report.Row{
			"full_name":      fmt.Sprintf("Player %02d", i),
			"team_name":      "Hawks",
			"total_due":      150.0,
			"total_paid":     100.0,
			"balance":        50.0,
			"payment_status": "Partial",
		})
	}
	return rows
}

func viewTable(t *testing.T, rows []report.Row, configure func(v *report.ViewController)) report.Table {
	t.Helper()
	v, err := report.NewViewController(report.ReportTypePayments)
	require.NoError(t, err)
	if configure != nil {
		configure(v)
	}
	def := v.Definition()
	return report.Table{
		Rows:    v.Apply(rows),
		Columns: v.VisibleColumns(),
		Stats:   report.NewStatsRecord(def.Stats, map[string]float64{"total_revenue": 1500, "collection_rate": 66}),
		Header:  testHeader(report.ReportTypePayments),
	}
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVExportsFilteredRowsOnly(t *testing.T) {
	rows := paymentRows(10)
	rows[3]["full_name"] = "Zoe Quinn"
	rows[7]["full_name"] = "Zed Quarry"

	for _, hidden := range [][]string{nil, {"team_name", "balance"}} {
		table := viewTable(t, rows, func(v *report.ViewController) {
			require.NoError(t, v.SetFilter(report.FilterSearch, "Qu"))
			for _, id := range hidden {
				require.NoError(t, v.ToggleColumnVisible(id))
			}
		})

		doc := RenderCSV(table)
		records := readCSV(t, doc.Body)
		require.Len(t, records, HeaderLines+1+2)
		assert.Equal(t, []string{"Rows", "2"}, records[4])
		assert.Len(t, records[HeaderLines], len(table.Columns))
		assert.Equal(t, "Zoe Quinn", records[HeaderLines+1][0])
		assert.Equal(t, "Zed Quarry", records[HeaderLines+2][0])
	}
}

func TestCSVHeaderAndQuoting(t *testing.T) {
	rows := paymentRows(1)
	rows[0]["full_name"] = `Ava "AJ" Lee, Jr.`
	table := viewTable(t, rows, nil)

	doc := RenderCSV(table)
	assert.Equal(t, "riverside_youth_soccer_payments_2024-06-15.csv", doc.Filename)
	assert.Equal(t, MIMECSV, doc.MIMEType)

	lines := strings.Split(strings.TrimSuffix(string(doc.Body), "\n"), "\n")
	assert.Equal(t, `"Riverside Youth Soccer - Spring 2024"`, lines[0])
	assert.Equal(t, `"Report","Payment Status"`, lines[1])
	assert.Equal(t, `"Generated By","Jo Admin"`, lines[2])
	assert.Equal(t, `"Generated At","Jun 15, 2024 2:30 PM"`, lines[3])
	assert.True(t, strings.HasPrefix(lines[6], `"Ava ""AJ"" Lee, Jr.","Hawks","$150.00"`), lines[6])

	records := readCSV(t, doc.Body)
	assert.Equal(t, `Ava "AJ" Lee, Jr.`, records[6][0])
}

func TestHTMLMatchesCSVCells(t *testing.T) {
	rows := paymentRows(3)
	rows[1]["full_name"] = "<b>Ben</b> & Co"
	rows[2]["balance"] = nil
	table := viewTable(t, rows, func(v *report.ViewController) {
		require.NoError(t, v.SetSort("full_name"))
	})

	doc, err := RenderHTML(table)
	require.NoError(t, err)
	html := string(doc.Body)
	assert.Equal(t, MIMEHTML, doc.MIMEType)
	assert.Contains(t, html, "Payment Status")
	assert.Contains(t, html, "Riverside Youth Soccer")
	assert.Contains(t, html, "$1,500.00")
	assert.Contains(t, html, "66%")
	assert.NotContains(t, html, "<b>Ben</b>")

	records := readCSV(t, RenderCSV(table).Body)
	for _, record := range records[HeaderLines+1:] {
		for _, cell := range record {
			assert.Contains(t, html, "<td>"+template.HTMLEscapeString(cell)+"</td>")
		}
	}
	assert.Equal(t, strings.Count(html, "<tr>"), len(table.Rows)+1)
}

func TestXLSXWorkbook(t *testing.T) {
	table := viewTable(t, paymentRows(2), nil)
	doc, err := RenderXLSX(table)
	require.NoError(t, err)
	assert.Equal(t, "riverside_youth_soccer_payments_2024-06-15.xlsx", doc.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, HeaderLines+1+2)
	assert.Equal(t, "Player", rows[HeaderLines][0])
	assert.Equal(t, "$150.00", rows[HeaderLines+1][2])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, []string{"Total Revenue", "$1,500.00"}, summary[0])
}

func TestEmailHandoff(t *testing.T) {
	table := viewTable(t, paymentRows(4), nil)
	e := RenderEmail(table)

	assert.Equal(t, "Payment Status - Riverside Youth Soccer", e.Subject)
	assert.Contains(t, e.Body, "Organization: Riverside Youth Soccer (Spring 2024)")
	assert.Contains(t, e.Body, "Rows: 4")
	assert.Contains(t, e.Body, "Collection Rate: 66%")
	assert.NotContains(t, e.Body, "Player 00", "the table is never embedded")

	link := e.MailtoURL("coach@example.com")
	assert.True(t, strings.HasPrefix(link, "mailto:coach@example.com?"))
	assert.Contains(t, link, "subject=Payment%20Status%20-%20Riverside%20Youth%20Soccer")
	assert.NotContains(t, link, "+")
}

func TestRenderDispatch(t *testing.T) {
	table := viewTable(t, paymentRows(1), nil)
	for _, f := range []Format{FormatCSV, FormatHTML, FormatXLSX, FormatEmail} {
		doc, err := Render(f, table)
		require.NoError(t, err, f)
		assert.NotEmpty(t, doc.Body, f)
	}
	_, err := Render("pdf", table)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	doc := Document{Filename: "../escape.csv", Body: []byte("a,b\n")}

	require.NoError(t, NewDirSink(dir).Deliver(context.Background(), Delivery{Document: doc}))
	body, err := os.ReadFile(filepath.Join(dir, "escape.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(body))
}

func TestMailSink(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	sink := NewMailSink(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "reports@example.com"}, zap.NewNop())
	sink.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	d := Delivery{
		Document: Document{Filename: "report.csv", MIMEType: MIMECSV, Body: []byte(`"a","b"`)},
		Email:    EmailHandoff{Subject: "Roster", Body: "Rows: 1\nDone"},
		To:       []string{"coach@example.com"},
	}
	require.NoError(t, sink.Deliver(context.Background(), d))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"coach@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "From: reports@example.com\r\n")
	assert.Contains(t, msg, "Rows: 1\r\nDone")
	assert.Contains(t, msg, `filename="report.csv"`)
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString([]byte(`"a","b"`)))

	assert.Error(t, sink.Deliver(context.Background(), Delivery{Document: d.Document}))
	assert.False(t, NewMailSink(config.SMTPConfig{}, zap.NewNop()).Configured())
}
