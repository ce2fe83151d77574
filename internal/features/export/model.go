package export

import (
	"errors"
	"fmt"
	"strings"

	"go-league/internal/features/report"
	"go-league/pkg/utils"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatHTML  Format = "html"
	FormatXLSX  Format = "xlsx"
	FormatEmail Format = "email"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a format name case-insensitively; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatHTML, FormatXLSX, FormatEmail:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Document is a finished export handed to a sink.
type Document struct {
	Filename string
	MIMEType string
	Body     []byte
}

const (
	MIMECSV  = "text/csv"
	MIMEHTML = "text/html; charset=utf-8"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEText = "text/plain; charset=utf-8"
)

const filenameDateLayout = "2006-01-02"

// Filename builds {org}_{reportType}_{date}.{ext} from the branding header.
func Filename(h report.BrandingHeader, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		utils.FileSlug(h.OrgName, "report"),
		h.ReportType,
		h.GeneratedAt.Format(filenameDateLayout),
		ext)
}

// Render dispatches to the renderer of a format. Every renderer is a pure
// function of the table.
func Render(f Format, t report.Table) (Document, error) {
	switch f {
	case FormatCSV:
		return RenderCSV(t), nil
	case FormatHTML:
		return RenderHTML(t)
	case FormatXLSX:
		return RenderXLSX(t)
	case FormatEmail:
		e := RenderEmail(t)
		return Document{
			Filename: Filename(t.Header, "txt"),
			MIMEType: MIMEText,
			Body:     []byte(e.Subject + "\n\n" + e.Body),
		}, nil
	}
	return Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
