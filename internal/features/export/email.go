package export

import (
	"fmt"
	"net/url"
	"strings"

	"go-league/internal/features/report"
)

// EmailHandoff is the subject and body handed to a mail composer. It
// summarizes the report and never embeds the table.
type EmailHandoff struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func RenderEmail(t report.Table) EmailHandoff {
	h := t.Header
	scope := h.OrgName
	if h.ScopeLabel != "" {
		scope += " (" + h.ScopeLabel + ")"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%s\n\n", h.ReportTitle)
	fmt.Fprintf(&body, "Organization: %s\n", scope)
	fmt.Fprintf(&body, "Generated by: %s\n", h.GeneratedBy)
	fmt.Fprintf(&body, "Generated at: %s\n", h.GeneratedAt.Format(timestampLayout))
	fmt.Fprintf(&body, "Rows: %d\n", len(t.Rows))
	for _, card := range report.Cards(t.Stats) {
		fmt.Fprintf(&body, "%s: %s\n", card.Label, card.Value)
	}

	return EmailHandoff{
		Subject: fmt.Sprintf("%s - %s", h.ReportTitle, h.OrgName),
		Body:    body.String(),
	}
}

// MailtoURL builds a mailto: link for the host mail composer.
func (e EmailHandoff) MailtoURL(to ...string) string {
	q := url.Values{}
	q.Set("subject", e.Subject)
	q.Set("body", e.Body)
	// mailto wants %20, not +
	query := strings.ReplaceAll(q.Encode(), "+", "%20")

	recipients := make([]string, len(to))
	for i, addr := range to {
		recipients[i] = url.PathEscape(addr)
	}
	return "mailto:" + strings.Join(recipients, ",") + "?" + query
}
