package export

import (
	"context"
	"errors"
	"fmt"

	"go-league/internal/features/report"

	"go.uber.org/zap"
)

var ErrMailUnavailable = errors.New("mail delivery is not configured")

// ExportRequest is a report run plus export options.
type ExportRequest struct {
	report.RunRequest
	Format     string   `json:"format"`
	ScopeLabel string   `json:"scope_label"`
	To         []string `json:"to,omitempty"`
}

// EmailResult is the email handoff plus a mailto link; Sent is true when the
// server also delivered it.
type EmailResult struct {
	EmailHandoff
	Mailto string `json:"mailto"`
	Sent   bool   `json:"sent"`
}

type ExportService interface {
	Export(ctx context.Context, req ExportRequest, id report.Identity) (*Document, error)
	Email(ctx context.Context, req ExportRequest, id report.Identity) (*EmailResult, error)
}

type ExportServiceImpl struct {
	ReportService report.ReportService
	Mail          *MailSink
	Logger        *zap.Logger
}

func NewExportService(reportService report.ReportService, mail *MailSink, logger *zap.Logger) ExportService {
	return &ExportServiceImpl{
		ReportService: reportService,
		Mail:          mail,
		Logger:        logger,
	}
}

// table runs the report and builds the export tuple. A report that failed
// to load is never exported.
func (s *ExportServiceImpl) table(ctx context.Context, req ExportRequest, id report.Identity) (report.Table, error) {
	panel, err := s.ReportService.OpenPanel(ctx, req.RunRequest)
	if err != nil {
		return report.Table{}, err
	}
	return panel.ExportTable(id, req.ScopeLabel), nil
}

func (s *ExportServiceImpl) Export(ctx context.Context, req ExportRequest, id report.Identity) (*Document, error) {
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	t, err := s.table(ctx, req, id)
	if err != nil {
		return nil, err
	}
	doc, err := Render(format, t)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}
	s.Logger.Info("Report exported",
		zap.String("report_type", string(req.ReportType)),
		zap.String("org_id", req.OrgID),
		zap.String("format", string(format)),
		zap.Int("rows", len(t.Rows)))
	return &doc, nil
}

func (s *ExportServiceImpl) Email(ctx context.Context, req ExportRequest, id report.Identity) (*EmailResult, error) {
	t, err := s.table(ctx, req, id)
	if err != nil {
		return nil, err
	}
	handoff := RenderEmail(t)
	result := &EmailResult{EmailHandoff: handoff, Mailto: handoff.MailtoURL(req.To...)}
	if len(req.To) == 0 {
		return result, nil
	}

	if !s.Mail.Configured() {
		return nil, ErrMailUnavailable
	}
	if err := s.Mail.Deliver(ctx, Delivery{Document: RenderCSV(t), Email: handoff, To: req.To}); err != nil {
		return nil, err
	}
	result.Sent = true
	return result, nil
}
