package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RunRequest describes one report run: the report, its scope and the view
// configuration to apply before rendering.
type RunRequest struct {
	ReportType     ReportType      `json:"report_type"`
	SeasonID       string          `json:"season_id"`
	OrgID          string          `json:"-"`
	Filters        Filters         `json:"filters"`
	VisibleColumns map[string]bool `json:"visible_columns,omitempty"`
	ColumnOrder    []string        `json:"column_order,omitempty"`
	SortField      string          `json:"sort_field,omitempty"`
	SortDir        SortDir         `json:"sort_dir,omitempty"`
	// Columns, when set, is the exact visible set in display order. It
	// replaces VisibleColumns and ColumnOrder instead of overlaying the
	// schema defaults.
	Columns []string `json:"columns,omitempty"`
}

func (r RunRequest) Scope() Scope {
	return Scope{SeasonID: r.SeasonID, OrgID: r.OrgID}
}

func (r RunRequest) Snapshot() Snapshot {
	s := Snapshot{
		ReportType:     r.ReportType,
		VisibleColumns: r.VisibleColumns,
		ColumnOrder:    r.ColumnOrder,
		Filters:        r.Filters,
	}
	if len(r.Columns) == 0 {
		return s
	}
	def, err := Lookup(r.ReportType)
	if err != nil {
		return s
	}
	s.VisibleColumns = make(map[string]bool, len(def.Columns))
	for _, id := range def.ColumnIDs() {
		s.VisibleColumns[id] = false
	}
	for _, id := range r.Columns {
		s.VisibleColumns[id] = true
	}
	s.ColumnOrder = r.Columns
	return s
}

type ReportService interface {
	Catalog() []*Definition
	// OpenPanel validates the request, then loads and composes the report.
	// Invalid requests return a nil panel. Load failures return the panel
	// in its error state together with the error.
	OpenPanel(ctx context.Context, req RunRequest) (*Panel, error)
}

type ReportServiceImpl struct {
	Loader BundleLoader
	Logger *zap.Logger
	Clock  func() time.Time
}

func NewReportService(store DataStore, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		Loader: NewLoader(store, logger),
		Logger: logger,
		Clock:  time.Now,
	}
}

func (s *ReportServiceImpl) Catalog() []*Definition {
	return Definitions()
}

func (s *ReportServiceImpl) OpenPanel(ctx context.Context, req RunRequest) (*Panel, error) {
	view, err := NewViewController(req.ReportType)
	if err != nil {
		return nil, err
	}
	for _, id := range req.Columns {
		if _, ok := view.Definition().Column(id); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
		}
	}
	if err := view.ApplySnapshot(req.Snapshot()); err != nil {
		return nil, err
	}
	if err := view.SortBy(req.SortField, req.SortDir); err != nil {
		return nil, err
	}
	if err := checkScope(view.Definition().Scope, req.Scope()); err != nil {
		return nil, err
	}

	panel := newPanel(s.Loader, req.Scope(), view, WithLogger(s.Logger), WithClock(s.Clock))
	if err := panel.Refresh(ctx); err != nil {
		return panel, err
	}
	s.Logger.Info("Report composed",
		zap.String("report_type", string(req.ReportType)),
		zap.String("org_id", req.OrgID),
		zap.Int("rows", panel.RowCount()))
	return panel, nil
}
