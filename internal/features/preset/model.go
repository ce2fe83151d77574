package preset

import (
	"errors"
	"time"

	"go-league/internal/features/report"
)

var (
	ErrNotFound         = errors.New("preset not found")
	ErrStoreUnavailable = errors.New("preset store unavailable")
	ErrInvalidPreset    = errors.New("invalid preset")
)

// Preset is a named snapshot of a report view owned by an organization.
// Presets are told apart by id only; names may repeat.
type Preset struct {
	ID             string            `json:"id" bson:"id"`
	OrgID          string            `json:"org_id" bson:"org_id"`
	Name           string            `json:"name" bson:"name"`
	ReportType     report.ReportType `json:"report_type" bson:"report_type"`
	VisibleColumns map[string]bool   `json:"visible_columns" bson:"visible_columns"`
	ColumnOrder    []string          `json:"column_order" bson:"column_order"`
	Filters        report.Filters    `json:"filters" bson:"filters"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at"`
}

// Snapshot returns the view configuration the preset restores.
func (p Preset) Snapshot() report.Snapshot {
	visible := make(map[string]bool, len(p.VisibleColumns))
	for k, v := range p.VisibleColumns {
		visible[k] = v
	}
	return report.Snapshot{
		ReportType:     p.ReportType,
		VisibleColumns: visible,
		ColumnOrder:    append([]string(nil), p.ColumnOrder...),
		Filters:        p.Filters,
	}
}

// SaveRequest is the body of a save call.
type SaveRequest struct {
	Name string `json:"name"`
	report.Snapshot
}
