package report

import (
	"errors"
	"time"
)

type ReportType string

const (
	ReportTypePlayers       ReportType = "players"
	ReportTypeTeams         ReportType = "teams"
	ReportTypePayments      ReportType = "payments"
	ReportTypeOutstanding   ReportType = "outstanding"
	ReportTypeSchedule      ReportType = "schedule"
	ReportTypeRegistrations ReportType = "registrations"
	ReportTypeFinancial     ReportType = "financial"
	ReportTypeJerseys       ReportType = "jerseys"
	ReportTypeCoaches       ReportType = "coaches"
	ReportTypeEmergency     ReportType = "emergency"
	ReportTypeSeasonSummary ReportType = "season_summary"
	ReportTypeInactiveOrgs  ReportType = "inactive_orgs"
)

// AllReportTypes lists every report in catalog order.
var AllReportTypes = []ReportType{
	ReportTypePlayers,
	ReportTypeTeams,
	ReportTypePayments,
	ReportTypeOutstanding,
	ReportTypeSchedule,
	ReportTypeRegistrations,
	ReportTypeFinancial,
	ReportTypeJerseys,
	ReportTypeCoaches,
	ReportTypeEmergency,
	ReportTypeSeasonSummary,
	ReportTypeInactiveOrgs,
}

var (
	ErrUnknownReportType = errors.New("unknown report type")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnknownFilter     = errors.New("unknown filter")
	ErrInvalidFilter     = errors.New("invalid filter value")
	ErrUnsortable        = errors.New("column is not sortable")
	ErrRequiredSource    = errors.New("required source unavailable")
	ErrMissingScope      = errors.New("missing scope id")
	ErrSeasonNotFound    = errors.New("season not found in organization")
	ErrCompose           = errors.New("report composition failed")
)

// ScopeKind says which id a report's primary tables are filtered by.
type ScopeKind string

const (
	ScopeSeason   ScopeKind = "season"
	ScopeOrg      ScopeKind = "org"
	ScopePlatform ScopeKind = "platform"
)

// Scope is the season/organization selection handed to the loader.
type Scope struct {
	SeasonID string `json:"season_id,omitempty"`
	OrgID    string `json:"org_id,omitempty"`
}

// Row is the generic projection of one composed entity, keyed by column id.
// Values are string, int, float64, bool, time.Time or nil.
type Row map[string]any

type Format string

const (
	FormatNone     Format = ""
	FormatCurrency Format = "currency"
	FormatPercent  Format = "percent"
	FormatDate     Format = "date"
)

// ColumnDef describes one displayable/exportable field of a report
type ColumnDef struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Sortable       bool   `json:"sortable"`
	DefaultVisible bool   `json:"default_visible"`
	Format         Format `json:"format,omitempty"`
}

type MetricKind string

const (
	MetricCount    MetricKind = "count"
	MetricCurrency MetricKind = "currency"
	MetricPercent  MetricKind = "percent"
)

// MetricDef declares one summary statistic of a report
type MetricDef struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Kind  MetricKind `json:"kind"`
}

type Metric struct {
	MetricDef
	Value float64 `json:"value"`
}

// StatsRecord carries up to four summary metrics in declaration order.
type StatsRecord struct {
	Metrics []Metric `json:"metrics"`
}

// Value returns the metric with the given key, zero when not declared.
func (s StatsRecord) Value(key string) float64 {
	for _, m := range s.Metrics {
		if m.Key == key {
			return m.Value
		}
	}
	return 0
}

// NewStatsRecord pairs computed values with the declared metrics. Undeclared
// values are ignored and missing values are zero.
func NewStatsRecord(defs []MetricDef, values map[string]float64) StatsRecord {
	metrics := make([]Metric, 0, len(defs))
	for _, d := range defs {
		metrics = append(metrics, Metric{MetricDef: d, Value: values[d.Key]})
	}
	return StatsRecord{Metrics: metrics}
}

type SortDir string

const (
	SortNone SortDir = ""
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

type FilterKey string

const (
	FilterTeam     FilterKey = "team"
	FilterStatus   FilterKey = "status"
	FilterSearch   FilterKey = "search"
	FilterDateFrom FilterKey = "date_from"
	FilterDateTo   FilterKey = "date_to"
)

// Filters are the user adjustable row filters. Dates use 2006-01-02.
type Filters struct {
	Team     string `json:"team,omitempty" bson:"team,omitempty" yaml:"team,omitempty"`
	Status   string `json:"status,omitempty" bson:"status,omitempty" yaml:"status,omitempty"`
	Search   string `json:"search,omitempty" bson:"search,omitempty" yaml:"search,omitempty"`
	DateFrom string `json:"date_from,omitempty" bson:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty" bson:"date_to,omitempty" yaml:"date_to,omitempty"`
}

// ViewState is everything a user can adjust on a report panel
type ViewState struct {
	ReportType     ReportType      `json:"report_type"`
	Filters        Filters         `json:"filters"`
	VisibleColumns map[string]bool `json:"visible_columns"`
	ColumnOrder    []string        `json:"column_order"`
	SortField      string          `json:"sort_field,omitempty"`
	SortDir        SortDir         `json:"sort_dir,omitempty"`
}

// Snapshot is the part of a ViewState that presets persist. It never
// carries sort.
type Snapshot struct {
	ReportType     ReportType      `json:"report_type" bson:"report_type"`
	VisibleColumns map[string]bool `json:"visible_columns" bson:"visible_columns"`
	ColumnOrder    []string        `json:"column_order" bson:"column_order"`
	Filters        Filters         `json:"filters" bson:"filters"`
}

// BrandingHeader is stamped onto every export. It is built fresh at export time.
type BrandingHeader struct {
	OrgName     string     `json:"org_name"`
	ScopeLabel  string     `json:"scope_label"`
	ReportType  ReportType `json:"report_type"`
	ReportTitle string     `json:"report_title"`
	GeneratedBy string     `json:"generated_by"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Identity supplies organization and user details at export time.
type Identity interface {
	OrgName() string
	GeneratedBy() string
	Now() time.Time
}

// StaticIdentity is an Identity with fixed values; Clock defaults to time.Now.
type StaticIdentity struct {
	Org   string
	User  string
	Clock func() time.Time
}

func (i StaticIdentity) OrgName() string     { return i.Org }
func (i StaticIdentity) GeneratedBy() string { return i.User }

func (i StaticIdentity) Now() time.Time {
	if i.Clock != nil {
		return i.Clock()
	}
	return time.Now()
}

// NewBrandingHeader resolves the header for a report from the identity.
func NewBrandingHeader(id Identity, scopeLabel string, def *Definition) BrandingHeader {
	return BrandingHeader{
		OrgName:     id.OrgName(),
		ScopeLabel:  scopeLabel,
		ReportType:  def.Type,
		ReportTitle: def.Title,
		GeneratedBy: id.GeneratedBy(),
		GeneratedAt: id.Now(),
	}
}

// Table is the single tuple every export renderer consumes.
type Table struct {
	Rows    []Row
	Columns []ColumnDef
	Stats   StatsRecord
	Header  BrandingHeader
}
