package report

import "fmt"

// Definition is the static catalog entry of one report type.
type Definition struct {
	Type        ReportType  `json:"type"`
	Title       string      `json:"title"`
	Scope       ScopeKind   `json:"scope"`
	Columns     []ColumnDef `json:"columns"`
	Stats       []MetricDef `json:"stats"`
	StatusField string      `json:"status_field,omitempty"`
	TeamFields  []string    `json:"team_fields,omitempty"`
	DateField   string      `json:"date_field,omitempty"`
}

// Column looks up a column by id.
func (d *Definition) Column(id string) (ColumnDef, bool) {
	for _, c := range d.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnIDs returns the column ids in schema order.
func (d *Definition) ColumnIDs() []string {
	ids := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		ids[i] = c.ID
	}
	return ids
}

// DefaultVisibility seeds the visible-column map of a fresh view.
func (d *Definition) DefaultVisibility() map[string]bool {
	visible := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		visible[c.ID] = c.DefaultVisible
	}
	return visible
}

func col(id, label string, visible bool) ColumnDef {
	return ColumnDef{ID: id, Label: label, Sortable: true, DefaultVisible: visible}
}

func (c ColumnDef) as(f Format) ColumnDef {
	c.Format = f
	return c
}

func (c ColumnDef) unsortable() ColumnDef {
	c.Sortable = false
	return c
}

func count(key, label string) MetricDef {
	return MetricDef{Key: key, Label: label, Kind: MetricCount}
}

func currency(key, label string) MetricDef {
	return MetricDef{Key: key, Label: label, Kind: MetricCurrency}
}

func percent(key, label string) MetricDef {
	return MetricDef{Key: key, Label: label, Kind: MetricPercent}
}

var definitions = map[ReportType]*Definition{
	ReportTypePlayers: {
		Type:  ReportTypePlayers,
		Title: "Player Roster",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("full_name", "Player", true),
			col("age", "Age", true),
			col("date_of_birth", "Date of Birth", false).as(FormatDate),
			col("gender", "Gender", false),
			col("team_name", "Team", true),
			col("jersey_number", "Jersey #", false),
			col("parent_name", "Parent/Guardian", true),
			col("parent_email", "Parent Email", true),
			col("parent_phone", "Parent Phone", false),
			col("total_due", "Total Due", false).as(FormatCurrency),
			col("total_paid", "Total Paid", false).as(FormatCurrency),
			col("balance", "Balance", true).as(FormatCurrency),
			col("payment_status", "Payment Status", true),
			col("registered_at", "Registered", false).as(FormatDate),
		},
		Stats: []MetricDef{
			count("total_players", "Total Players"),
			count("on_team", "On a Team"),
			count("unassigned", "Unassigned"),
			count("fully_paid", "Fully Paid"),
		},
		StatusField: "payment_status",
		TeamFields:  []string{"team_name"},
		DateField:   "registered_at",
	},
	ReportTypeTeams: {
		Type:  ReportTypeTeams,
		Title: "Team Rosters",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("team_name", "Team", true),
			col("age_group", "Age Group", true),
			col("coach_name", "Coach", true),
			col("player_count", "Players", true),
			col("max_roster_size", "Max Roster", true),
			col("min_roster_size", "Min Roster", false),
			col("roster_fill", "Roster Fill", true).as(FormatPercent),
			col("open_spots", "Open Spots", false),
			col("roster_status", "Status", true),
		},
		Stats: []MetricDef{
			count("teams", "Teams"),
			count("rostered_players", "Rostered Players"),
			percent("avg_roster_fill", "Avg Roster Fill"),
			count("teams_ready", "Teams Ready"),
		},
		StatusField: "roster_status",
		TeamFields:  []string{"team_name"},
	},
	ReportTypePayments: {
		Type:  ReportTypePayments,
		Title: "Payment Status",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("full_name", "Player", true),
			col("team_name", "Team", true),
			col("season_name", "Season", false),
			col("payment_count", "Payments", false),
			col("total_due", "Total Due", true).as(FormatCurrency),
			col("total_paid", "Total Paid", true).as(FormatCurrency),
			col("balance", "Balance", true).as(FormatCurrency),
			col("payment_status", "Status", true),
			col("last_payment_date", "Last Payment", true).as(FormatDate),
		},
		Stats: []MetricDef{
			currency("total_revenue", "Total Revenue"),
			currency("collected", "Collected"),
			currency("outstanding", "Outstanding"),
			percent("collection_rate", "Collection Rate"),
		},
		StatusField: "payment_status",
		TeamFields:  []string{"team_name"},
		DateField:   "last_payment_date",
	},
	ReportTypeOutstanding: {
		Type:  ReportTypeOutstanding,
		Title: "Outstanding Balances",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("full_name", "Player", true),
			col("team_name", "Team", true),
			col("parent_name", "Parent/Guardian", false),
			col("parent_email", "Parent Email", true),
			col("parent_phone", "Parent Phone", true),
			col("total_due", "Total Due", true).as(FormatCurrency),
			col("total_paid", "Total Paid", true).as(FormatCurrency),
			col("balance", "Balance", true).as(FormatCurrency),
			col("payment_status", "Status", true),
		},
		Stats: []MetricDef{
			count("players_owing", "Players Owing"),
			currency("total_outstanding", "Total Outstanding"),
			currency("average_balance", "Average Balance"),
			currency("largest_balance", "Largest Balance"),
		},
		StatusField: "payment_status",
		TeamFields:  []string{"team_name"},
	},
	ReportTypeSchedule: {
		Type:  ReportTypeSchedule,
		Title: "Season Schedule",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("event_date", "Date", true).as(FormatDate),
			col("start_time", "Time", true).unsortable(),
			col("event_type", "Type", true),
			col("title", "Event", true),
			col("home_team", "Home", true),
			col("away_team", "Away", true),
			col("location", "Location", true),
			col("status", "Status", false),
		},
		Stats: []MetricDef{
			count("total_events", "Total Events"),
			count("games", "Games"),
			count("practices", "Practices"),
			count("upcoming", "Upcoming"),
		},
		StatusField: "status",
		TeamFields:  []string{"home_team", "away_team"},
		DateField:   "event_date",
	},
	ReportTypeRegistrations: {
		Type:  ReportTypeRegistrations,
		Title: "Registration Pipeline",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("full_name", "Player", true),
			col("parent_email", "Parent Email", true),
			col("registration_status", "Registration", false),
			col("pipeline_status", "Pipeline", true),
			col("total_due", "Total Due", false).as(FormatCurrency),
			col("total_paid", "Total Paid", false).as(FormatCurrency),
			col("balance", "Balance", true).as(FormatCurrency),
			col("submitted_at", "Submitted", true).as(FormatDate),
			col("last_activity", "Last Activity", false).as(FormatDate),
			col("funnel_steps", "Funnel Steps", false),
		},
		Stats: []MetricDef{
			count("total_registrations", "Total"),
			count("approved", "Approved"),
			count("pending", "Pending"),
			percent("conversion_rate", "Conversion Rate"),
		},
		StatusField: "pipeline_status",
		DateField:   "submitted_at",
	},
	ReportTypeFinancial: {
		Type:  ReportTypeFinancial,
		Title: "Financial Ledger",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("payment_date", "Date", true).as(FormatDate),
			col("full_name", "Player", true),
			col("description", "Description", true),
			col("amount", "Amount", true).as(FormatCurrency),
			col("status", "Status", true),
			col("method", "Method", false),
			col("paid_at", "Paid On", false).as(FormatDate),
		},
		Stats: []MetricDef{
			count("transactions", "Transactions"),
			currency("billed", "Billed"),
			currency("collected", "Collected"),
			percent("collection_rate", "Collection Rate"),
		},
		StatusField: "status",
		DateField:   "payment_date",
	},
	ReportTypeJerseys: {
		Type:  ReportTypeJerseys,
		Title: "Jersey Sizes",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("team_name", "Team", true),
			col("full_name", "Player", true),
			col("jersey_number", "Number", true),
			col("jersey_size", "Jersey Size", true),
			col("shorts_size", "Shorts Size", true),
			col("gender", "Gender", false),
		},
		Stats: []MetricDef{
			count("players", "Players"),
			count("sizes_recorded", "Sizes Recorded"),
			count("missing_size", "Missing Size"),
			count("numbers_assigned", "Numbers Assigned"),
		},
		TeamFields: []string{"team_name"},
	},
	ReportTypeCoaches: {
		Type:  ReportTypeCoaches,
		Title: "Coaches & Clearances",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("full_name", "Coach", true),
			col("email", "Email", true),
			col("phone", "Phone", false),
			col("team_name", "Team", true),
			col("role", "Role", true),
			col("background_check", "Background Check", true),
			col("background_check_expires", "Check Expires", true).as(FormatDate),
			col("certified", "Certified", true),
		},
		Stats: []MetricDef{
			count("coaches", "Coaches"),
			count("background_cleared", "Background Cleared"),
			count("certified", "Certified"),
			count("unassigned", "Unassigned"),
		},
		StatusField: "background_check",
		TeamFields:  []string{"team_name"},
		DateField:   "background_check_expires",
	},
	ReportTypeEmergency: {
		Type:  ReportTypeEmergency,
		Title: "Emergency Contacts",
		Scope: ScopeSeason,
		Columns: []ColumnDef{
			col("full_name", "Player", true),
			col("team_name", "Team", true),
			col("parent_name", "Parent/Guardian", true),
			col("parent_phone", "Parent Phone", true),
			col("emergency_contact_name", "Emergency Contact", true),
			col("emergency_contact_phone", "Emergency Phone", true),
			col("allergies", "Allergies", true).unsortable(),
			col("medical_notes", "Medical Notes", true).unsortable(),
		},
		Stats: []MetricDef{
			count("players", "Players"),
			count("missing_contact", "Missing Emergency Contact"),
			count("medical_flags", "Medical Notes on File"),
		},
		TeamFields: []string{"team_name"},
	},
	ReportTypeSeasonSummary: {
		Type:  ReportTypeSeasonSummary,
		Title: "Season Summary",
		Scope: ScopeOrg,
		Columns: []ColumnDef{
			col("season_name", "Season", true),
			col("sport", "Sport", true),
			col("start_date", "Starts", true).as(FormatDate),
			col("end_date", "Ends", true).as(FormatDate),
			col("player_count", "Players", true),
			col("team_count", "Teams", true),
			col("total_due", "Revenue", true).as(FormatCurrency),
			col("total_paid", "Collected", true).as(FormatCurrency),
			col("balance", "Outstanding", false).as(FormatCurrency),
			col("collection_rate", "Collection Rate", true).as(FormatPercent),
		},
		Stats: []MetricDef{
			count("seasons", "Seasons"),
			count("players", "Players"),
			currency("revenue", "Revenue"),
			currency("collected", "Collected"),
		},
		DateField: "start_date",
	},
	ReportTypeInactiveOrgs: {
		Type:  ReportTypeInactiveOrgs,
		Title: "Inactive Organizations",
		Scope: ScopePlatform,
		Columns: []ColumnDef{
			col("org_name", "Organization", true),
			col("contact_email", "Contact Email", true),
			col("created_at", "Created", true).as(FormatDate),
			col("days_inactive", "Days Since Signup", true),
		},
		Stats: []MetricDef{
			count("inactive_orgs", "Inactive Orgs"),
			count("total_orgs", "Total Orgs"),
			percent("inactive_rate", "Inactive Rate"),
		},
		DateField: "created_at",
	},
}

// Lookup returns the static definition of a report type.
func Lookup(rt ReportType) (*Definition, error) {
	def, ok := definitions[rt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, rt)
	}
	return def, nil
}

// Definitions returns the full catalog in display order.
func Definitions() []*Definition {
	defs := make([]*Definition, 0, len(AllReportTypes))
	for _, rt := range AllReportTypes {
		defs = append(defs, definitions[rt])
	}
	return defs
}
