package report

import (
	"math"
	"sort"
	"strings"
	"time"
)

type eventRow struct {
	EventDate time.Time
	HasDate   bool
	StartTime string
	EventType string
	Title     string
	HomeTeam  string
	AwayTeam  string
	Location  string
	Status    string
}

func (r eventRow) project() Row {
	return Row{
		"event_date": optTime(r.EventDate, r.HasDate),
		"start_time": optString(r.StartTime),
		"event_type": optString(r.EventType),
		"title":      optString(r.Title),
		"home_team":  optString(r.HomeTeam),
		"away_team":  optString(r.AwayTeam),
		"location":   optString(r.Location),
		"status":     optString(r.Status),
	}
}

var clockLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM"}

// clockTime renders a stored time of day as "3:04 PM", passing through
// anything it cannot parse.
func clockTime(raw string) string {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return raw
}

func teamLabel(teams map[string]Record, ev Record, idKey, nameKey string) string {
	if team, ok := teams[ev.Str(idKey)]; ok {
		return team.Str("name")
	}
	return ev.Str(nameKey)
}

func composeSchedule(b *Bundle, now time.Time) ([]eventRow, map[string]float64) {
	teams := indexBy(b.Records("teams"), "id")

	events := append([]Record(nil), b.Records("events")...)
	sortByTime(events, func(r Record) (time.Time, bool) { return r.Time("event_date") })

	rows := make([]eventRow, 0, len(events))
	today := startOfDay(now)
	var games, practices, upcoming float64
	for _, ev := range events {
		row := eventRow{
			StartTime: clockTime(ev.Str("start_time")),
			EventType: ev.Str("event_type"),
			Title:     ev.Str("title"),
			HomeTeam:  teamLabel(teams, ev, "home_team_id", "home_team"),
			AwayTeam:  teamLabel(teams, ev, "away_team_id", "opponent"),
			Location:  ev.Str("location"),
			Status:    ev.Str("status"),
		}
		row.EventDate, row.HasDate = ev.Time("event_date")

		switch strings.ToLower(row.EventType) {
		case "game", "match", "tournament":
			games++
		case "practice", "training":
			practices++
		}
		if row.HasDate && !row.EventDate.Before(today) {
			upcoming++
		}
		rows = append(rows, row)
	}
	return rows, map[string]float64{
		"total_events": float64(len(rows)),
		"games":        games,
		"practices":    practices,
		"upcoming":     upcoming,
	}
}

type registrationRow struct {
	FullName           string
	ParentEmail        string
	HasRegistration    bool
	RegistrationStatus string
	Pipeline           PipelineStatus
	Payments           PaymentSummary
	SubmittedAt        time.Time
	HasSubmitted       bool
	// Funnel fields are only known when registration_events loaded.
	FunnelKnown  bool
	LastActivity time.Time
	HasActivity  bool
	FunnelSteps  int
}

func (r registrationRow) project() Row {
	row := Row{
		"full_name":           r.FullName,
		"parent_email":        optString(r.ParentEmail),
		"registration_status": optString(r.RegistrationStatus),
		"pipeline_status":     string(r.Pipeline),
		"total_due":           money(r.Payments.TotalDue),
		"total_paid":          money(r.Payments.TotalPaid),
		"balance":             money(r.Payments.Balance()),
		"submitted_at":        optTime(r.SubmittedAt, r.HasSubmitted),
		"last_activity":       nil,
		"funnel_steps":        nil,
	}
	if r.FunnelKnown {
		row["last_activity"] = optTime(r.LastActivity, r.HasActivity)
		row["funnel_steps"] = r.FunnelSteps
	}
	return row
}

// composeRegistrations classifies every player of the season into the
// registration pipeline. Players without a registration are manual adds.
func composeRegistrations(b *Bundle) ([]registrationRow, map[string]float64) {
	payments := groupBy(b.Records("payments"), "player_id")
	registrations := indexBy(b.Records("registrations"), "player_id")
	funnel := groupBy(b.Records("registration_events"), "player_id")
	funnelKnown := b.Has("registration_events")

	players := b.Records("players")
	rows := make([]registrationRow, 0, len(players))
	var approved, pending float64
	for _, p := range players {
		id := p.Str("id")
		reg, hasReg := registrations[id]
		row := registrationRow{
			FullName:        fullNameOf(p),
			ParentEmail:     p.Str("parent_email"),
			HasRegistration: hasReg,
			Payments:        SummarizePayments(payments[id]),
			FunnelKnown:     funnelKnown,
		}
		if hasReg {
			row.RegistrationStatus = reg.Str("status")
			row.SubmittedAt, row.HasSubmitted = reg.Time("submitted_at")
			if !row.HasSubmitted {
				row.SubmittedAt, row.HasSubmitted = reg.Time("created_at")
			}
		}
		row.Pipeline = ClassifyPipeline(hasReg, row.RegistrationStatus, row.Payments)

		if funnelKnown {
			row.FunnelSteps = len(funnel[id])
			for _, ev := range funnel[id] {
				if t, ok := ev.Time("created_at"); ok && t.After(row.LastActivity) {
					row.LastActivity, row.HasActivity = t, true
				}
			}
		}

		if row.Pipeline.isAccepted() {
			approved++
		}
		if row.Pipeline == PipelinePending {
			pending++
		}
		rows = append(rows, row)
	}

	total := float64(len(rows))
	return rows, map[string]float64{
		"total_registrations": total,
		"approved":            approved,
		"pending":             pending,
		"conversion_rate":     Percent(approved, total),
	}
}

type orgRow struct {
	OrgName      string
	ContactEmail string
	CreatedAt    time.Time
	HasCreated   bool
	DaysInactive int
}

func (r orgRow) project() Row {
	var days any
	if r.HasCreated {
		days = r.DaysInactive
	}
	return Row{
		"org_name":      r.OrgName,
		"contact_email": optString(r.ContactEmail),
		"created_at":    optTime(r.CreatedAt, r.HasCreated),
		"days_inactive": days,
	}
}

// composeInactiveOrgs lists organizations that never created a season. The
// stats describe that subset against the platform total.
func composeInactiveOrgs(b *Bundle, now time.Time) ([]orgRow, map[string]float64) {
	seasons := groupBy(b.Records("seasons"), "org_id")

	orgs := b.Records("organizations")
	rows := make([]orgRow, 0, len(orgs))
	for _, o := range orgs {
		if len(seasons[o.Str("id")]) > 0 {
			continue
		}
		row := orgRow{
			OrgName:      o.Str("name"),
			ContactEmail: o.Str("contact_email"),
		}
		row.CreatedAt, row.HasCreated = o.Time("created_at")
		if row.HasCreated {
			row.DaysInactive = int(math.Max(0, math.Floor(now.Sub(row.CreatedAt).Hours()/24)))
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DaysInactive > rows[j].DaysInactive
	})

	total := float64(len(orgs))
	return rows, map[string]float64{
		"inactive_orgs": float64(len(rows)),
		"total_orgs":    total,
		"inactive_rate": Percent(float64(len(rows)), total),
	}
}
