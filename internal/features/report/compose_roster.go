package report

import (
	"math"
	"sort"
	"strings"
	"time"
)

type playerRow struct {
	FullName      string
	DateOfBirth   time.Time
	HasDOB        bool
	Age           int
	Gender        string
	TeamName      string
	JerseyNumber  int
	HasJersey     bool
	ParentName    string
	ParentEmail   string
	ParentPhone   string
	Payments      PaymentSummary
	RegisteredAt  time.Time
	HasRegistered bool
}

func (r playerRow) project() Row {
	var age any
	if r.HasDOB {
		age = r.Age
	}
	return Row{
		"full_name":      r.FullName,
		"age":            age,
		"date_of_birth":  optTime(r.DateOfBirth, r.HasDOB),
		"gender":         optString(r.Gender),
		"team_name":      optString(r.TeamName),
		"jersey_number":  optInt(r.JerseyNumber, r.HasJersey),
		"parent_name":    optString(r.ParentName),
		"parent_email":   optString(r.ParentEmail),
		"parent_phone":   optString(r.ParentPhone),
		"total_due":      money(r.Payments.TotalDue),
		"total_paid":     money(r.Payments.TotalPaid),
		"balance":        money(r.Payments.Balance()),
		"payment_status": string(r.Payments.Status()),
		"registered_at":  optTime(r.RegisteredAt, r.HasRegistered),
	}
}

func composePlayers(b *Bundle, now time.Time) ([]playerRow, map[string]float64) {
	roster := newRosterIndex(b)
	payments := groupBy(b.Records("payments"), "player_id")

	players := b.Records("players")
	rows := make([]playerRow, 0, len(players))
	var onTeam, paid float64
	for _, p := range players {
		id := p.Str("id")
		row := playerRow{
			FullName:    fullNameOf(p),
			Gender:      p.Str("gender"),
			TeamName:    roster.teamName(id),
			ParentName:  p.Str("parent_name"),
			ParentEmail: p.Str("parent_email"),
			ParentPhone: p.Str("parent_phone"),
			Payments:    SummarizePayments(payments[id]),
		}
		row.DateOfBirth, row.HasDOB = p.Time("date_of_birth")
		if row.HasDOB {
			row.Age = Age(row.DateOfBirth, now)
		}
		row.JerseyNumber, row.HasJersey = roster.jerseyNumber(p)
		row.RegisteredAt, row.HasRegistered = p.Time("created_at")

		if row.TeamName != "" {
			onTeam++
		}
		if row.Payments.Status() == PaymentPaid {
			paid++
		}
		rows = append(rows, row)
	}

	total := float64(len(rows))
	return rows, map[string]float64{
		"total_players": total,
		"on_team":       onTeam,
		"unassigned":    total - onTeam,
		"fully_paid":    paid,
	}
}

type teamRow struct {
	TeamName     string
	AgeGroup     string
	CoachName    string
	PlayerCount  int
	MaxRoster    int
	HasMax       bool
	MinRoster    int
	HasMin       bool
	RosterFill   float64
	RosterStatus RosterStatus
}

func (r teamRow) project() Row {
	var open any
	if r.HasMax {
		spots := r.MaxRoster - r.PlayerCount
		if spots < 0 {
			spots = 0
		}
		open = spots
	}
	return Row{
		"team_name":       r.TeamName,
		"age_group":       optString(r.AgeGroup),
		"coach_name":      optString(r.CoachName),
		"player_count":    r.PlayerCount,
		"max_roster_size": optInt(r.MaxRoster, r.HasMax),
		"min_roster_size": optInt(r.MinRoster, r.HasMin),
		"roster_fill":     r.RosterFill,
		"open_spots":      open,
		"roster_status":   string(r.RosterStatus),
	}
}

func composeTeams(b *Bundle) ([]teamRow, map[string]float64) {
	links := groupBy(b.Records("team_players"), "team_id")
	coaches := groupBy(b.Records("coaches"), "team_id")

	teams := b.Records("teams")
	rows := make([]teamRow, 0, len(teams))
	var rostered, fillSum, ready float64
	for _, t := range teams {
		id := t.Str("id")

		players := make(map[string]bool)
		for _, link := range links[id] {
			players[link.Str("player_id")] = true
		}
		coachNames := make([]string, 0, len(coaches[id]))
		for _, c := range coaches[id] {
			coachNames = append(coachNames, fullNameOf(c))
		}

		row := teamRow{
			TeamName:    t.Str("name"),
			AgeGroup:    t.Str("age_group"),
			CoachName:   joinDistinct(coachNames),
			PlayerCount: len(players),
		}
		row.MaxRoster, row.HasMax = t.Int("max_roster_size")
		row.MinRoster, row.HasMin = t.Int("min_roster_size")
		if row.HasMax {
			row.RosterFill = RosterFill(row.PlayerCount, row.MaxRoster)
		}
		row.RosterStatus = ClassifyRoster(row.PlayerCount, row.MinRoster)

		rostered += float64(row.PlayerCount)
		fillSum += row.RosterFill
		if row.RosterStatus == RosterReady {
			ready++
		}
		rows = append(rows, row)
	}

	var avgFill float64
	if len(rows) > 0 {
		avgFill = math.Round(fillSum / float64(len(rows)))
	}
	return rows, map[string]float64{
		"teams":            float64(len(rows)),
		"rostered_players": rostered,
		"avg_roster_fill":  avgFill,
		"teams_ready":      ready,
	}
}

type jerseyRow struct {
	TeamName     string
	FullName     string
	JerseyNumber int
	HasNumber    bool
	JerseySize   string
	ShortsSize   string
	Gender       string
}

func (r jerseyRow) project() Row {
	return Row{
		"team_name":     optString(r.TeamName),
		"full_name":     r.FullName,
		"jersey_number": optInt(r.JerseyNumber, r.HasNumber),
		"jersey_size":   optString(r.JerseySize),
		"shorts_size":   optString(r.ShortsSize),
		"gender":        optString(r.Gender),
	}
}

// composeJerseys groups the order sheet by team, unassigned players last.
func composeJerseys(b *Bundle) ([]jerseyRow, map[string]float64) {
	roster := newRosterIndex(b)

	players := b.Records("players")
	rows := make([]jerseyRow, 0, len(players))
	var sized, numbered float64
	for _, p := range players {
		row := jerseyRow{
			TeamName:   roster.teamName(p.Str("id")),
			FullName:   fullNameOf(p),
			JerseySize: p.Str("jersey_size"),
			ShortsSize: p.Str("shorts_size"),
			Gender:     p.Str("gender"),
		}
		row.JerseyNumber, row.HasNumber = roster.jerseyNumber(p)
		if row.JerseySize != "" {
			sized++
		}
		if row.HasNumber {
			numbered++
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := rows[i].TeamName, rows[j].TeamName
		if (ti == "") != (tj == "") {
			return tj == ""
		}
		if ti != tj {
			return strings.ToLower(ti) < strings.ToLower(tj)
		}
		return strings.ToLower(rows[i].FullName) < strings.ToLower(rows[j].FullName)
	})

	total := float64(len(rows))
	return rows, map[string]float64{
		"players":          total,
		"sizes_recorded":   sized,
		"missing_size":     total - sized,
		"numbers_assigned": numbered,
	}
}

type emergencyRow struct {
	FullName              string
	TeamName              string
	ParentName            string
	ParentPhone           string
	EmergencyContactName  string
	EmergencyContactPhone string
	Allergies             string
	MedicalNotes          string
}

func (r emergencyRow) project() Row {
	return Row{
		"full_name":               r.FullName,
		"team_name":               optString(r.TeamName),
		"parent_name":             optString(r.ParentName),
		"parent_phone":            optString(r.ParentPhone),
		"emergency_contact_name":  optString(r.EmergencyContactName),
		"emergency_contact_phone": optString(r.EmergencyContactPhone),
		"allergies":               optString(r.Allergies),
		"medical_notes":           optString(r.MedicalNotes),
	}
}

func composeEmergency(b *Bundle) ([]emergencyRow, map[string]float64) {
	roster := newRosterIndex(b)

	players := b.Records("players")
	rows := make([]emergencyRow, 0, len(players))
	var missing, flagged float64
	for _, p := range players {
		row := emergencyRow{
			FullName:              fullNameOf(p),
			TeamName:              roster.teamName(p.Str("id")),
			ParentName:            p.Str("parent_name"),
			ParentPhone:           p.Str("parent_phone"),
			EmergencyContactName:  p.Str("emergency_contact_name"),
			EmergencyContactPhone: p.Str("emergency_contact_phone"),
			Allergies:             p.Str("allergies"),
			MedicalNotes:          p.Str("medical_notes"),
		}
		if row.EmergencyContactName == "" || row.EmergencyContactPhone == "" {
			missing++
		}
		if row.Allergies != "" || row.MedicalNotes != "" {
			flagged++
		}
		rows = append(rows, row)
	}
	return rows, map[string]float64{
		"players":         float64(len(rows)),
		"missing_contact": missing,
		"medical_flags":   flagged,
	}
}

type coachRow struct {
	FullName        string
	Email           string
	Phone           string
	TeamName        string
	Role            string
	BackgroundCheck string
	CheckExpires    time.Time
	HasExpiry       bool
	Certified       bool
}

func (r coachRow) project() Row {
	return Row{
		"full_name":                r.FullName,
		"email":                    optString(r.Email),
		"phone":                    optString(r.Phone),
		"team_name":                optString(r.TeamName),
		"role":                     optString(r.Role),
		"background_check":         optString(r.BackgroundCheck),
		"background_check_expires": optTime(r.CheckExpires, r.HasExpiry),
		"certified":                r.Certified,
	}
}

func backgroundCleared(status string) bool {
	switch strings.ToLower(status) {
	case "cleared", "approved", "passed", "complete", "completed":
		return true
	}
	return false
}

func composeCoaches(b *Bundle) ([]coachRow, map[string]float64) {
	teams := indexBy(b.Records("teams"), "id")

	coaches := b.Records("coaches")
	rows := make([]coachRow, 0, len(coaches))
	var cleared, certified, unassigned float64
	for _, c := range coaches {
		row := coachRow{
			FullName:        fullNameOf(c),
			Email:           c.Str("email"),
			Phone:           c.Str("phone"),
			Role:            c.Str("role"),
			BackgroundCheck: c.Str("background_check_status"),
			Certified:       c.Bool("certified"),
		}
		if team, ok := teams[c.Str("team_id")]; ok {
			row.TeamName = team.Str("name")
		}
		row.CheckExpires, row.HasExpiry = c.Time("background_check_expires")

		if backgroundCleared(row.BackgroundCheck) {
			cleared++
		}
		if row.Certified {
			certified++
		}
		if row.TeamName == "" {
			unassigned++
		}
		rows = append(rows, row)
	}
	return rows, map[string]float64{
		"coaches":            float64(len(rows)),
		"background_cleared": cleared,
		"certified":          certified,
		"unassigned":         unassigned,
	}
}
