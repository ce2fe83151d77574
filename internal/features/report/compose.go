package report

import (
	"fmt"
	"sort"
	"time"
)

// Composition is the output of one Row Composer call.
type Composition struct {
	Rows         []Row
	Stats        StatsRecord
	Capabilities map[string]bool
}

// composedRow is implemented by the typed row of every report type.
type composedRow interface {
	project() Row
}

func project[T composedRow](rows []T) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.project()
	}
	return out
}

// EmptyComposition is the zero result of a report: no rows and every
// declared metric present with value 0.
func EmptyComposition(def *Definition) Composition {
	return Composition{
		Rows:         []Row{},
		Stats:        NewStatsRecord(def.Stats, nil),
		Capabilities: map[string]bool{},
	}
}

// Compose derives the rows and stats of a report from its raw tables. It is
// pure: the same bundle and now always yield the same composition.
func Compose(rt ReportType, b *Bundle, now time.Time) (Composition, error) {
	def, err := Lookup(rt)
	if err != nil {
		return Composition{}, err
	}
	if b == nil {
		b = NewBundle()
	}

	var (
		rows   []Row
		values map[string]float64
	)
	switch rt {
	case ReportTypePlayers:
		r, v := composePlayers(b, now)
		rows, values = project(r), v
	case ReportTypeTeams:
		r, v := composeTeams(b)
		rows, values = project(r), v
	case ReportTypePayments:
		r, v := composePayments(b)
		rows, values = project(r), v
	case ReportTypeOutstanding:
		r, v := composeOutstanding(b)
		rows, values = project(r), v
	case ReportTypeSchedule:
		r, v := composeSchedule(b, now)
		rows, values = project(r), v
	case ReportTypeRegistrations:
		r, v := composeRegistrations(b)
		rows, values = project(r), v
	case ReportTypeFinancial:
		r, v := composeFinancial(b)
		rows, values = project(r), v
	case ReportTypeJerseys:
		r, v := composeJerseys(b)
		rows, values = project(r), v
	case ReportTypeCoaches:
		r, v := composeCoaches(b)
		rows, values = project(r), v
	case ReportTypeEmergency:
		r, v := composeEmergency(b)
		rows, values = project(r), v
	case ReportTypeSeasonSummary:
		r, v := composeSeasonSummary(b)
		rows, values = project(r), v
	case ReportTypeInactiveOrgs:
		r, v := composeInactiveOrgs(b, now)
		rows, values = project(r), v
	default:
		return Composition{}, fmt.Errorf("%w: %q", ErrUnknownReportType, rt)
	}

	caps := make(map[string]bool, len(b.Capabilities))
	for k, v := range b.Capabilities {
		caps[k] = v
	}
	return Composition{Rows: rows, Stats: NewStatsRecord(def.Stats, values), Capabilities: caps}, nil
}

// rosterIndex resolves a player's team names through team_players.
type rosterIndex struct {
	links map[string][]Record
	teams map[string]Record
}

func newRosterIndex(b *Bundle) rosterIndex {
	return rosterIndex{
		links: groupBy(b.Records("team_players"), "player_id"),
		teams: indexBy(b.Records("teams"), "id"),
	}
}

func (ri rosterIndex) teamName(playerID string) string {
	names := make([]string, 0, 1)
	for _, link := range ri.links[playerID] {
		if team, ok := ri.teams[link.Str("team_id")]; ok {
			names = append(names, team.Str("name"))
		}
	}
	return joinDistinct(names)
}

// jerseyNumber prefers the roster assignment over the player record.
func (ri rosterIndex) jerseyNumber(player Record) (int, bool) {
	for _, link := range ri.links[player.Str("id")] {
		if n, ok := link.Int("jersey_number"); ok {
			return n, true
		}
	}
	return player.Int("jersey_number")
}

// sortByTime orders records by a timestamp, records without one last.
func sortByTime(records []Record, at func(Record) (time.Time, bool)) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, iok := at(records[i])
		tj, jok := at(records[j])
		if iok != jok {
			return iok
		}
		return ti.Before(tj)
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
