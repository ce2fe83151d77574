package report

import (
	"context"
	"fmt"

	"go-league/internal/connectors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DataStore is the read side of the league store the loader depends on.
type DataStore interface {
	Query(ctx context.Context, req connectors.QueryRequest) (*connectors.QueryResponse, error)
}

// fetch is one table read. Scope filters by the scope id of the given kind;
// From/FromKey feed an IN filter on InField with ids taken from an earlier
// round.
type fetch struct {
	Table    string
	Optional bool
	Scope    ScopeKind
	InField  string
	From     string
	FromKey  string
}

// plan is a list of rounds; fetches within a round run concurrently.
type plan [][]fetch

func bySeason(table string) fetch { return fetch{Table: table, Scope: ScopeSeason} }

func byIDs(table, field, from, fromKey string) fetch {
	return fetch{Table: table, InField: field, From: from, FromKey: fromKey}
}

func planFor(rt ReportType) (plan, error) {
	switch rt {
	case ReportTypePlayers:
		return plan{
			{bySeason("players"), bySeason("teams")},
			{byIDs("team_players", "player_id", "players", "id"), byIDs("payments", "player_id", "players", "id")},
		}, nil
	case ReportTypeTeams:
		return plan{
			{bySeason("teams")},
			{byIDs("team_players", "team_id", "teams", "id"), byIDs("coaches", "team_id", "teams", "id")},
		}, nil
	case ReportTypePayments, ReportTypeOutstanding:
		return plan{
			{bySeason("players")},
			{byIDs("payments", "player_id", "players", "id"), byIDs("team_players", "player_id", "players", "id")},
			{byIDs("seasons", "id", "payments", "season_id"), byIDs("teams", "id", "team_players", "team_id")},
		}, nil
	case ReportTypeFinancial:
		return plan{
			{bySeason("players")},
			{byIDs("payments", "player_id", "players", "id")},
		}, nil
	case ReportTypeSchedule:
		return plan{
			{bySeason("events"), bySeason("teams")},
		}, nil
	case ReportTypeRegistrations:
		events := byIDs("registration_events", "player_id", "players", "id")
		events.Optional = true
		return plan{
			{bySeason("players"), bySeason("registrations")},
			{byIDs("payments", "player_id", "players", "id"), events},
		}, nil
	case ReportTypeJerseys, ReportTypeEmergency:
		return plan{
			{bySeason("players"), bySeason("teams")},
			{byIDs("team_players", "player_id", "players", "id")},
		}, nil
	case ReportTypeCoaches:
		return plan{
			{bySeason("coaches"), bySeason("teams")},
		}, nil
	case ReportTypeSeasonSummary:
		return plan{
			{{Table: "seasons", Scope: ScopeOrg}},
			{byIDs("players", "season_id", "seasons", "id"), byIDs("teams", "season_id", "seasons", "id")},
			{byIDs("payments", "player_id", "players", "id")},
		}, nil
	case ReportTypeInactiveOrgs:
		return plan{
			{{Table: "organizations", Scope: ScopePlatform}, {Table: "seasons", Scope: ScopePlatform}},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, rt)
}

// Loader fetches the raw tables a report needs. It never joins.
type Loader struct {
	store  DataStore
	logger *zap.Logger
}

func NewLoader(store DataStore, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{store: store, logger: logger}
}

// Tables lists every table a report type reads, in plan order.
func Tables(rt ReportType) []string {
	p, err := planFor(rt)
	if err != nil {
		return nil
	}
	var names []string
	for _, round := range p {
		for _, f := range round {
			names = append(names, f.Table)
		}
	}
	return names
}

// Load runs the fetch plan of a report type. A failed required table aborts
// with ErrRequiredSource; a failed optional table yields an empty table and a
// false capability.
func (l *Loader) Load(ctx context.Context, rt ReportType, scope Scope) (*Bundle, error) {
	def, err := Lookup(rt)
	if err != nil {
		return nil, err
	}
	if err := checkScope(def.Scope, scope); err != nil {
		return nil, err
	}
	p, err := planFor(rt)
	if err != nil {
		return nil, err
	}
	if def.Scope == ScopeSeason && scope.OrgID != "" {
		if err := l.checkSeasonOwner(ctx, scope); err != nil {
			return nil, err
		}
	}

	bundle := NewBundle()
	for _, round := range p {
		results := make([]RawTable, len(round))
		available := make([]bool, len(round))

		g, gctx := errgroup.WithContext(ctx)
		for i, f := range round {
			g.Go(func() error {
				records, err := l.fetch(gctx, f, scope, bundle)
				if err != nil {
					if f.Optional {
						l.logger.Warn("Optional table unavailable",
							zap.String("report_type", string(rt)),
							zap.String("table", f.Table),
							zap.Error(err))
						results[i] = RawTable{Name: f.Table}
						return nil
					}
					return fmt.Errorf("%w: %s: %v", ErrRequiredSource, f.Table, err)
				}
				results[i] = RawTable{Name: f.Table, Records: records}
				available[i] = true
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, f := range round {
			bundle.Tables[f.Table] = results[i]
			if f.Optional {
				bundle.Capabilities[f.Table] = available[i]
			}
		}
	}
	return bundle, nil
}

// fetch reads one table. Earlier rounds in bundle are only read here, never
// written, so concurrent fetches of a round do not race.
func (l *Loader) fetch(ctx context.Context, f fetch, scope Scope, bundle *Bundle) ([]Record, error) {
	req := connectors.QueryRequest{Table: f.Table}

	switch f.Scope {
	case ScopeSeason:
		req.Filters = map[string]interface{}{"season_id": scope.SeasonID}
	case ScopeOrg:
		req.Filters = map[string]interface{}{"org_id": scope.OrgID}
	}

	if f.From != "" {
		ids := distinctIDs(bundle.Records(f.From), f.FromKey)
		if len(ids) == 0 {
			return nil, nil
		}
		req.In = map[string][]interface{}{f.InField: ids}
	}

	resp, err := l.store.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(resp.Data))
	for _, row := range resp.Data {
		records = append(records, Record(row))
	}
	return records, nil
}

// checkSeasonOwner rejects a season that belongs to another organization.
func (l *Loader) checkSeasonOwner(ctx context.Context, scope Scope) error {
	resp, err := l.store.Query(ctx, connectors.QueryRequest{
		Table:   "seasons",
		Fields:  []string{"id"},
		Filters: map[string]interface{}{"id": scope.SeasonID, "org_id": scope.OrgID},
		Limit:   1,
	})
	if err != nil {
		return fmt.Errorf("%w: seasons: %v", ErrRequiredSource, err)
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrSeasonNotFound, scope.SeasonID)
	}
	return nil
}

func checkScope(kind ScopeKind, scope Scope) error {
	switch kind {
	case ScopeSeason:
		if scope.SeasonID == "" {
			return fmt.Errorf("%w: season_id", ErrMissingScope)
		}
	case ScopeOrg:
		if scope.OrgID == "" {
			return fmt.Errorf("%w: org_id", ErrMissingScope)
		}
	}
	return nil
}

func distinctIDs(records []Record, key string) []interface{} {
	seen := make(map[string]bool, len(records))
	ids := make([]interface{}, 0, len(records))
	for _, r := range records {
		id := r.Str(key)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
