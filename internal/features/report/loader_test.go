package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-league/internal/connectors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves tables from memory with equality and IN filtering.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]map[string]interface{}
	fail   map[string]error
	calls  []connectors.QueryRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables: map[string][]map[string]interface{}{
			"seasons": {{"id": "s1", "org_id": "org-1", "name": "Spring"}},
		},
		fail: map[string]error{},
	}
}

func (s *fakeStore) Query(ctx context.Context, req connectors.QueryRequest) (*connectors.QueryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)

	if err := s.fail[req.Table]; err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	for _, row := range s.tables[req.Table] {
		if matchesRequest(row, req) {
			out = append(out, row)
		}
	}
	return &connectors.QueryResponse{Data: out, TotalCount: int64(len(out)), Timestamp: time.Now()}, nil
}

func matchesRequest(row map[string]interface{}, req connectors.QueryRequest) bool {
	for k, v := range req.Filters {
		if fmt.Sprint(row[k]) != fmt.Sprint(v) {
			return false
		}
	}
	for k, values := range req.In {
		found := false
		for _, v := range values {
			if fmt.Sprint(row[k]) == fmt.Sprint(v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *fakeStore) queried(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Table == table {
			n++
		}
	}
	return n
}

func seasonScope() Scope {
	return Scope{SeasonID: "s1", OrgID: "org-1"}
}

func TestLoaderJoinsAcrossRounds(t *testing.T) {
	store := newFakeStore()
	store.tables["players"] = []map[string]interface{}{
		{"id": "p1", "season_id": "s1"},
		{"id": "p2", "season_id": "s1"},
		{"id": "p9", "season_id": "s2"},
	}
	store.tables["payments"] = []map[string]interface{}{
		{"id": "x1", "player_id": "p1", "season_id": "s1"},
		{"id": "x9", "player_id": "p9", "season_id": "s2"},
	}

	b, err := NewLoader(store, nil).Load(context.Background(), ReportTypePayments, seasonScope())
	require.NoError(t, err)
	assert.Len(t, b.Records("players"), 2)
	require.Len(t, b.Records("payments"), 1)
	assert.Equal(t, "x1", b.Records("payments")[0].Str("id"))
	assert.Len(t, b.Records("seasons"), 1)
	assert.Zero(t, store.queried("teams"), "no roster links means no team lookup")
}

func TestLoaderOptionalTableDegrades(t *testing.T) {
	store := newFakeStore()
	store.tables["players"] = []map[string]interface{}{{"id": "p1", "season_id": "s1"}}
	store.fail["registration_events"] = errors.New("relation does not exist")

	b, err := NewLoader(store, nil).Load(context.Background(), ReportTypeRegistrations, seasonScope())
	require.NoError(t, err)
	assert.False(t, b.Has("registration_events"))
	assert.Empty(t, b.Records("registration_events"))
	assert.Len(t, b.Records("players"), 1)
}

func TestLoaderRequiredTableFails(t *testing.T) {
	store := newFakeStore()
	store.tables["players"] = []map[string]interface{}{{"id": "p1", "season_id": "s1"}}
	store.fail["payments"] = errors.New("connection reset")

	_, err := NewLoader(store, nil).Load(context.Background(), ReportTypePayments, seasonScope())
	require.ErrorIs(t, err, ErrRequiredSource)
	assert.Contains(t, err.Error(), "payments")
}

func TestLoaderScopeChecks(t *testing.T) {
	store := newFakeStore()
	l := NewLoader(store, nil)

	_, err := l.Load(context.Background(), ReportTypePlayers, Scope{OrgID: "org-1"})
	assert.ErrorIs(t, err, ErrMissingScope)

	_, err = l.Load(context.Background(), ReportTypePlayers, Scope{SeasonID: "s1", OrgID: "org-2"})
	assert.ErrorIs(t, err, ErrSeasonNotFound)
	assert.Zero(t, store.queried("players"))

	_, err = l.Load(context.Background(), ReportTypeSeasonSummary, Scope{})
	assert.ErrorIs(t, err, ErrMissingScope)

	_, err = l.Load(context.Background(), ReportType("nope"), seasonScope())
	assert.ErrorIs(t, err, ErrUnknownReportType)
}

func TestTablesListsEveryFetch(t *testing.T) {
	assert.Equal(t, []string{"events", "teams"}, Tables(ReportTypeSchedule))
	assert.Contains(t, Tables(ReportTypeRegistrations), "registration_events")
	assert.Nil(t, Tables("nope"))
	for _, rt := range AllReportTypes {
		assert.NotEmpty(t, Tables(rt), rt)
	}
}
