package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSeededSQLite(t *testing.T) *SQLConnector {
	t.Helper()
	ctx := context.Background()

	c := NewSQLConnector("sqlite")
	require.NoError(t, c.Open(ctx, ":memory:"))
	t.Cleanup(func() { _ = c.Disconnect(ctx) })

	require.NoError(t, c.Exec(ctx, `CREATE TABLE players (id TEXT PRIMARY KEY, season_id TEXT, first_name TEXT, last_name TEXT)`))
	require.NoError(t, c.Exec(ctx, `INSERT INTO players VALUES ('p1','s1','Ava','Lee'), ('p2','s1','Ben','Ortiz'), ('p3','s2','Cai','Ng')`))
	require.NoError(t, c.Exec(ctx, `CREATE TABLE payments (id TEXT PRIMARY KEY, player_id TEXT, amount REAL, paid INTEGER)`))
	require.NoError(t, c.Exec(ctx, `INSERT INTO payments VALUES ('x1','p1',150,1), ('x2','p2',150,0), ('x3','p3',90,1)`))
	return c
}

func TestSQLConnectorQuery(t *testing.T) {
	c := openSeededSQLite(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     QueryRequest
		wantIDs []string
	}{
		{
			name:    "Scope Equality",
			req:     QueryRequest{Table: "players", Filters: map[string]interface{}{"season_id": "s1"}, Sort: map[string]int{"id": 1}},
			wantIDs: []string{"p1", "p2"},
		},
		{
			name:    "In Membership",
			req:     QueryRequest{Table: "payments", In: map[string][]interface{}{"player_id": {"p1", "p3"}}, Sort: map[string]int{"id": 1}},
			wantIDs: []string{"x1", "x3"},
		},
		{
			name:    "Empty Membership Matches Nothing",
			req:     QueryRequest{Table: "payments", In: map[string][]interface{}{"player_id": {}}},
			wantIDs: nil,
		},
		{
			name:    "Descending Sort With Limit",
			req:     QueryRequest{Table: "players", Sort: map[string]int{"id": -1}, Limit: 2},
			wantIDs: []string{"p3", "p2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Query(ctx, tt.req)
			require.NoError(t, err)

			var ids []string
			for _, row := range resp.Data {
				ids = append(ids, row["id"].(string))
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.EqualValues(t, len(tt.wantIDs), resp.TotalCount)
		})
	}
}

func TestSQLConnectorMissingTable(t *testing.T) {
	c := openSeededSQLite(t)

	_, err := c.Query(context.Background(), QueryRequest{Table: "registration_events"})
	assert.Error(t, err)
}

func TestBuildSQLQueryPostgresPlaceholders(t *testing.T) {
	c := NewSQLConnector("postgresql")

	query, args, err := c.buildSQLQuery(QueryRequest{
		Table:   "payments",
		Filters: map[string]interface{}{"season_id": "s1"},
		In:      map[string][]interface{}{"player_id": {"p1", "p2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM payments WHERE season_id = $1 AND player_id IN ($2, $3)", query)
	assert.Equal(t, []interface{}{"s1", "p1", "p2"}, args)
}

func TestBuildSQLQueryRejectsUnsafeIdentifiers(t *testing.T) {
	c := NewSQLConnector("mysql")

	_, _, err := c.buildSQLQuery(QueryRequest{Table: "players; DROP TABLE players"})
	assert.Error(t, err)

	_, _, err = c.buildSQLQuery(QueryRequest{Table: "players", Filters: map[string]interface{}{"a = 1 OR 1": 1}})
	assert.Error(t, err)
}
