package report

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-league/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, store DataStore, claims *utils.UserClaims) *fiber.App {
	t.Helper()
	controller := NewReportController(NewReportService(store, zap.NewNop()))

	app := fiber.New()
	group := app.Group("/api/reports", func(c *fiber.Ctx) error {
		if claims != nil {
			c.Locals(utils.UserClaimsKey, claims)
		}
		return c.Next()
	})
	group.Get("/types", controller.Types)
	group.Get("/types/:type", controller.Type)
	group.Post("/run", controller.Run)
	return app
}

func leagueAdmin(org string) *utils.UserClaims {
	return &utils.UserClaims{UserID: "u1", OrgID: org, Roles: []string{"admin"}}
}

func postRun(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/reports/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestRunReport(t *testing.T) {
	store := newFakeStore()
	store.tables["players"] = []map[string]interface{}{
		{"id": "p1", "season_id": "s1", "first_name": "Ava", "last_name": "Lee"},
		{"id": "p2", "season_id": "s1", "first_name": "Ben", "last_name": "Ortiz"},
	}
	app := newTestApp(t, store, leagueAdmin("org-1"))

	status, out := postRun(t, app, `{"report_type":"players","season_id":"s1","sort_field":"full_name","sort_dir":"desc"}`)
	require.Equal(t, fiber.StatusOK, status, out)
	assert.Equal(t, "ready", out["status"])
	assert.EqualValues(t, 2, out["total_rows"])
	rows := out["rows"].([]interface{})
	assert.Equal(t, "Ben Ortiz", rows[0].(map[string]interface{})["full_name"])
}

func TestRunReportErrors(t *testing.T) {
	store := newFakeStore()
	tests := []struct {
		name   string
		claims *utils.UserClaims
		body   string
		want   int
	}{
		{name: "No Identity", claims: nil, body: `{"report_type":"players","season_id":"s1"}`, want: fiber.StatusUnauthorized},
		{name: "Bad Body", claims: leagueAdmin("org-1"), body: `{`, want: fiber.StatusBadRequest},
		{name: "Unknown Type", claims: leagueAdmin("org-1"), body: `{"report_type":"rosters"}`, want: fiber.StatusBadRequest},
		{name: "Missing Season", claims: leagueAdmin("org-1"), body: `{"report_type":"players"}`, want: fiber.StatusBadRequest},
		{name: "Unsortable", claims: leagueAdmin("org-1"), body: `{"report_type":"emergency","season_id":"s1","sort_field":"allergies","sort_dir":"asc"}`, want: fiber.StatusBadRequest},
		{name: "Other Organization", claims: leagueAdmin("org-2"), body: `{"report_type":"players","season_id":"s1"}`, want: fiber.StatusNotFound},
		{name: "Platform Report", claims: leagueAdmin("org-1"), body: `{"report_type":"inactive_orgs"}`, want: fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, store, tt.claims)
			status, out := postRun(t, app, tt.body)
			assert.Equal(t, tt.want, status, out)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestRunReportSourceFailure(t *testing.T) {
	store := newFakeStore()
	store.fail["players"] = io.ErrUnexpectedEOF
	app := newTestApp(t, store, leagueAdmin("org-1"))

	status, out := postRun(t, app, `{"report_type":"players","season_id":"s1"}`)
	assert.Equal(t, fiber.StatusBadGateway, status)
	view := out["report"].(map[string]interface{})
	assert.Equal(t, "error", view["status"])
	assert.Len(t, view["stats"].(map[string]interface{})["metrics"], 4)
}

func TestTypes(t *testing.T) {
	app := newTestApp(t, newFakeStore(), leagueAdmin("org-1"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/reports/types", nil))
	require.NoError(t, err)
	var defs []Definition
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&defs))
	assert.Len(t, defs, len(AllReportTypes))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/reports/types/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
