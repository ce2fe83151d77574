package schedule

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go-league/internal/features/export"
	"go-league/internal/features/report"
	"go-league/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const twoLeaguesYAML = `
jobs:
  - name: riverside-roster
    cron: "@daily"
    report_type: players
    season_id: s1
    org_id: org-1
    org_name: Riverside Youth Soccer
  - name: hillcrest-payments
    cron: "@daily"
    report_type: payments
    season_id: s9
    org_id: org-2
    org_name: Hillcrest Little League
    email_to: [treasurer@hillcrest.example.com]
`

func newScheduleApp(t *testing.T, claims *utils.UserClaims) (*fiber.App, string) {
	t.Helper()
	jobs, err := Parse([]byte(twoLeaguesYAML))
	require.NoError(t, err)

	dir := t.TempDir()
	svc := NewScheduleService(
		jobs,
		report.NewReportService(leagueStore(), zap.NewNop()),
		nil,
		export.NewDirSink(dir),
		&recordingSink{},
		zap.NewNop(),
	)
	controller := NewScheduleController(svc)

	app := fiber.New()
	group := app.Group("/api/schedules", func(c *fiber.Ctx) error {
		c.Locals(utils.UserClaimsKey, claims)
		return c.Next()
	})
	group.Get("/", controller.ListJobs)
	group.Post("/:name/run", controller.ExecuteJob)
	return app, dir
}

func listJobNames(t *testing.T, app *fiber.App) []string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/schedules/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var statuses []JobStatus
	require.NoError(t, json.Unmarshal(raw, &statuses), string(raw))

	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, st.Name)
	}
	return names
}

func runJob(t *testing.T, app *fiber.App, name string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/schedules/"+name+"/run", nil))
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestScheduleRoutesAreScopedToOrganization(t *testing.T) {
	app, dir := newScheduleApp(t, &utils.UserClaims{UserID: "u1", OrgID: "org-1", Roles: []string{"admin"}})

	assert.Equal(t, []string{"riverside-roster"}, listJobNames(t, app))

	assert.Equal(t, fiber.StatusNotFound, runJob(t, app, "hillcrest-payments"))
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files, "another league's job must not export anything")

	assert.Equal(t, fiber.StatusOK, runJob(t, app, "riverside-roster"))
	files, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestPlatformAdminSeesEveryJob(t *testing.T) {
	app, _ := newScheduleApp(t, &utils.UserClaims{UserID: "ops", OrgID: "org-1", Roles: []string{"platform_admin"}})

	assert.Equal(t, []string{"hillcrest-payments", "riverside-roster"}, listJobNames(t, app))
}

func TestScheduleRoutesRequireClaims(t *testing.T) {
	app, _ := newScheduleApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/schedules/", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, runJob(t, app, "riverside-roster"))
}
