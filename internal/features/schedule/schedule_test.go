package schedule

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go-league/internal/connectors"
	"go-league/internal/features/export"
	"go-league/internal/features/preset"
	"go-league/internal/features/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scheduleYAML = `
jobs:
  - name: weekly-outstanding
    cron: "0 7 * * MON"
    report_type: outstanding
    season_id: s1
    org_id: org-1
    org_name: Riverside Youth Soccer
    scope_label: Spring 2024
    format: xlsx
    email_to: [treasurer@example.com]
  - name: nightly-roster
    cron: "@daily"
    report_type: players
    season_id: s1
    org_id: org-1
    org_name: Riverside Youth Soccer
    filters:
      team: Hawks
`

func TestParse(t *testing.T) {
	jobs, err := Parse([]byte(scheduleYAML))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "weekly-outstanding", jobs[0].Name)
	assert.Equal(t, report.ReportTypeOutstanding, jobs[0].ReportType)
	assert.Equal(t, "xlsx", jobs[0].Format)
	assert.Equal(t, []string{"treasurer@example.com"}, jobs[0].EmailTo)

	assert.Equal(t, "csv", jobs[1].Format, "format defaults to csv")
	assert.Equal(t, "Hawks", jobs[1].Filters.Team)
}

func TestParseRejectsInvalidJobs(t *testing.T) {
	base := "  - name: a\n    cron: \"@daily\"\n    report_type: players\n    org_id: org-1\n"
	tests := []struct {
		name string
		doc  string
	}{
		{name: "Bad Cron", doc: "jobs:\n  - name: a\n    cron: \"every day\"\n    report_type: players\n    org_id: org-1\n"},
		{name: "Unknown Report", doc: "jobs:\n  - name: a\n    cron: \"@daily\"\n    report_type: rosters\n    org_id: org-1\n"},
		{name: "Unknown Format", doc: "jobs:\n" + base + "    format: pdf\n"},
		{name: "Email Format", doc: "jobs:\n" + base + "    format: email\n"},
		{name: "Missing Org", doc: "jobs:\n  - name: a\n    cron: \"@daily\"\n    report_type: players\n"},
		{name: "Missing Name", doc: "jobs:\n  - cron: \"@daily\"\n    report_type: players\n    org_id: org-1\n"},
		{name: "Duplicate Name", doc: "jobs:\n" + base + base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidJob)
		})
	}
}

func TestLoadFileMissingMeansNoJobs(t *testing.T) {
	jobs, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, jobs)

	path := filepath.Join(t.TempDir(), "schedules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scheduleYAML), 0o644))
	jobs, err = LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

type memoryStore struct {
	tables map[string][]map[string]interface{}
}

func (s *memoryStore) Query(ctx context.Context, req connectors.QueryRequest) (*connectors.QueryResponse, error) {
	var out []map[string]interface{}
	for _, row := range s.tables[req.Table] {
		keep := true
		for k, v := range req.Filters {
			if row[k] != v {
				keep = false
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return &connectors.QueryResponse{Data: out, Timestamp: time.Now()}, nil
}

func leagueStore() *memoryStore {
	return &memoryStore{tables: map[string][]map[string]interface{}{
		"seasons": {{"id": "s1", "org_id": "org-1"}},
		"players": {
			{"id": "p1", "season_id": "s1", "first_name": "Ava", "last_name": "Lee"},
			{"id": "p2", "season_id": "s1", "first_name": "Ben", "last_name": "Ortiz"},
		},
	}}
}

type recordingSink struct {
	mu         sync.Mutex
	deliveries []export.Delivery
	err        error
}

func (s *recordingSink) Deliver(ctx context.Context, d export.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, d)
	return s.err
}

type brokenPresets struct{ preset.PresetService }

func (brokenPresets) Load(ctx context.Context, orgID, id string) (*preset.Preset, error) {
	return nil, preset.ErrStoreUnavailable
}

func TestExecuteJobWritesExport(t *testing.T) {
	jobs, err := Parse([]byte(scheduleYAML))
	require.NoError(t, err)

	dir := t.TempDir()
	mail := &recordingSink{}
	svc := NewScheduleService(
		jobs,
		report.NewReportService(leagueStore(), zap.NewNop()),
		nil,
		export.NewDirSink(dir),
		mail,
		zap.NewNop(),
	)

	require.NoError(t, svc.ExecuteJob(context.Background(), "nightly-roster"))
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0].Name(), "riverside_youth_soccer_players_"))
	assert.Empty(t, mail.deliveries, "no recipients means no mail")

	require.NoError(t, svc.ExecuteJob(context.Background(), "weekly-outstanding"))
	require.Len(t, mail.deliveries, 1)
	assert.Equal(t, []string{"treasurer@example.com"}, mail.deliveries[0].To)
	assert.True(t, strings.HasSuffix(mail.deliveries[0].Document.Filename, ".xlsx"))

	for _, st := range svc.ListJobs() {
		assert.NotNil(t, st.LastRun, st.Name)
		assert.Empty(t, st.LastError, st.Name)
	}

	assert.ErrorIs(t, svc.ExecuteJob(context.Background(), "missing"), ErrJobUnknown)
}

func TestExecuteJobRecordsFailures(t *testing.T) {
	jobs, err := Parse([]byte(scheduleYAML))
	require.NoError(t, err)
	jobs[1].PresetID = "p-1"

	mail := &recordingSink{err: errors.New("smtp: 554 rejected")}
	svc := NewScheduleService(
		jobs,
		report.NewReportService(leagueStore(), zap.NewNop()),
		brokenPresets{},
		nil,
		mail,
		zap.NewNop(),
	)

	require.NoError(t, svc.ExecuteJob(context.Background(), "nightly-roster"), "a missing preset does not block the export")

	err = svc.ExecuteJob(context.Background(), "weekly-outstanding")
	require.Error(t, err)
	byName := map[string]JobStatus{}
	for _, st := range svc.ListJobs() {
		byName[st.Name] = st
	}
	assert.Contains(t, byName["weekly-outstanding"].LastError, "554")

	noMail := NewScheduleService(jobs, report.NewReportService(leagueStore(), zap.NewNop()), nil, nil, nil, zap.NewNop())
	assert.ErrorIs(t, noMail.ExecuteJob(context.Background(), "weekly-outstanding"), export.ErrMailUnavailable)
}

func TestSchedulerLifecycle(t *testing.T) {
	jobs, err := Parse([]byte(scheduleYAML))
	require.NoError(t, err)
	svc := NewScheduleService(jobs, report.NewReportService(leagueStore(), zap.NewNop()), nil, nil, nil, zap.NewNop())

	require.NoError(t, svc.InitializeScheduler(context.Background()))
	assert.Eventually(t, func() bool {
		for _, st := range svc.ListJobs() {
			if st.NextRun == nil {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, svc.StopScheduler())
}
