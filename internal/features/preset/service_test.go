package preset

import (
	"context"
	"errors"
	"testing"

	"go-league/internal/features/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenRepository struct{}

func (brokenRepository) Load(ctx context.Context, orgID string) ([]Preset, error) {
	return nil, errors.New("connection refused")
}

func (brokenRepository) Store(ctx context.Context, orgID string, presets []Preset) error {
	return errors.New("connection refused")
}

func TestPresetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(NewMemoryPresetRepository(), zap.NewNop())

	view, err := report.NewViewController(report.ReportTypeOutstanding)
	require.NoError(t, err)
	require.NoError(t, view.ToggleColumnVisible("parent_phone"))
	require.NoError(t, view.ReorderColumns([]string{"balance"}))
	require.NoError(t, view.SetFilter(report.FilterTeam, "Hawks"))
	require.NoError(t, view.SetSort("balance"))
	want := view.Snapshot()

	saved, err := svc.Save(ctx, "org-1", "  Owing Hawks ", want)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Owing Hawks", saved.Name)

	loaded, err := svc.Load(ctx, "org-1", saved.ID)
	require.NoError(t, err)

	restored, err := report.NewViewController(report.ReportTypePlayers)
	require.NoError(t, err)
	require.NoError(t, restored.ApplySnapshot(loaded.Snapshot()))
	assert.Equal(t, want, restored.Snapshot())
	assert.Empty(t, restored.State().SortField)
}

func TestPresetsAreScopedByOrganization(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(NewMemoryPresetRepository(), zap.NewNop())

	snap := report.Snapshot{ReportType: report.ReportTypePlayers}
	a, err := svc.Save(ctx, "org-1", "Roster", snap)
	require.NoError(t, err)
	_, err = svc.Save(ctx, "org-1", "Roster", snap)
	require.NoError(t, err, "names may repeat")

	list, err := svc.List(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	other, err := svc.List(ctx, "org-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = svc.Load(ctx, "org-2", a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "org-2", a.ID), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "org-1", a.ID))
	list, err = svc.List(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPresetSaveValidates(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(NewMemoryPresetRepository(), zap.NewNop())

	_, err := svc.Save(ctx, "org-1", " ", report.Snapshot{ReportType: report.ReportTypePlayers})
	assert.ErrorIs(t, err, ErrInvalidPreset)
	_, err = svc.Save(ctx, "", "Roster", report.Snapshot{ReportType: report.ReportTypePlayers})
	assert.ErrorIs(t, err, ErrInvalidPreset)
	_, err = svc.Save(ctx, "org-1", "Roster", report.Snapshot{ReportType: "nope"})
	assert.ErrorIs(t, err, ErrInvalidPreset)

	saved, err := svc.Save(ctx, "org-1", "Roster", report.Snapshot{
		ReportType:     report.ReportTypePlayers,
		VisibleColumns: map[string]bool{"dropped_column": true},
		ColumnOrder:    []string{"dropped_column", "balance"},
	})
	require.NoError(t, err)
	assert.NotContains(t, saved.VisibleColumns, "dropped_column")
	assert.Equal(t, "balance", saved.ColumnOrder[0])
}

func TestPresetStoreFailureIsReported(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(brokenRepository{}, zap.NewNop())

	_, err := svc.List(ctx, "org-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = svc.Save(ctx, "org-1", "Roster", report.Snapshot{ReportType: report.ReportTypePlayers})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = svc.Load(ctx, "org-1", "x")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
