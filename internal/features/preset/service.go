package preset

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-league/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PresetService interface {
	Save(ctx context.Context, orgID, name string, snapshot report.Snapshot) (*Preset, error)
	List(ctx context.Context, orgID string) ([]Preset, error)
	Load(ctx context.Context, orgID, id string) (*Preset, error)
	Delete(ctx context.Context, orgID, id string) error
}

type PresetServiceImpl struct {
	Repo   PresetRepository
	Logger *zap.Logger
	Clock  func() time.Time

	// mu serializes the read-modify-write of a save or delete.
	mu sync.Mutex
}

func NewPresetService(repo PresetRepository, logger *zap.Logger) PresetService {
	return &PresetServiceImpl{
		Repo:   repo,
		Logger: logger,
		Clock:  time.Now,
	}
}

func (s *PresetServiceImpl) Save(ctx context.Context, orgID, name string, snapshot report.Snapshot) (*Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if orgID == "" {
		return nil, fmt.Errorf("%w: organization is required", ErrInvalidPreset)
	}
	// Normalize through a view so stored presets only hold known columns.
	view, err := report.NewViewController(snapshot.ReportType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if err := view.ApplySnapshot(snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	snap := view.Snapshot()

	p := Preset{
		ID:             primitive.NewObjectID().Hex(),
		OrgID:          orgID,
		Name:           name,
		ReportType:     snap.ReportType,
		VisibleColumns: snap.VisibleColumns,
		ColumnOrder:    snap.ColumnOrder,
		Filters:        snap.Filters,
		CreatedAt:      s.Clock().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.Repo.Load(ctx, orgID)
	if err != nil {
		return nil, s.unavailable("load", orgID, err)
	}
	if err := s.Repo.Store(ctx, orgID, append(presets, p)); err != nil {
		return nil, s.unavailable("store", orgID, err)
	}
	return &p, nil
}

func (s *PresetServiceImpl) List(ctx context.Context, orgID string) ([]Preset, error) {
	presets, err := s.Repo.Load(ctx, orgID)
	if err != nil {
		return nil, s.unavailable("load", orgID, err)
	}
	return presets, nil
}

func (s *PresetServiceImpl) Load(ctx context.Context, orgID, id string) (*Preset, error) {
	presets, err := s.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for i := range presets {
		if presets[i].ID == id {
			return &presets[i], nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes a preset. A panel showing the preset keeps its state.
func (s *PresetServiceImpl) Delete(ctx context.Context, orgID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.Repo.Load(ctx, orgID)
	if err != nil {
		return s.unavailable("load", orgID, err)
	}
	kept := make([]Preset, 0, len(presets))
	for _, p := range presets {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(presets) {
		return ErrNotFound
	}
	if err := s.Repo.Store(ctx, orgID, kept); err != nil {
		return s.unavailable("store", orgID, err)
	}
	return nil
}

func (s *PresetServiceImpl) unavailable(op, orgID string, err error) error {
	s.Logger.Warn("Preset store failure",
		zap.String("op", op),
		zap.String("org_id", orgID),
		zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
