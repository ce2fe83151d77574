package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-league/internal/features/export"
	"go-league/internal/features/preset"
	"go-league/internal/features/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ScheduleService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	ListJobs() []JobStatus
	ListOrgJobs(orgID string) []JobStatus
	ExecuteJob(ctx context.Context, name string) error
	ExecuteOrgJob(ctx context.Context, orgID, name string) error
}

type ScheduleServiceImpl struct {
	jobs          map[string]Job
	reportService report.ReportService
	presetService preset.PresetService
	dir           export.Sink
	mail          export.Sink
	logger        *zap.Logger
	clock         func() time.Time

	scheduler  *cron.Cron
	jobEntries map[string]cron.EntryID
	lastRun    map[string]time.Time
	lastErr    map[string]string
	mu         sync.RWMutex
}

// NewScheduleService takes the validated jobs. Either sink may be nil: with
// no directory sink documents are only mailed, with no mail sink email_to
// fails the run.
func NewScheduleService(
	jobs []Job,
	reportService report.ReportService,
	presetService preset.PresetService,
	dir export.Sink,
	mail export.Sink,
	logger *zap.Logger,
) ScheduleService {
	byName := make(map[string]Job, len(jobs))
	for _, j := range jobs {
		byName[j.Name] = j
	}
	return &ScheduleServiceImpl{
		jobs:          byName,
		reportService: reportService,
		presetService: presetService,
		dir:           dir,
		mail:          mail,
		logger:        logger,
		clock:         time.Now,
		jobEntries:    make(map[string]cron.EntryID),
		lastRun:       make(map[string]time.Time),
		lastErr:       make(map[string]string),
	}
}

func (s *ScheduleServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Initializing export scheduler", zap.Int("jobs", len(s.jobs)))
	s.scheduler = cron.New()
	for name, job := range s.jobs {
		entryID, err := s.scheduler.AddFunc(job.Cron, func() {
			if err := s.ExecuteJob(context.Background(), name); err != nil {
				s.logger.Error("Scheduled export failed", zap.String("job", name), zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("failed to add scheduled export %s: %w", name, err)
		}
		s.jobEntries[name] = entryID
	}
	s.scheduler.Start()
	return nil
}

func (s *ScheduleServiceImpl) StopScheduler() error {
	s.mu.RLock()
	scheduler := s.scheduler
	s.mu.RUnlock()
	if scheduler != nil {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *ScheduleServiceImpl) ListJobs() []JobStatus {
	return s.statuses(func(Job) bool { return true })
}

// ListOrgJobs lists only the jobs exporting the given organization's data.
func (s *ScheduleServiceImpl) ListOrgJobs(orgID string) []JobStatus {
	return s.statuses(func(j Job) bool { return j.OrgID == orgID })
}

func (s *ScheduleServiceImpl) statuses(keep func(Job) bool) []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for name, job := range s.jobs {
		if !keep(job) {
			continue
		}
		st := JobStatus{Job: job, LastError: s.lastErr[name]}
		if t, ok := s.lastRun[name]; ok {
			st.LastRun = &t
		}
		if id, ok := s.jobEntries[name]; ok && s.scheduler != nil {
			if next := s.scheduler.Entry(id).Next; !next.IsZero() {
				st.NextRun = &next
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExecuteJob runs one export now, whether or not the scheduler is running.
func (s *ScheduleServiceImpl) ExecuteJob(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrJobUnknown, name)
	}
	return s.execute(ctx, job)
}

// ExecuteOrgJob runs a job on behalf of one organization. Jobs owned by
// another organization are reported as unknown.
func (s *ScheduleServiceImpl) ExecuteOrgJob(ctx context.Context, orgID, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok || orgID == "" || job.OrgID != orgID {
		return fmt.Errorf("%w: %q", ErrJobUnknown, name)
	}
	return s.execute(ctx, job)
}

func (s *ScheduleServiceImpl) execute(ctx context.Context, job Job) error {
	name := job.Name
	err := s.run(ctx, job)

	s.mu.Lock()
	s.lastRun[name] = s.clock()
	if err != nil {
		s.lastErr[name] = err.Error()
	} else {
		delete(s.lastErr, name)
	}
	s.mu.Unlock()
	return err
}

func (s *ScheduleServiceImpl) run(ctx context.Context, job Job) error {
	req := report.RunRequest{
		ReportType: job.ReportType,
		SeasonID:   job.SeasonID,
		OrgID:      job.OrgID,
		Filters:    job.Filters,
	}
	if job.PresetID != "" {
		s.applyPreset(ctx, job, &req)
	}

	panel, err := s.reportService.OpenPanel(ctx, req)
	if err != nil {
		return err
	}

	id := report.StaticIdentity{Org: job.OrgName, User: "Scheduled export: " + job.Name, Clock: s.clock}
	table := panel.ExportTable(id, job.ScopeLabel)
	doc, err := export.Render(export.Format(job.Format), table)
	if err != nil {
		return err
	}
	delivery := export.Delivery{Document: doc, Email: export.RenderEmail(table), To: job.EmailTo}

	if s.dir != nil {
		if err := s.dir.Deliver(ctx, delivery); err != nil {
			return err
		}
	}
	if len(job.EmailTo) > 0 {
		if s.mail == nil {
			return export.ErrMailUnavailable
		}
		if err := s.mail.Deliver(ctx, delivery); err != nil {
			return err
		}
	}

	s.logger.Info("Scheduled export delivered",
		zap.String("job", job.Name),
		zap.String("report_type", string(req.ReportType)),
		zap.String("org_id", job.OrgID),
		zap.String("file", doc.Filename),
		zap.Int("rows", len(table.Rows)))
	return nil
}

// applyPreset overlays a stored preset. A preset store failure only costs
// the preset; the export still runs with the job's own settings.
func (s *ScheduleServiceImpl) applyPreset(ctx context.Context, job Job, req *report.RunRequest) {
	if s.presetService == nil {
		return
	}
	p, err := s.presetService.Load(ctx, job.OrgID, job.PresetID)
	if err != nil {
		s.logger.Warn("Preset unavailable for scheduled export",
			zap.String("job", job.Name),
			zap.String("preset_id", job.PresetID),
			zap.Error(err))
		return
	}
	snap := p.Snapshot()
	req.ReportType = snap.ReportType
	req.VisibleColumns = snap.VisibleColumns
	req.ColumnOrder = snap.ColumnOrder
	req.Filters = snap.Filters
}
