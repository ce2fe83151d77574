package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-league/internal/config"
	"go-league/internal/database"
	"go-league/internal/features/export"
	"go-league/internal/features/preset"
	"go-league/internal/features/report"
	"go-league/internal/features/schedule"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scheduleFile string
	scheduleOnce string
	scheduleList bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scheduled exports",
	Long: `Run the scheduled exports declared in the schedule file.

Without flags the scheduler runs in the foreground until interrupted.

Examples:
  reportctl schedule --file schedules.yaml
  reportctl schedule --list
  reportctl schedule --once weekly-outstanding`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleFile, "file", "", "Schedule file (default SCHEDULE_FILE)")
	scheduleCmd.Flags().StringVar(&scheduleOnce, "once", "", "Run the named job once and exit")
	scheduleCmd.Flags().BoolVar(&scheduleList, "list", false, "List jobs and exit")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	path := scheduleFile
	if path == "" {
		path = e.cfg.ScheduleFile
	}
	jobs, err := schedule.LoadFile(path)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no scheduled exports found in %q", path)
	}

	presets, closePresets := openPresets(e.cfg, e.logger)
	defer closePresets()

	var mail export.Sink
	if m := export.NewMailSink(e.cfg.SMTP, e.logger); m.Configured() {
		mail = m
	}
	svc := schedule.NewScheduleService(
		jobs,
		report.NewReportService(e.store, e.logger),
		presets,
		export.NewDirSink(e.cfg.ExportDir),
		mail,
		e.logger,
	)

	switch {
	case scheduleList:
		for _, j := range svc.ListJobs() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-16s %-20s %s\n", j.Name, j.Cron, j.ReportType, j.Format)
		}
		return nil
	case scheduleOnce != "":
		return svc.ExecuteJob(ctx, scheduleOnce)
	}

	if err := svc.InitializeScheduler(ctx); err != nil {
		return err
	}
	e.logger.Info("Scheduler running, press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return svc.StopScheduler()
}

// openPresets connects the configured preset store. Jobs without a preset
// never touch it, so a connection failure only logs.
func openPresets(cfg *config.Config, logger *zap.Logger) (preset.PresetService, func()) {
	noop := func() {}
	switch cfg.PresetBackend {
	case "redis":
		rdb, err := database.ConnectRedis(cfg)
		if err != nil {
			logger.Warn("Preset store unavailable", zap.Error(err))
			return preset.NewPresetService(preset.NewMemoryPresetRepository(), logger), noop
		}
		return preset.NewPresetService(preset.NewRedisPresetRepository(rdb), logger), func() { _ = rdb.Close() }
	case "memory":
		return preset.NewPresetService(preset.NewMemoryPresetRepository(), logger), noop
	default:
		db, disconnect, err := database.Connect(cfg)
		if err != nil {
			logger.Warn("Preset store unavailable", zap.Error(err))
			return preset.NewPresetService(preset.NewMemoryPresetRepository(), logger), noop
		}
		return preset.NewPresetService(preset.NewMongoPresetRepository(db), logger), func() {
			_ = disconnect(context.Background())
		}
	}
}
