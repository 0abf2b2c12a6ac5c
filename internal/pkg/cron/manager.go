package cron

import (
	log "log/slog"

	"Plume/internal/job"

	"github.com/robfig/cron/v3"
)

// DefaultBumpSpec 每分钟检查一次脏表集合
const DefaultBumpSpec = "@every 1m"

type Manager struct {
	engine            *cron.Cron
	bumpSpec          string
	dashboardCacheJob *job.DashboardCacheJob
}

func NewCronManager(bumpSpec string, dashboardCacheJob *job.DashboardCacheJob) *Manager {
	if bumpSpec == "" {
		bumpSpec = DefaultBumpSpec
	}
	return &Manager{
		engine:            cron.New(cron.WithSeconds()),
		bumpSpec:          bumpSpec,
		dashboardCacheJob: dashboardCacheJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.bumpSpec, s.dashboardCacheJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron engine started")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron engine stopped")
	<-s.engine.Stop().Done()
}
