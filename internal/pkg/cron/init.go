package cron

import (
	log "log/slog"

	"github.com/pkg/errors"
)

// InitCron 注册并启动定时任务，mgr 为空时跳过
func InitCron(mgr *Manager) error {
	if mgr == nil {
		log.Warn("Cron manager not configured, skipping scheduled jobs")
		return nil
	}
	if err := mgr.RegisterJobs(); err != nil {
		return errors.Wrapf(err, "register cache bump job with spec %q", mgr.bumpSpec)
	}
	log.Info("Cron jobs registered", "bump_spec", mgr.bumpSpec, "entries", len(mgr.engine.Entries()))
	mgr.Start()
	return nil
}
