package cron

import log "log/slog"

// InitCron 注册并启动定时任务
func InitCron(mgr *Manager) error {
	log.Info("Cron jobs starting...")
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}
