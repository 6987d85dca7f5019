package cron

import (
	"DevNest/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const defaultReconcileSpec = "0 */5 * * * *"

type Manager struct {
	engine          *cron.Cron
	reconcileSpec   string
	postMetricsJob  *job.PostMetricsJob
	commentLikesJob *job.CommentLikesJob
}

func NewCronManager(reconcileSpec string, postMetricsJob *job.PostMetricsJob, commentLikesJob *job.CommentLikesJob) *Manager {
	if reconcileSpec == "" {
		reconcileSpec = defaultReconcileSpec
	}
	return &Manager{
		engine:          cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reconcileSpec:   reconcileSpec,
		postMetricsJob:  postMetricsJob,
		commentLikesJob: commentLikesJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.reconcileSpec, s.postMetricsJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(s.reconcileSpec, s.commentLikesJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动", "spec", s.reconcileSpec)
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}
