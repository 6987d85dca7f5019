package job

import (
	"DevNest/internal/pkg/consts"
	"DevNest/internal/service"
)

// PostMetricsJob 对账帖子点赞数
type PostMetricsJob struct {
	engagementSvc service.EngagementService
}

func NewPostMetricsJob(engagementSvc service.EngagementService) *PostMetricsJob {
	return &PostMetricsJob{engagementSvc: engagementSvc}
}

func (s *PostMetricsJob) Run() {
	drainDirtySet("post-likes", consts.PostDirtyKey, consts.PostReconcileLock, s.engagementSvc.ReconcilePostLikes)
}
