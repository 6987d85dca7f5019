package job

import (
	"DevNest/internal/pkg/consts"
	"DevNest/internal/service"
)

// CommentLikesJob 对账评论点赞数
type CommentLikesJob struct {
	engagementSvc service.EngagementService
}

func NewCommentLikesJob(engagementSvc service.EngagementService) *CommentLikesJob {
	return &CommentLikesJob{engagementSvc: engagementSvc}
}

func (s *CommentLikesJob) Run() {
	drainDirtySet("comment-likes", consts.CommentLikeDirtyKey, consts.CommentReconcileLock, s.engagementSvc.ReconcileCommentLikes)
}
