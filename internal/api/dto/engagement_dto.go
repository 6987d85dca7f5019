package dto

// PostEngagementDTO 帖子互动状态
type PostEngagementDTO struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

// CommentReactionDTO 评论点赞结果
type CommentReactionDTO struct {
	LikeCount int64 `json:"like_count"`
	Liked     bool  `json:"liked"`
}
