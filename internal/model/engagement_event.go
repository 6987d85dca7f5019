package model

import "time"

const (
	EventLike   = "like"
	EventUnlike = "unlike"
	EventView   = "view"
)

// EngagementEvent 互动事件，投递到 Kafka 供计数对账使用，不落库
type EngagementEvent struct {
	Type       string    `json:"type"`
	TargetType string    `json:"target_type"`
	TargetID   uint64    `json:"target_id"`
	PostID     uint64    `json:"post_id"`
	UserID     uint64    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
