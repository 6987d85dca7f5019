package es

import (
	"DevNest/internal/model"
	"time"
)

// PostDocument 帖子索引文档，只存放检索字段，计数与正文以数据库为准
type PostDocument struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewPostDocument(post *model.Post) *PostDocument {
	doc := &PostDocument{
		ID:          post.ID,
		UserID:      post.UserID,
		Title:       post.Title,
		Slug:        post.Slug,
		Tags:        make([]string, 0, len(post.Tags)),
		PublishedAt: post.PublishedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	if post.Summary != nil {
		doc.Summary = *post.Summary
	}
	for _, tag := range post.Tags {
		doc.Tags = append(doc.Tags, tag.Name)
	}
	return doc
}
