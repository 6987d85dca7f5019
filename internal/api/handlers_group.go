package api

import "DevNest/internal/api/handler"

// HandlersGroup 聚合所有 HTTP handler
type HandlersGroup struct {
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
}
