package handler

import (
	"DevNest/internal/api/dto"
	"DevNest/internal/pkg/response"
	"DevNest/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentSvc service.CommentService
}

func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentSvc: commentSvc,
	}
}

func (s *CommentHandler) ListComments(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	tree, err := s.commentSvc.ListComments(c.Request.Context(), postID, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tree)
}

func (s *CommentHandler) CreateComment(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	var req dto.CommentWriteDTO
	if !bindJSON(c, &req) {
		return
	}

	comment, err := s.commentSvc.CreateComment(c.Request.Context(), currentUser(c), postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	var req dto.CommentUpdateDTO
	if !bindJSON(c, &req) {
		return
	}

	comment, err := s.commentSvc.UpdateComment(c.Request.Context(), currentUser(c), commentID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	if err := s.commentSvc.DeleteComment(c.Request.Context(), currentUser(c), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CommentHandler) LikeComment(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	res, err := s.commentSvc.LikeComment(c.Request.Context(), currentUser(c), commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CommentHandler) UnlikeComment(c *gin.Context) {
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	res, err := s.commentSvc.UnlikeComment(c.Request.Context(), currentUser(c), commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CommentHandler) MyComments(c *gin.Context) {
	var query dto.PageQuery
	if !bindQuery(c, &query) {
		return
	}

	page, err := s.commentSvc.UserComments(c.Request.Context(), currentUser(c), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
