package handler

import (
	"DevNest/internal/api/dto"
	"DevNest/internal/pkg/response"
	"DevNest/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

func (s *PostHandler) ListPosts(c *gin.Context) {
	var query dto.PostListQuery
	if !bindQuery(c, &query) {
		return
	}

	page, err := s.postSvc.ListPosts(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *PostHandler) LatestPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	posts, err := s.postSvc.LatestPosts(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) GetPostBySlug(c *gin.Context) {
	post, err := s.postSvc.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) GetEngagement(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	res, err := s.postSvc.GetEngagement(c.Request.Context(), postID, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) MyPosts(c *gin.Context) {
	posts, err := s.postSvc.PostsByAuthor(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	var req dto.PostWriteDTO
	if !bindJSON(c, &req) {
		return
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	var req dto.PostWriteDTO
	if !bindJSON(c, &req) {
		return
	}

	post, err := s.postSvc.UpdatePost(c.Request.Context(), currentUser(c), postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	if err := s.postSvc.DeletePost(c.Request.Context(), currentUser(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) LikePost(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	res, err := s.postSvc.LikePost(c.Request.Context(), currentUser(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) UnlikePost(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	res, err := s.postSvc.UnlikePost(c.Request.Context(), currentUser(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
