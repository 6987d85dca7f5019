package api

import (
	"DevNest/internal/api/middleware"
	"DevNest/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, logIndex string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logIndex)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("", group.PostHandler.ListPosts)
				authOptGroup.GET("/latest", group.PostHandler.LatestPosts)
				authOptGroup.GET("/slug/:slug", group.PostHandler.GetPostBySlug)
				authOptGroup.GET("/:post_id/engagement", group.PostHandler.GetEngagement)
				authOptGroup.GET("/:post_id/comments", group.CommentHandler.ListComments)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/me", group.PostHandler.MyPosts)
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
				authGroup.POST("/:post_id/likes", group.PostHandler.LikePost)
				authGroup.DELETE("/:post_id/likes", group.PostHandler.UnlikePost)
				authGroup.POST("/:post_id/comments", group.CommentHandler.CreateComment)
			}
		}

		commentGroup := apiGroup.Group("/comments")
		commentGroup.Use(middleware.AuthMiddleware())
		{
			commentGroup.GET("/me", group.CommentHandler.MyComments)
			commentGroup.PUT("/:comment_id", group.CommentHandler.UpdateComment)
			commentGroup.DELETE("/:comment_id", group.CommentHandler.DeleteComment)
			commentGroup.POST("/:comment_id/likes", group.CommentHandler.LikeComment)
			commentGroup.DELETE("/:comment_id/likes", group.CommentHandler.UnlikeComment)
		}
	}

	return r
}
