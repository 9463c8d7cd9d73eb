package routes

import (
	"context"
	"net/http"
	"time"

	"devconnector/handlers"
	"devconnector/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func SetupRouter(h *handlers.Handler, tokens middleware.Verifier, db Pinger, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	router.GET("/health", health(db))

	api := router.Group("/api")
	requireAuth := middleware.RequireAuth(tokens)

	// Users and auth
	api.POST("/users", h.Register)
	api.POST("/auth", h.Login)
	api.GET("/auth", requireAuth, h.Me)

	// Profiles
	profile := api.Group("/profile")
	profile.GET("", h.ListProfiles)
	profile.GET("/user/:user_id", h.GetProfileByUser)
	profile.GET("/github/:username", h.GitHubRepos)
	{
		own := profile.Group("", requireAuth)
		own.GET("/me", h.GetMyProfile)
		own.POST("", h.UpsertProfile)
		own.DELETE("", h.DeleteAccount)
		own.PUT("/experience", h.AddExperience)
		own.DELETE("/experience/:exp_id", h.DeleteExperience)
		own.PUT("/education", h.AddEducation)
		own.DELETE("/education/:edu_id", h.DeleteEducation)
	}

	// Posts
	posts := api.Group("/posts", requireAuth)
	posts.POST("", h.CreatePost)
	posts.GET("", h.ListPosts)
	posts.GET("/:id", h.GetPost)
	posts.DELETE("/:id", h.DeletePost)
	posts.PUT("/like/:id", h.LikePost)
	posts.PUT("/unlike/:id", h.UnlikePost)
	posts.POST("/comment/:id", h.CommentOnPost)
	posts.DELETE("/comment/:id/:comment_id", h.DeleteComment)

	router.NoRoute(middleware.NoRoute)

	return router
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
