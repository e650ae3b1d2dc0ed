package api

import (
	"Larder/internal/api/config"
	"Larder/internal/api/middleware"
	"Larder/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, cfg *config.Config) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))
	logger.SetupGin(r, cfg.Logstash)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/users")
		{
			userGroup.POST("", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.GET("/:user_id", group.UserHandler.GetUser)
			userGroup.GET("/:user_id/follow-counts", group.UserHandler.GetFollowCounts)

			// 写操作每次都携带凭证，在事务内校验
			authGroup := userGroup.Group("")
			authGroup.Use(middleware.CredentialMiddleware())
			{
				authGroup.PUT("/profile", group.UserHandler.UpdateProfile)
				authGroup.DELETE("/:user_id", group.UserHandler.DeleteAccount)
				authGroup.POST("/:user_id/follow", group.UserHandler.ToggleFollow)
			}
		}

		recipeGroup := apiGroup.Group("/recipes")
		{
			recipeGroup.GET("/:recipe_id", group.RecipeHandler.GetRecipe)
			recipeGroup.GET("/:recipe_id/reviews/count", group.RecipeHandler.GetReviewCount)
			recipeGroup.POST("/:recipe_id/aggregate", group.RecipeHandler.RefreshAggregate)

			authGroup := recipeGroup.Group("")
			authGroup.Use(middleware.CredentialMiddleware())
			{
				authGroup.POST("", group.RecipeHandler.CreateRecipe)
				authGroup.PUT("/:recipe_id", group.RecipeHandler.UpdateRecipe)
				authGroup.DELETE("/:recipe_id", group.RecipeHandler.DeleteRecipe)

				authGroup.POST("/:recipe_id/reviews", group.ReviewHandler.AddReview)
				authGroup.PUT("/:recipe_id/reviews/:review_id", group.ReviewHandler.EditReview)
				authGroup.DELETE("/:recipe_id/reviews/:review_id", group.ReviewHandler.DeleteReview)
			}
		}

		// 只读统计
		statsGroup := apiGroup.Group("/stats")
		{
			statsGroup.GET("/follow-ratio", group.UserHandler.GetHighestFollowRatio)
			statsGroup.GET("/calorie-pair", group.RecipeHandler.GetClosestCaloriePair)
			statsGroup.GET("/complex-recipes", group.RecipeHandler.GetTopComplexRecipes)
		}

		reviewGroup := apiGroup.Group("/reviews")
		{
			reviewGroup.GET("/:review_id", group.ReviewHandler.GetReview)
			reviewGroup.GET("/:review_id/likes/count", group.ReviewHandler.GetLikeCount)

			authGroup := reviewGroup.Group("")
			authGroup.Use(middleware.CredentialMiddleware())
			{
				authGroup.POST("/:review_id/like", group.ReviewHandler.ToggleLike)
			}
		}
	}

	return r
}
