package handler

import (
	"Larder/internal/api/dto"
	"Larder/internal/api/middleware"
	"Larder/internal/pkg/response"
	"Larder/internal/service"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipeSvc service.RecipeService
	reviewSvc service.ReviewService
}

func NewRecipeHandler(recipeSvc service.RecipeService, reviewSvc service.ReviewService) *RecipeHandler {
	return &RecipeHandler{
		recipeSvc: recipeSvc,
		reviewSvc: reviewSvc,
	}
}

func (s *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req dto.CreateRecipeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	id, err := s.recipeSvc.CreateRecipe(c.Request.Context(), middleware.GetCredential(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"recipe_id": id})
}

func (s *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	recipe, err := s.recipeSvc.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, recipe)
}

func (s *RecipeHandler) GetReviewCount(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	count, err := s.recipeSvc.GetReviewCount(c.Request.Context(), recipeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}

func (s *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	var req dto.UpdateRecipeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := s.recipeSvc.UpdateRecipe(c.Request.Context(), middleware.GetCredential(c), recipeID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	if err := s.recipeSvc.DeleteRecipe(c.Request.Context(), middleware.GetCredential(c), recipeID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RefreshAggregate 运维接口，按当前评价重新计算评分
func (s *RecipeHandler) RefreshAggregate(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	agg, err := s.reviewSvc.RefreshRecipeAggregate(c.Request.Context(), recipeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.RecipeAggregateDTO{AggregatedRating: agg.Rating, ReviewCount: agg.Count})
}

func (s *RecipeHandler) GetClosestCaloriePair(c *gin.Context) {
	pair, err := s.recipeSvc.GetClosestCaloriePair(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pair)
}

func (s *RecipeHandler) GetTopComplexRecipes(c *gin.Context) {
	recipes, err := s.recipeSvc.GetTopComplexRecipes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, recipes)
}
