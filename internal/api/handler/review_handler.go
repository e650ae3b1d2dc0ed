package handler

import (
	"Larder/internal/api/dto"
	"Larder/internal/api/middleware"
	"Larder/internal/pkg/response"
	"Larder/internal/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewSvc service.ReviewService
}

func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

func (s *ReviewHandler) AddReview(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	var req dto.AddReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	id, err := s.reviewSvc.AddReview(c.Request.Context(), middleware.GetCredential(c), recipeID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"review_id": id})
}

func (s *ReviewHandler) EditReview(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	var req dto.EditReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := s.reviewSvc.EditReview(c.Request.Context(), middleware.GetCredential(c), recipeID, reviewID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ReviewHandler) DeleteReview(c *gin.Context) {
	recipeID, ok := paramID(c, "recipe_id")
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	if err := s.reviewSvc.DeleteReview(c.Request.Context(), middleware.GetCredential(c), recipeID, reviewID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	review, err := s.reviewSvc.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, review)
}

func (s *ReviewHandler) ToggleLike(c *gin.Context) {
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	result, err := s.reviewSvc.ToggleLike(c.Request.Context(), middleware.GetCredential(c), reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toToggleResultDTO(result))
}

func (s *ReviewHandler) GetLikeCount(c *gin.Context) {
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	count, err := s.reviewSvc.GetReviewLikeCount(c.Request.Context(), reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}
