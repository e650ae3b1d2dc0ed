package handler

import (
	"Larder/internal/api/dto"
	"Larder/internal/api/middleware"
	"Larder/internal/pkg/response"
	"Larder/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (s *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	id, err := s.userSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": id})
}

func (s *UserHandler) Login(c *gin.Context) {
	var req dto.CredentialDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	id, err := s.userSvc.Login(c.Request.Context(), service.Credential{UserID: req.UserID, Password: req.Password})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": id})
}

func (s *UserHandler) GetUser(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	user, err := s.userSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (s *UserHandler) GetFollowCounts(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	counts, err := s.userSvc.GetFollowCounts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, counts)
}

func (s *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := s.userSvc.UpdateProfile(c.Request.Context(), middleware.GetCredential(c), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	deleted, err := s.userSvc.DeleteAccount(c.Request.Context(), middleware.GetCredential(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

func (s *UserHandler) ToggleFollow(c *gin.Context) {
	followingID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	result, err := s.userSvc.ToggleFollow(c.Request.Context(), middleware.GetCredential(c), followingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toToggleResultDTO(result))
}

func (s *UserHandler) GetHighestFollowRatio(c *gin.Context) {
	ratio, err := s.userSvc.GetHighestFollowRatio(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ratio)
}
