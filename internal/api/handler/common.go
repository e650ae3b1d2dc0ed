package handler

import (
	"Larder/internal/api/dto"
	"Larder/internal/pkg/response"
	"Larder/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// paramID 解析路径中的数字 ID，失败时直接写回 400
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, service.ErrParamInvalid)
		return 0, false
	}
	return id, true
}

func toToggleResultDTO(r *service.ToggleResult) *dto.ToggleResultDTO {
	return &dto.ToggleResultDTO{State: r.State.String(), Count: r.Count}
}
