package middleware

import (
	"Larder/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CredentialKey gin.Context 中保存调用方凭证的 key
const CredentialKey = "credential"

// CredentialMiddleware 从 Basic Auth 头中解析出用户 ID 与密码
// 这里只做解析，校验在服务层的写事务里完成，缺失时留空由服务层返回认证错误
func CredentialMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var cred service.Credential
		if username, password, ok := c.Request.BasicAuth(); ok {
			if id, err := strconv.ParseUint(username, 10, 64); err == nil {
				cred = service.Credential{UserID: id, Password: password}
			}
		}
		c.Set(CredentialKey, cred)
		c.Next()
	}
}

// GetCredential 读取 CredentialMiddleware 写入的凭证
func GetCredential(c *gin.Context) service.Credential {
	if v, ok := c.Get(CredentialKey); ok {
		if cred, ok := v.(service.Credential); ok {
			return cred
		}
	}
	return service.Credential{}
}
