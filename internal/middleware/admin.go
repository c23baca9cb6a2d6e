package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/it-helpdesk/helpdesk-service/internal/service"
)

const UserEmailHeader = "X-User-Email"

// RequireAdmin пропускает запрос только от адреса из ростера администраторов.
// Клиентская capability-таблица скрывает такие действия в интерфейсе; здесь —
// серверная половина той же проверки.
func RequireAdmin(admins service.AdminServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(UserEmailHeader)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserEmailHeader + " header"})
			return
		}
		ok, err := admins.IsAdmin(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check admin"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}
