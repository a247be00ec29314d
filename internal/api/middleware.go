package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxActor    = "actor"
	ctxUsername = "username"
)

// jwtMiddleware проверяет JWT токен в заголовке Authorization и кладёт актора в контекст
func (rs *RestServer) jwtMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, GenericResponse{
				Message: "Отсутствует токен авторизации",
			})
			return
		}

		// Формат "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, GenericResponse{
				Message: "Неверный формат токена",
			})
			return
		}

		claims, err := rs.issuer.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, GenericResponse{
				Message: "Недействительный токен",
			})
			return
		}
		actor, err := claims.Actor()
		if err != nil || actor == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, GenericResponse{
				Message: "Токен не содержит актора",
			})
			return
		}

		c.Set(ctxActor, actor)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// actorFrom актор, установленный jwtMiddleware
func actorFrom(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxActor); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
