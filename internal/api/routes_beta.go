package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/betagate/internal/handlers"
)

func registerBetaRoutes(r *gin.Engine, handler *handlers.BetaHandler) {
	beta := r.Group("/beta")
	{
		beta.POST("/add-user", handler.AddUser)
		beta.DELETE("/remove-user", handler.RemoveUser)
		beta.GET("/sign-up/:code", handler.SignUpCallback)
		beta.POST("/sign-up", handler.SignUp)
		beta.GET("/check", handler.Check)
	}
}
