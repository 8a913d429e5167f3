package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/taskflow/internal/common"
	"github.com/suPer8Hu/taskflow/internal/httpapi/handlers"
	"github.com/suPer8Hu/taskflow/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	r.GET("/ping", h.Ping)

	// captcha
	r.POST("/captcha", h.SendCaptcha)

	// users register
	r.POST("/users", h.CreateUser)
	r.GET("/users/:id", h.GetUserByID)

	// auth
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(jwtSecret))
	authGroup.GET("/me", h.Me)

	// tasks (JWT required)
	authGroup.POST("/tasks", h.CreateTask)
	authGroup.GET("/tasks", h.ListTasks)
	authGroup.GET("/tasks/stats", h.TaskStats)
	authGroup.GET("/tasks/:id", h.GetTask)
	authGroup.PUT("/tasks/:id", h.UpdateTask)
	authGroup.PATCH("/tasks/:id/complete", h.ToggleTaskComplete)
	authGroup.DELETE("/tasks/:id", h.DeleteTask)

	// assistant chat (JWT required)
	authGroup.POST("/chat/messages", h.SendChatMessage)
	authGroup.GET("/chat/conversations", h.ListConversations)
	authGroup.GET("/chat/conversations/:conversation_id/messages", h.GetConversationHistory)

	// file uploads (JWT required)
	authGroup.POST("/files", h.UploadFile)
	authGroup.GET("/files", h.ListFiles)
	authGroup.GET("/files/:id/text", h.GetFileText)
	authGroup.DELETE("/files/:id", h.DeleteFile)

	return r
}
