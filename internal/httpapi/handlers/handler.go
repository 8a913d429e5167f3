package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/taskflow/internal/chat"
	"github.com/suPer8Hu/taskflow/internal/config"
	"github.com/suPer8Hu/taskflow/internal/email"
	"github.com/suPer8Hu/taskflow/internal/httpapi/middleware"
	"github.com/suPer8Hu/taskflow/internal/store/redisstore"
	"github.com/suPer8Hu/taskflow/internal/task"
	"gorm.io/gorm"
)

// Handler carries the collaborators built by the startup sequence; nothing in
// here constructs its own clients.
type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	Redis       *redisstore.Store
	SMTPSetting email.SMTPConfig
	ChatSvc     *chat.Service
	TaskSvc     *task.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, chatSvc *chat.Service, taskSvc *task.Service) *Handler {
	return &Handler{
		DB:    db,
		Cfg:   cfg,
		Redis: rds,
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		ChatSvc: chatSvc,
		TaskSvc: taskSvc,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
