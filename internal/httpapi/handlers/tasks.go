package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/taskflow/internal/common"
	"github.com/suPer8Hu/taskflow/internal/task"
	"gorm.io/gorm"
)

type createTaskReq struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Tags        string     `json:"tags"`
	DueAt       *time.Time `json:"due_at"`
	RemindAt    *time.Time `json:"remind_at"`
}

func (h *Handler) CreateTask(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	t, err := h.TaskSvc.Create(c.Request.Context(), uid, req.Title, req.Description)
	if err != nil {
		if err == task.ErrEmptyTitle {
			common.Fail(c, http.StatusBadRequest, 10005, "title is required")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create task")
		return
	}

	// scheduling metadata is a follow-up update so Create stays minimal for
	// the tool path
	if req.Priority != "" || req.Tags != "" || req.DueAt != nil || req.RemindAt != nil {
		patch := task.Patch{DueAt: req.DueAt, RemindAt: req.RemindAt}
		if req.Priority != "" {
			patch.Priority = &req.Priority
		}
		if req.Tags != "" {
			patch.Tags = &req.Tags
		}
		if updated, err := h.TaskSvc.Update(c.Request.Context(), uid, t.ID, patch); err == nil {
			t = updated
		}
	}

	common.OK(c, gin.H{"task": t})
}

func (h *Handler) ListTasks(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	status := c.DefaultQuery("status", task.StatusAll)
	tasks, err := h.TaskSvc.List(c.Request.Context(), uid, status)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list tasks")
		return
	}

	common.OK(c, gin.H{"tasks": tasks, "total": len(tasks)})
}

func (h *Handler) GetTask(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid task id")
		return
	}

	t, err := h.TaskSvc.Get(c.Request.Context(), uid, taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40403, "task not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"task": t})
}

type updateTaskReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority"`
	Tags        *string    `json:"tags"`
	DueAt       *time.Time `json:"due_at"`
	RemindAt    *time.Time `json:"remind_at"`
}

func (h *Handler) UpdateTask(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid task id")
		return
	}

	var req updateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	t, err := h.TaskSvc.Update(c.Request.Context(), uid, taskID, task.Patch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Tags:        req.Tags,
		DueAt:       req.DueAt,
		RemindAt:    req.RemindAt,
	})
	if err != nil {
		switch err {
		case gorm.ErrRecordNotFound:
			common.Fail(c, http.StatusNotFound, 40403, "task not found")
		case task.ErrEmptyTitle:
			common.Fail(c, http.StatusBadRequest, 10005, "title is required")
		default:
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
		return
	}
	common.OK(c, gin.H{"task": t})
}

func (h *Handler) ToggleTaskComplete(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid task id")
		return
	}

	t, err := h.TaskSvc.ToggleCompleted(c.Request.Context(), uid, taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40403, "task not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"task": t})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid task id")
		return
	}

	if err := h.TaskSvc.Delete(c.Request.Context(), uid, taskID); err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40403, "task not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

func (h *Handler) TaskStats(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	stats, err := h.TaskSvc.Stats(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"stats": stats})
}
