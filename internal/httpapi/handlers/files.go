package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suPer8Hu/taskflow/internal/common"
	"github.com/suPer8Hu/taskflow/internal/file"
	"gorm.io/gorm"
)

func (h *Handler) UploadFile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "file field is required")
		return
	}
	if fh.Size > h.Cfg.MaxUploadSize {
		common.Fail(c, http.StatusBadRequest, 10007, "file too large")
		return
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "storage unavailable")
		return
	}

	storedName := uuid.NewString() + filepath.Ext(fh.Filename)
	dst := filepath.Join(h.Cfg.UploadDir, storedName)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to store file")
		return
	}

	// extraction failure is not fatal; the upload stands either way
	text, err := file.ExtractText(dst, fh.Filename)
	if err != nil {
		log.Printf("text extraction failed file=%s err=%v", fh.Filename, err)
	}

	rec := file.File{
		UserID:        uid,
		OriginalName:  fh.Filename,
		StoredName:    storedName,
		ContentType:   fh.Header.Get("Content-Type"),
		Size:          fh.Size,
		ExtractedText: text,
	}
	if err := h.DB.Create(&rec).Error; err != nil {
		_ = os.Remove(dst)
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to record file")
		return
	}

	common.OK(c, gin.H{
		"file":           rec,
		"text_extracted": text != "",
	})
}

func (h *Handler) ListFiles(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var files []file.File
	if err := h.DB.Where("user_id = ?", uid).Order("id DESC").Find(&files).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list files")
		return
	}
	common.OK(c, gin.H{"files": files})
}

func (h *Handler) GetFileText(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid file id")
		return
	}

	var rec file.File
	if err := h.DB.Where("id = ? AND user_id = ?", fileID, uid).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40405, "file not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{
		"id":            rec.ID,
		"original_name": rec.OriginalName,
		"text":          rec.ExtractedText,
	})
}

func (h *Handler) DeleteFile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid file id")
		return
	}

	var rec file.File
	if err := h.DB.Where("id = ? AND user_id = ?", fileID, uid).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40405, "file not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	if err := h.DB.Delete(&rec).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if err := os.Remove(filepath.Join(h.Cfg.UploadDir, rec.StoredName)); err != nil && !os.IsNotExist(err) {
		log.Printf("remove stored file failed name=%s err=%v", rec.StoredName, err)
	}

	common.OK(c, gin.H{"deleted": true})
}
