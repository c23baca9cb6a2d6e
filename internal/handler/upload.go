package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"github.com/it-helpdesk/helpdesk-service/internal/service"
)

type UploadHandler struct {
	svc      service.AttachmentServicer
	maxBytes int64
}

func NewUploadHandler(svc service.AttachmentServicer, maxUploadMB int64) *UploadHandler {
	return &UploadHandler{svc: svc, maxBytes: maxUploadMB << 20}
}

// Upload принимает multipart-файл и возвращает непрозрачный токен вложения.
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	if int64(len(data)) > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	a := &model.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := h.svc.Save(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":        a.Token,
		"filename":     a.Filename,
		"content_type": a.ContentType,
		"size":         a.Size,
	})
}

func (h *UploadHandler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, errs.ErrAttachmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, a.Data)
}
