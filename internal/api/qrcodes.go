package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrattend/internal/qrcode"
)

type codeResponse struct {
	qrcode.Code
	ShareURL string `json:"share_url,omitempty"`
}

func (h *Handler) generateCode(c *gin.Context) {
	var req struct {
		StudentID   string `json:"student_id"`
		StudentName string `json:"student_name"`
		Share       bool   `json:"share"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Share && h.upload == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image sharing not configured"})
		return
	}

	code, err := h.gen.Student(req.StudentID, req.StudentName)
	if errors.Is(err, qrcode.ErrMissingStudent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("qr encode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr encode failed"})
		return
	}

	resp := codeResponse{Code: code}
	if req.Share {
		res, err := h.upload.UploadPNG(c.Request.Context(), code.PNG, code.StudentID)
		if err != nil {
			h.log.WithError(err).WithField("student_id", code.StudentID).Error("qr upload failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}
		resp.ShareURL = res.SecureURL
	}
	c.JSON(http.StatusCreated, resp)
}

// generateBatch renders the posted roster, or the sample roster when the
// body is empty.
func (h *Handler) generateBatch(c *gin.Context) {
	var req struct {
		Students []qrcode.Student `json:"students"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roster := req.Students
	if len(roster) == 0 {
		roster = qrcode.SampleRoster
	}

	codes, err := h.gen.Batch(roster)
	if errors.Is(err, qrcode.ErrMissingStudent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("qr batch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr encode failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"codes": codes})
}
