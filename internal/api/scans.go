package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qrattend/internal/attendance"
	"qrattend/internal/metrics"
	"qrattend/internal/queue"
	"qrattend/internal/scan"
)

type scanRequest struct {
	sessionRequest
	Payload string `json:"payload"`
}

// scan runs one decoded payload through the full pipeline. The response
// always carries the session id the scan ran against so the client can send
// it with its next scan.
func (h *Handler) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := h.now()
	cand := scan.Parse(req.Payload)
	// a parsed scan is persisted even if the client goes away
	res, err := h.svc.Record(context.WithoutCancel(c.Request.Context()), cand, req.meta(), req.SessionID, start)
	metrics.ObserveScan(attendance.Outcome(err), h.now().Sub(start))

	fields := logrus.Fields{
		"outcome":    attendance.Outcome(err),
		"student_id": cand.StudentID,
		"session_id": res.SessionID,
		"payload":    cand.Kind.String(),
	}
	if err != nil {
		status := statusFor(err)
		h.log.WithFields(fields).WithError(err).Info("scan rejected")
		c.JSON(status, gin.H{
			"error":      err.Error(),
			"notice":     attendance.NoticeFor(err),
			"session_id": res.SessionID,
		})
		return
	}

	h.log.WithFields(fields).WithField("status", res.Decision.Status).Info("scan accepted")
	c.JSON(http.StatusCreated, gin.H{
		"notice":     attendance.Accepted(res.Decision.Record),
		"status":     res.Decision.Status,
		"record":     res.Decision.Record,
		"session_id": res.SessionID,
	})
}

// publishScan forwards a decoded payload to the scan worker.
func (h *Handler) publishScan(c *gin.Context) {
	if h.q == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan queue not configured"})
		return
	}
	var req struct {
		Payload string `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := queue.Scan(req.Payload, h.now())
	if err := h.q.Publish(c.Request.Context(), msg); err != nil {
		h.log.WithError(err).Error("queue publish failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan queue unavailable"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "at": msg.At})
}
