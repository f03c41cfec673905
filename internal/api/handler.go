// Package api exposes sessions, scans, rosters, exports and QR generation
// over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qrattend/internal/attendance"
	"qrattend/internal/cloudinary"
	"qrattend/internal/qrcode"
	"qrattend/internal/queue"
)

// Uploader stores a generated QR image and returns where it can be shared.
type Uploader interface {
	UploadPNG(ctx context.Context, data []byte, publicID string) (*cloudinary.UploadResult, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Handler serves the HTTP API.
type Handler struct {
	svc    *attendance.Service
	gen    *qrcode.Generator
	q      queue.Queue
	upload Uploader
	checks map[string]HealthCheck
	now    func() time.Time
	log    *logrus.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithUploader enables sharing of generated codes.
func WithUploader(u Uploader) Option { return func(h *Handler) { h.upload = u } }

// WithHealthCheck adds a named dependency to /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) { h.checks[name] = check }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option { return func(h *Handler) { h.log = l } }

// New creates a handler. q may be nil, in which case scan events cannot be
// forwarded to the worker.
func New(svc *attendance.Service, gen *qrcode.Generator, q queue.Queue, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		gen:    gen,
		q:      q,
		checks: map[string]HealthCheck{},
		now:    time.Now,
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register mounts all routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)

	v1 := r.Group("/v1")
	v1.POST("/sessions", h.createSession)
	v1.GET("/sessions/latest", h.latestSession)
	v1.GET("/sessions/:id/records", h.listRecords)
	v1.GET("/sessions/:id/export", h.exportRecords)
	v1.POST("/scans", h.scan)
	v1.POST("/scan-events", h.publishScan)
	v1.POST("/qrcodes", h.generateCode)
	v1.POST("/qrcodes/batch", h.generateBatch)
}

func (h *Handler) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.checks {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// statusFor maps a scan pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, attendance.ErrInvalidPayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, attendance.ErrIncompleteSession):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrNoActiveSession), errors.Is(err, attendance.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrPersistence):
		return http.StatusBadGateway
	case errors.Is(err, attendance.ErrCaptureUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error, fields logrus.Fields) {
	status := statusFor(err)
	entry := h.log.WithFields(fields).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error(), "notice": attendance.NoticeFor(err)})
}
