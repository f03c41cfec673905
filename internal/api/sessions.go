package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qrattend/internal/attendance"
	"qrattend/internal/export"
	"qrattend/internal/model"
)

type sessionRequest struct {
	SessionID  string `json:"session_id"`
	College    string `json:"college"`
	Instructor string `json:"instructor"`
	Section    string `json:"section"`
	Course     string `json:"course"`
}

func (r sessionRequest) meta() model.SessionMeta {
	return model.SessionMeta{College: r.College, Instructor: r.Instructor, Section: r.Section, Course: r.Course}
}

func (h *Handler) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	id, err := h.svc.EnsureSession(ctx, req.meta(), req.SessionID, h.now())
	if err != nil {
		h.fail(c, err, logrus.Fields{"op": "create_session"})
		return
	}
	sess, err := h.svc.Session(ctx, id)
	if err != nil {
		h.fail(c, err, logrus.Fields{"op": "get_session", "session_id": id})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	status := http.StatusCreated
	if req.SessionID != "" {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"session_id": sess.ID, "session": sess})
}

func (h *Handler) latestSession(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = h.svc.Today(h.now())
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	sess, err := h.svc.LatestSession(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err, logrus.Fields{"op": "latest_session", "date": date})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session for " + date})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// session loads the :id session, writing 404 when it does not exist.
func (h *Handler) session(c *gin.Context) (*model.Session, bool) {
	id := c.Param("id")
	sess, err := h.svc.Session(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, logrus.Fields{"op": "get_session", "session_id": id})
		return nil, false
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func (h *Handler) listRecords(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	records, err := h.svc.Records(c.Request.Context(), sess.ID)
	if err != nil {
		h.fail(c, err, logrus.Fields{"op": "list_records", "session_id": sess.ID})
		return
	}
	matched := attendance.Filter(records, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"session": sess,
		"records": matched,
		"summary": attendance.Summarize(records),
	})
}

func (h *Handler) exportRecords(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	records, err := h.svc.Records(c.Request.Context(), sess.ID)
	if err != nil {
		h.fail(c, err, logrus.Fields{"op": "export", "session_id": sess.ID})
		return
	}
	name := export.Filename(h.now().In(h.svc.Location()))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, export.ContentType, []byte(export.CSV(records)))
}
