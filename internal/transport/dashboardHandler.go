package transport

import (
	"net/http"

	"github.com/akulinichev/reminderhub/internal/hub"
	"github.com/akulinichev/reminderhub/internal/scheduler"
	"github.com/akulinichev/reminderhub/pkg/queue"

	"github.com/gin-gonic/gin"
)

// DashboardHandler exposes scheduler and connection state to operators.
// Every route here sits behind the dashboard gate.
type DashboardHandler struct {
	scheduler *scheduler.Scheduler
	bus       *hub.Hub
	dlq       queue.DLQHandler
}

func NewDashboardHandler(s *scheduler.Scheduler, bus *hub.Hub, dlq queue.DLQHandler) *DashboardHandler {
	return &DashboardHandler{scheduler: s, bus: bus, dlq: dlq}
}

func (h *DashboardHandler) GetJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.scheduler.Jobs()})
}

func (h *DashboardHandler) TriggerJob(c *gin.Context) {
	jobKey := c.Param("key")
	if err := h.scheduler.TriggerNow(c.Request.Context(), jobKey); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job_key": jobKey})
}

func (h *DashboardHandler) PauseJob(c *gin.Context) {
	jobKey := c.Param("key")
	if err := h.scheduler.Pause(jobKey); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job_key": jobKey, "paused": true})
}

func (h *DashboardHandler) ResumeJob(c *gin.Context) {
	jobKey := c.Param("key")
	if err := h.scheduler.Resume(jobKey); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job_key": jobKey, "paused": false})
}

func (h *DashboardHandler) GetConnections(c *gin.Context) {
	connections := h.bus.Connections()
	c.JSON(http.StatusOK, gin.H{
		"connections": connections,
		"count":       len(connections),
	})
}

func (h *DashboardHandler) GetDLQStats(c *gin.Context) {
	if h.dlq == nil {
		c.JSON(http.StatusOK, gin.H{"dlq": nil})
		return
	}

	stats, err := h.dlq.GetDLQStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dlq": stats})
}
