package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/disha-ai/alert-sync/internal/bus"
	"github.com/disha-ai/alert-sync/internal/models"
	"github.com/disha-ai/alert-sync/internal/store"
	"github.com/disha-ai/alert-sync/internal/translate"
)

type Handler struct {
	store *store.Store
	bus   *bus.Bus
}

func NewHandler(s *store.Store, b *bus.Bus) *Handler {
	return &Handler{
		store: s,
		bus:   b,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/alerts", h.listAlerts)
	r.POST("/api/alerts", h.createAlert)
	r.PATCH("/api/alerts/:id", h.updateAlert)
	r.DELETE("/api/alerts/:id", h.deleteAlert)
	r.POST("/api/alerts/refresh", h.refreshAlerts)
	r.GET("/api/alerts/stream", h.streamAlerts)
	r.GET("/health", h.health)
}

func (h *Handler) listAlerts(c *gin.Context) {
	alerts := h.store.List()

	if lang := c.Query("lang"); lang != "" {
		tag := translate.Match(lang)
		for i := range alerts {
			alerts[i] = translate.Alert(tag, alerts[i])
		}
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) createAlert(c *gin.Context) {
	var in models.AlertInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, store.ErrCreateInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateAlert(c *gin.Context) {
	var p models.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("id")
	if !h.store.Update(c.Request.Context(), id, p) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) deleteAlert(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Delete(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) refreshAlerts(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to refresh alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(h.store.List())})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
