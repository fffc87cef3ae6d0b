package calendar

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ms-planner/planner-backend/internal/utilization"
)

type Handler struct {
	svc      *Service
	cache    *Cache
	tenantID string
}

// Register mounts the calendar view route. A nil cache disables
// caching.
func Register(rg *gin.RouterGroup, svc *Service, cache *Cache, tenantID string) {
	h := &Handler{svc: svc, cache: cache, tenantID: tenantID}

	rg.GET("", h.view)
}

func (h *Handler) view(c *gin.Context) {
	zoom := utilization.Month
	if c.Query("zoom") == string(utilization.Week) {
		zoom = utilization.Week
	}

	filters := Filters{
		ClientID:  c.Query("client"),
		ProjectID: c.Query("project"),
		PersonID:  c.Query("person"),
		Billable:  c.Query("billable"),
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("zoom=%s&client=%s&project=%s&person=%s&billable=%s",
		zoom, filters.ClientID, filters.ProjectID, filters.PersonID, filters.Billable)

	if h.cache != nil {
		if payload, ok := h.cache.Get(ctx, h.tenantID, key); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	view, err := h.svc.View(ctx, h.tenantID, zoom, filters, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	payload, err := json.Marshal(gin.H{"ok": true, "view": view})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx, h.tenantID, key, payload)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
