package syncjob

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ms-planner/planner-backend/internal/harvest"
)

type Handler struct {
	svc *Service
}

func Register(rg *gin.RouterGroup, svc *Service) {
	h := &Handler{svc: svc}

	rg.POST("", h.run)
}

func (h *Handler) run(c *gin.Context) {
	full := c.Query("full") == "true"

	summary, err := h.svc.Run(c.Request.Context(), full)
	if err != nil {
		if errors.Is(err, ErrInProgress) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
			return
		}
		var apiErr *harvest.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "summary": summary})
}
