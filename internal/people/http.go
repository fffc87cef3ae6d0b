package people

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo     *Repo
	tenantID string
}

func Register(rg *gin.RouterGroup, repo *Repo, tenantID string) {
	h := &Handler{repo: repo, tenantID: tenantID}

	rg.GET("", h.list)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), h.tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "people": items})
}
