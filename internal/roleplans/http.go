package roleplans

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ProjectChecker guards writes against projects outside the tenant.
type ProjectChecker interface {
	ExistsInTenant(ctx context.Context, tenantID, projectID string) (bool, error)
}

// Invalidator drops cached calendar views after a write. A nil
// invalidator is a no-op.
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID string)
}

type Handler struct {
	repo     *Repo
	projects ProjectChecker
	cache    Invalidator
	tenantID string
}

func Register(rg *gin.RouterGroup, repo *Repo, projects ProjectChecker, cache Invalidator, tenantID string) {
	h := &Handler{repo: repo, projects: projects, cache: cache, tenantID: tenantID}

	rg.POST("", h.create)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

// RegisterProjectSubroutes exposes the per-project role list under the
// projects group.
func RegisterProjectSubroutes(projectsGroup *gin.RouterGroup, repo *Repo, tenantID string) {
	h := &Handler{repo: repo, tenantID: tenantID}

	projectsGroup.GET("/:id/roleplans", h.listByProject)
}

type createReq struct {
	ProjectID         string  `json:"project_id"`
	RoleName          string  `json:"role_name"`
	AllocationPct     *int    `json:"allocation_pct"`
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	Billable          bool    `json:"billable"`
	ExpectedRateCents *int64  `json:"expected_rate_cents"`
	Notes             *string `json:"notes"`
	PersonID          *string `json:"person_id"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.ProjectID == "" || strings.TrimSpace(req.RoleName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "project_id and role_name are required"})
		return
	}

	ctx := c.Request.Context()
	ok, err := h.projects.ExistsInTenant(ctx, h.tenantID, req.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found in tenant"})
		return
	}

	rp := &RolePlan{
		ProjectID:         req.ProjectID,
		RoleName:          strings.TrimSpace(req.RoleName),
		AllocationPct:     100,
		Billable:          req.Billable,
		ExpectedRateCents: req.ExpectedRateCents,
		Notes:             req.Notes,
	}
	if req.AllocationPct != nil {
		rp.AllocationPct = *req.AllocationPct
	}
	if req.PersonID != nil && *req.PersonID != "" {
		rp.PersonID = req.PersonID
	}

	if rp.StartDate, err = parseDate("start_date", req.StartDate); err == nil {
		rp.EndDate, err = parseDate("end_date", req.EndDate)
	}
	if err == nil {
		err = rp.Validate()
	}
	if err != nil {
		respondValidation(c, err)
		return
	}

	created, err := h.repo.Create(ctx, rp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	h.invalidate(ctx)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "role_plan": created})
}

// Every field of a patch is independently optional; an empty string on
// a clearable field (dates, person, notes) resets it to null.
type updateReq struct {
	RoleName          *string `json:"role_name"`
	AllocationPct     *int    `json:"allocation_pct"`
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	Billable          *bool   `json:"billable"`
	ExpectedRateCents *int64  `json:"expected_rate_cents"`
	Notes             *string `json:"notes"`
	PersonID          *string `json:"person_id"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ctx := c.Request.Context()
	rp, err := h.repo.GetInTenant(ctx, h.tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "role not found in tenant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if req.RoleName != nil {
		rp.RoleName = strings.TrimSpace(*req.RoleName)
	}
	if req.AllocationPct != nil {
		rp.AllocationPct = *req.AllocationPct
	}
	if req.Billable != nil {
		rp.Billable = *req.Billable
	}
	if req.ExpectedRateCents != nil {
		rp.ExpectedRateCents = req.ExpectedRateCents
	}
	if req.Notes != nil {
		if *req.Notes == "" {
			rp.Notes = nil
		} else {
			rp.Notes = req.Notes
		}
	}
	if req.PersonID != nil {
		if *req.PersonID == "" {
			rp.PersonID = nil
		} else {
			rp.PersonID = req.PersonID
		}
	}
	if req.StartDate != nil {
		if rp.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
			respondValidation(c, err)
			return
		}
	}
	if req.EndDate != nil {
		if rp.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
			respondValidation(c, err)
			return
		}
	}

	if err := rp.Validate(); err != nil {
		respondValidation(c, err)
		return
	}

	updated, err := h.repo.Update(ctx, rp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	h.invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"ok": true, "role_plan": updated})
}

func (h *Handler) delete(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.repo.GetInTenant(ctx, h.tenantID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "role not found in tenant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	ok, err := h.repo.Delete(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "role not found in tenant"})
		return
	}

	h.invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listByProject(c *gin.Context) {
	items, err := h.repo.ListByProject(c.Request.Context(), h.tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "role_plans": items})
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.Invalidate(ctx, h.tenantID)
	}
}

func respondValidation(c *gin.Context, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": ve.Error(), "field": ve.Field})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
}

func parseDate(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	t = t.UTC()
	return &t, nil
}
