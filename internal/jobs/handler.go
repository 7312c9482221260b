package jobs

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/shared/server/middleware"
	"resumelens-backend/internal/shared/server/respond"
)

// SkillSource yields the skills to base recommended-job searches on,
// typically the caller's newest resume.
type SkillSource func(ctx context.Context, userEmail string) ([]string, error)

// Handler wires HTTP handlers to the jobs service.
type Handler struct {
	Svc    *Service
	Skills SkillSource
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, skills SkillSource) *Handler {
	return &Handler{Svc: svc, Skills: skills}
}

// RegisterRoutes attaches job search routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/search", h.search)
	rg.GET("/jobs/recommended", h.recommended)
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "query is required", nil)
		return
	}
	location := c.Query("location")
	remote := c.Query("remote") == "true"
	page := 1
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	found, err := h.Svc.Search(c.Request.Context(), query, location, remote, page)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, respond.CodeInternal, "failed to fetch jobs", nil)
		return
	}
	respond.OK(c, gin.H{"jobs": found})
}

// recommended searches postings matching the caller's newest resume skills.
// Users without an analyzed resume get an empty list, not an error.
func (h *Handler) recommended(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	skills, err := h.Skills(c.Request.Context(), userEmail)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to load resume skills", nil)
		return
	}
	if len(skills) == 0 {
		respond.OK(c, gin.H{"jobs": []Job{}})
		return
	}

	found, err := h.Svc.SearchBySkills(c.Request.Context(), skills)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, respond.CodeInternal, "failed to fetch jobs", nil)
		return
	}
	respond.OK(c, gin.H{"jobs": found})
}
