package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/shared/server/middleware"
	"resumelens-backend/internal/shared/server/respond"
)

// Handler wires the admin analytics endpoint.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches admin routes, guarded by the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/admin")
	grp.Use(middleware.RequireAdmin())
	grp.GET("/analytics", h.analytics)
}

func (h *Handler) analytics(c *gin.Context) {
	out, err := h.Repo.Analytics(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to compute analytics", nil)
		return
	}
	respond.OK(c, out)
}
