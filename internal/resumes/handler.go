package resumes

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/pdfx"
	"resumelens-backend/internal/shared/server/middleware"
	"resumelens-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the resumes service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.POST("/resumes/:id/reanalyze", h.reanalyze)
	rg.DELETE("/resumes/:id", h.remove)
	rg.GET("/dashboard", h.dashboard)
}

func (h *Handler) upload(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	file, err := c.FormFile("resume")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeFileMissing, "resume file is required", nil)
		return
	}
	// Validation rejects before the rate-limit counter moves, so a bad file
	// never consumes the user's upload budget.
	if !isPDF(file.Filename, file.Header.Get("Content-Type")) {
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidFileType, "only PDF files are allowed", nil)
		return
	}
	if file.Size == 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeEmptyFile, "uploaded file is empty", nil)
		return
	}
	if file.Size > MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, respond.CodeFileTooLarge, "file exceeds the 5 MB limit", nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to read upload", nil)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to read upload", nil)
		return
	}
	if len(data) > MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, respond.CodeFileTooLarge, "file exceeds the 5 MB limit", nil)
		return
	}

	rec, limit, err := h.Svc.Upload(c.Request.Context(), userEmail, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited):
			respond.Error(c, http.StatusTooManyRequests, respond.CodeRateLimitExceeded,
				"Upload limit reached. Try again in "+retryMinutes(limit.RetryAfter.Seconds())+" minute(s).",
				gin.H{
					"retryAfter": int(limit.RetryAfter.Seconds()),
					"remaining":  limit.Remaining,
				})
		case errors.Is(err, pdfx.ErrEmptyContent):
			respond.Error(c, http.StatusBadRequest, respond.CodeNoTextExtracted, "no text could be extracted from the PDF", nil)
		case errors.Is(err, pdfx.ErrParse):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "the PDF could not be read", nil)
		case errors.Is(err, pdfx.ErrTimeout):
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "text extraction timed out", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to process resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"message":   "Resume parsed and saved",
		"resume":    rec.Summary(),
		"remaining": limit.Remaining,
	})
}

func (h *Handler) list(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := h.Svc.List(c.Request.Context(), userEmail, page, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch resume history", nil)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) get(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	rec, err := h.Svc.Get(c.Request.Context(), userEmail, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch resume", nil)
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) reanalyze(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	rec, err := h.Svc.Reanalyze(c.Request.Context(), userEmail, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to re-analyze resume", nil)
		return
	}
	respond.OK(c, gin.H{
		"message": "Resume re-analyzed and updated",
		"resume":  rec.Summary(),
	})
}

func (h *Handler) remove(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userEmail, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to delete resume", nil)
		return
	}
	respond.OK(c, gin.H{"message": "Resume deleted successfully"})
}

func (h *Handler) dashboard(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	dash, err := h.Svc.Dashboard(c.Request.Context(), userEmail)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to build dashboard", nil)
		return
	}
	respond.OK(c, dash)
}

func isPDF(filename, contentType string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func retryMinutes(seconds float64) string {
	return strconv.Itoa(int(math.Ceil(seconds / 60)))
}
