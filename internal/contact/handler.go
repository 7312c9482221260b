// Package contact exposes the public contact form endpoint.
package contact

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/ratelimit"
	"resumelens-backend/internal/shared/server/respond"
	"resumelens-backend/internal/shared/telemetry"

	mailer "resumelens-backend/internal/mail"
)

// Handler validates contact submissions and forwards them by email.
type Handler struct {
	Mailer    mailer.Mailer
	Limiter   *ratelimit.Limiter
	From      string
	Recipient string
}

// NewHandler constructs a Handler.
func NewHandler(m mailer.Mailer, limiter *ratelimit.Limiter, from, recipient string) *Handler {
	return &Handler{Mailer: m, Limiter: limiter, From: from, Recipient: recipient}
}

// RegisterRoutes attaches the contact route to the router group. The route
// is public; abuse is bounded by the per-IP limiter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contact", h.submit)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if details := validate(req); len(details) > 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "validation failed", details)
		return
	}

	limit := h.Limiter.Check(c.Request.Context(), "contact", c.ClientIP(), "")
	if limit.Limited {
		respond.Error(c, http.StatusTooManyRequests, respond.CodeRateLimitExceeded,
			"Too many messages. Please try again later.",
			gin.H{"retryAfter": int(limit.RetryAfter.Seconds())})
		return
	}

	err := h.Mailer.Send(c.Request.Context(), mailer.Message{
		From:    h.From,
		ReplyTo: req.Email,
		To:      h.Recipient,
		Subject: "Contact Form: " + req.Name,
		Body:    req.Message,
	})
	if err != nil {
		telemetry.Error("contact mail send failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to send message", nil)
		return
	}

	respond.OK(c, gin.H{"success": true})
}

func validate(req contactRequest) []map[string]string {
	var details []map[string]string
	if len(strings.TrimSpace(req.Name)) < 2 {
		details = append(details, map[string]string{"field": "name", "issue": "must be at least 2 characters"})
	} else if strings.ContainsAny(req.Name, "\r\n") {
		// The name is interpolated into the mail subject header.
		details = append(details, map[string]string{"field": "name", "issue": "must not contain line breaks"})
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		details = append(details, map[string]string{"field": "email", "issue": "must be a valid email address"})
	}
	if len(strings.TrimSpace(req.Message)) < 10 {
		details = append(details, map[string]string{"field": "message", "issue": "must be at least 10 characters"})
	}
	return details
}
