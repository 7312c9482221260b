package users

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/shared/server/middleware"
	"resumelens-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the users service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches account routes to the router group. The auth
// endpoints are public; the profile endpoints require a token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.GET("/users/me", h.profile)
	rg.POST("/users/me", h.updateProfile)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if details := validateRegistration(req); len(details) > 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "validation failed", details)
		return
	}

	user, limit, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited):
			respond.Error(c, http.StatusTooManyRequests, respond.CodeRateLimitExceeded,
				"Too many registration attempts. Please try again later.",
				gin.H{"retryAfter": int(limit.RetryAfter.Seconds())})
		case errors.Is(err, ErrExists):
			respond.Error(c, http.StatusBadRequest, respond.CodeUserExists, "User already exists with this email", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to register user", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "email and password are required", nil)
		return
	}

	user, token, limit, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited):
			respond.Error(c, http.StatusTooManyRequests, respond.CodeRateLimitExceeded,
				"Too many login attempts. Please try again later.",
				gin.H{"retryAfter": int(limit.RetryAfter.Seconds())})
		case errors.Is(err, ErrBadCredentials):
			respond.Error(c, http.StatusUnauthorized, respond.CodeBadCredentials, "invalid email or password", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to log in", nil)
		}
		return
	}

	respond.OK(c, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) profile(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	user, err := h.Svc.Profile(c.Request.Context(), userEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch profile", nil)
		return
	}
	respond.OK(c, user)
}

type updateProfileRequest struct {
	Name              string `json:"name"`
	PreferredRole     string `json:"preferredRole"`
	PreferredLocation string `json:"preferredLocation"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	userEmail := middleware.UserEmailFromContext(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "name is required", nil)
		return
	}

	if err := h.Svc.UpdateProfile(c.Request.Context(), userEmail, req.Name, req.PreferredRole, req.PreferredLocation); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to update profile", nil)
		return
	}
	respond.OK(c, gin.H{"message": "User updated"})
}

func validateRegistration(req registerRequest) []map[string]string {
	var details []map[string]string
	if len(strings.TrimSpace(req.Name)) < 2 {
		details = append(details, map[string]string{"field": "name", "issue": "must be at least 2 characters"})
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		details = append(details, map[string]string{"field": "email", "issue": "must be a valid email address"})
	}
	if len(req.Password) < 8 {
		details = append(details, map[string]string{"field": "password", "issue": "must be at least 8 characters"})
	}
	return details
}
