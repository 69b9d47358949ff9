// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"votp_backend/internal/feature/auth/domain/entity"
	"votp_backend/internal/feature/auth/transport/http/dto"
	"votp_backend/internal/feature/auth/usecase"
	jwtauth "votp_backend/internal/platform/jwt"
)

// AuthUsecase defines the auth operations the handler depends on. Following
// Go convention, the interface is defined by the consumer (handler), not the
// provider (usecase).
type AuthUsecase interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	RequestVerificationCode(ctx context.Context, email string) error
	CompleteSignup(ctx context.Context, email, code, name, password string) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	CurrentUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, bio *string) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// AuthHandler handles HTTP requests for signup, login and profile management.
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// CheckEmail handles GET /auth/email-check?email=...
// Returns whether the email already belongs to an account.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req dto.EmailCheckReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	exists, err := h.auth.CheckEmailExists(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EmailCheckResponse{Exists: exists})
}

// RequestCode handles POST /auth/request-code.
// Issues and mails a verification code for a not-yet-registered email.
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req dto.CodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.auth.RequestVerificationCode(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "verification code sent"})
}

// Signup handles POST /auth/signup.
// Consumes the verification code, creates the account and returns a session
// token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.auth.CompleteSignup(c.Request.Context(), req.Email, req.Code, req.Name, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{Token: res.Token, User: dto.NewUserResponse(res.User)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Do not reveal which part of the credentials was wrong.
		slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Token: res.Token, User: dto.NewUserResponse(res.User)})
}

// Me handles GET /me for the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateProfile handles PATCH /me. Only the provided fields change.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req dto.ProfileUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), id, req.Name, req.Phone, req.Bio)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteAccount handles DELETE /me. Removes the account and all its comments.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "account deleted"})
}

// fail maps usecase errors to HTTP statuses.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrCodeMismatch),
		errors.Is(err, usecase.ErrCodeExpired),
		errors.Is(err, usecase.ErrWeakPassword),
		errors.Is(err, usecase.ErrEmptyName):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotVerified):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("auth request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

// accountID extracts the authenticated account id set by the JWT middleware.
// Writes a 401 and returns ok=false when it is missing or malformed.
func accountID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := jwtauth.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return uuid.Nil, false
	}
	return id, true
}
