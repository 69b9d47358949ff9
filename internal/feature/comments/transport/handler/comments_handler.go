// Package handler provides the HTTP handlers for the comments feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"votp_backend/internal/feature/comments/domain/entity"
	"votp_backend/internal/feature/comments/transport/http/dto"
	"votp_backend/internal/feature/comments/usecase"
	jwtauth "votp_backend/internal/platform/jwt"
)

// CommentsUsecase defines the comment operations the handler depends on.
type CommentsUsecase interface {
	Create(ctx context.Context, accountID uuid.UUID, rawURL, content string, parentID *uuid.UUID) (*entity.Comment, error)
	ListForURL(ctx context.Context, rawURL string) (*usecase.Thread, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]entity.Comment, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.Comment, error)
	Update(ctx context.Context, accountID, id uuid.UUID, content string) (*entity.Comment, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

// CommentsHandler handles HTTP requests for threaded URL comments.
type CommentsHandler struct {
	comments CommentsUsecase
}

// NewCommentsHandler creates a new CommentsHandler.
func NewCommentsHandler(comments CommentsUsecase) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// List handles GET /comments?url=...
// Public: anyone can read the thread for a page.
func (h *CommentsHandler) List(c *gin.Context) {
	var req dto.ListCommentsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	thread, err := h.comments.ListForURL(c.Request.Context(), req.URL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewThreadResponse(thread))
}

// ListReplies handles GET /comments/:id/replies.
func (h *CommentsHandler) ListReplies(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	replies, err := h.comments.ListReplies(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentListResponse{Comments: dto.NewCommentListResponse(replies)})
}

// Create handles POST /comments for the authenticated account.
func (h *CommentsHandler) Create(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		parsed, err := uuid.Parse(*req.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "parent_id is not a valid uuid"})
			return
		}
		parentID = &parsed
	}

	comment, err := h.comments.Create(c.Request.Context(), accountID, req.URL, req.Content, parentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCommentResponse(comment))
}

// Update handles PUT /comments/:id for the authenticated owner.
func (h *CommentsHandler) Update(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), accountID, id, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCommentResponse(comment))
}

// Delete handles DELETE /comments/:id for the authenticated owner. Replies
// under the comment are removed with it.
func (h *CommentsHandler) Delete(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), accountID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "comment deleted"})
}

// ListMine handles GET /me/comments?limit=...
func (h *CommentsHandler) ListMine(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}

	var req dto.ListMyCommentsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	comments, err := h.comments.ListByAccount(c.Request.Context(), accountID, req.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentListResponse{Comments: dto.NewCommentListResponse(comments)})
}

// fail maps usecase errors to HTTP statuses.
func (h *CommentsHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyContent),
		errors.Is(err, usecase.ErrContentTooLong),
		errors.Is(err, usecase.ErrParentMismatch):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrCommentNotFound),
		errors.Is(err, usecase.ErrParentNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotOwner):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("comment request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

// accountID extracts the authenticated account id set by the JWT middleware.
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

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "id is not a valid uuid"})
		return uuid.Nil, false
	}
	return id, true
}
