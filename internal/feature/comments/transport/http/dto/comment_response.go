package dto

import (
	"time"

	"votp_backend/internal/feature/comments/domain/entity"
	"votp_backend/internal/feature/comments/usecase"
)

// ErrorResponse carries a single error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// CommentResponse is the public view of one comment.
type CommentResponse struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	CanonicalURL string    `json:"canonical_url"`
	AccountID    string    `json:"account_id"`
	ParentID     *string   `json:"parent_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ThreadResponse groups all comments under a canonical URL.
type ThreadResponse struct {
	CanonicalURL string            `json:"canonical_url"`
	Comments     []CommentResponse `json:"comments"`
}

// CommentListResponse wraps a flat list of comments.
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
}

// NewCommentResponse maps a comment entity to its public view.
func NewCommentResponse(c *entity.Comment) CommentResponse {
	resp := CommentResponse{
		ID:           c.ID.String(),
		Content:      c.Content,
		CanonicalURL: c.CanonicalURL,
		AccountID:    c.AccountID.String(),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.ParentID != nil {
		parent := c.ParentID.String()
		resp.ParentID = &parent
	}
	return resp
}

// NewCommentListResponse maps a slice of comment entities.
func NewCommentListResponse(comments []entity.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentResponse(&comments[i]))
	}
	return out
}

// NewThreadResponse maps a usecase thread to its public view.
func NewThreadResponse(t *usecase.Thread) ThreadResponse {
	return ThreadResponse{
		CanonicalURL: t.CanonicalURL,
		Comments:     NewCommentListResponse(t.Comments),
	}
}
