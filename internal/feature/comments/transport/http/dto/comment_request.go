// Package dto defines data transfer objects for the comments feature's HTTP
// transport layer.
package dto

// CreateCommentReq represents the request body for POST /comments. ParentID
// threads the comment under an existing one on the same page.
type CreateCommentReq struct {
	URL      string  `json:"url" binding:"required"`
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id,omitempty" binding:"omitempty,uuid"`
}

// UpdateCommentReq represents the request body for PUT /comments/:id.
type UpdateCommentReq struct {
	Content string `json:"content" binding:"required"`
}

// ListCommentsReq represents the query parameters of GET /comments.
type ListCommentsReq struct {
	URL string `form:"url" binding:"required"`
}

// ListMyCommentsReq represents the query parameters of GET /me/comments.
type ListMyCommentsReq struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
