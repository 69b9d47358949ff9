package usecase

import "errors"

var (
	// ErrEmptyContent is returned when the comment text is empty after trimming.
	ErrEmptyContent = errors.New("comment content is empty")
	// ErrContentTooLong is returned when the comment text exceeds the length limit.
	ErrContentTooLong = errors.New("comment content exceeds the maximum length")
	// ErrCommentNotFound is returned when no comment exists for the given id.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrParentNotFound is returned when the referenced parent comment does not exist.
	ErrParentNotFound = errors.New("parent comment not found")
	// ErrParentMismatch is returned when the parent comment belongs to a different URL.
	ErrParentMismatch = errors.New("parent comment belongs to a different url")
	// ErrNotOwner is returned when an account tries to modify someone else's comment.
	ErrNotOwner = errors.New("comment belongs to another account")
)
