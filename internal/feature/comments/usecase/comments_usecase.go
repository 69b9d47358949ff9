// Package usecase contains the application logic for threaded URL comments.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"votp_backend/internal/feature/comments/domain/entity"
	"votp_backend/internal/platform/urlnorm"
)

const (
	// maxContentLength is the upper bound on comment text, in characters.
	maxContentLength = 5000

	// defaultAccountListLimit and maxAccountListLimit bound the per-account
	// listing, which fans out across every partition.
	defaultAccountListLimit = 50
	maxAccountListLimit     = 100

	// readAttempts is how many times a failing read is retried before the
	// error is surfaced. Writes are never retried; a retried write could
	// apply twice.
	readAttempts = 3
)

// CommentRepository is the storage contract for comments. Implementations
// route each operation to the partition owning the comment's URL hash.
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	ListByHash(ctx context.Context, hash string) ([]entity.Comment, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]entity.Comment, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*entity.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// Thread is the list of comments grouped under one canonical URL.
type Thread struct {
	CanonicalURL string           `json:"canonical_url"`
	URLHash      string           `json:"url_hash"`
	Comments     []entity.Comment `json:"comments"`
}

// CommentsUsecase implements the comment operations.
type CommentsUsecase struct {
	repo CommentRepository

	// retryBackoff is the pause between read retries.
	retryBackoff time.Duration
}

// NewCommentsUsecase creates the comments usecase.
func NewCommentsUsecase(repo CommentRepository) *CommentsUsecase {
	return &CommentsUsecase{
		repo:         repo,
		retryBackoff: 100 * time.Millisecond,
	}
}

// Create validates and stores a new comment or reply. The URL is canonicalized
// first so every spelling of the same page lands in the same thread. When
// parentID is set the repository verifies, inside the insert transaction, that
// the parent exists and shares the same URL hash.
func (u *CommentsUsecase) Create(ctx context.Context, accountID uuid.UUID, rawURL, content string, parentID *uuid.UUID) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	canonical, hash := urlnorm.Canonicalize(rawURL)
	comment := &entity.Comment{
		Content:      content,
		OriginalURL:  rawURL,
		CanonicalURL: canonical,
		URLHash:      hash,
		AccountID:    accountID,
		ParentID:     parentID,
	}

	if err := u.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListForURL returns every comment on the URL's canonical form, oldest first.
func (u *CommentsUsecase) ListForURL(ctx context.Context, rawURL string) (*Thread, error) {
	canonical, hash := urlnorm.Canonicalize(rawURL)

	var comments []entity.Comment
	err := u.withReadRetry(ctx, func() error {
		var err error
		comments, err = u.repo.ListByHash(ctx, hash)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Thread{CanonicalURL: canonical, URLHash: hash, Comments: comments}, nil
}

// ListReplies returns the direct replies to a comment, oldest first.
func (u *CommentsUsecase) ListReplies(ctx context.Context, parentID uuid.UUID) ([]entity.Comment, error) {
	var replies []entity.Comment
	err := u.withReadRetry(ctx, func() error {
		var err error
		replies, err = u.repo.ListReplies(ctx, parentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// ListByAccount returns the account's most recent comments across all
// partitions, newest first. A non-positive limit falls back to the default
// and anything above the maximum is clamped.
func (u *CommentsUsecase) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.Comment, error) {
	if limit <= 0 {
		limit = defaultAccountListLimit
	}
	if limit > maxAccountListLimit {
		limit = maxAccountListLimit
	}

	var comments []entity.Comment
	err := u.withReadRetry(ctx, func() error {
		var err error
		comments, err = u.repo.ListByAccount(ctx, accountID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update replaces the text of the account's own comment.
func (u *CommentsUsecase) Update(ctx context.Context, accountID, id uuid.UUID, content string) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	existing, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AccountID != accountID {
		return nil, ErrNotOwner
	}

	return u.repo.UpdateContent(ctx, id, content)
}

// Delete removes the account's own comment together with its reply subtree.
func (u *CommentsUsecase) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	existing, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AccountID != accountID {
		return ErrNotOwner
	}

	_, err = u.repo.Delete(ctx, id)
	return err
}

// withReadRetry retries transient storage failures on read paths. Domain
// errors are surfaced immediately.
func (u *CommentsUsecase) withReadRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < readAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if isDomainError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.retryBackoff):
		}
	}
	return err
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrParentNotFound) ||
		errors.Is(err, ErrParentMismatch) ||
		errors.Is(err, ErrNotOwner)
}

func validateContent(content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return ErrContentTooLong
	}
	return nil
}
