// Package adapters implements the comment storage contract on the partitioned
// gorm cluster.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"votp_backend/internal/feature/comments/domain/entity"
	"votp_backend/internal/feature/comments/usecase"
	"votp_backend/internal/platform/db"
)

// defaultStorageTimeout bounds a repository call when no timeout is
// configured. Fan-out operations share one deadline across partitions.
const defaultStorageTimeout = 5 * time.Second

// CommentGorm routes every operation through the cluster: hash-keyed
// operations go straight to the owning partition, id-keyed operations first
// locate the comment by fanning out.
type CommentGorm struct {
	cluster *db.Cluster
	timeout time.Duration
}

var _ usecase.CommentRepository = (*CommentGorm)(nil)

// NewCommentRepository creates the cluster-backed comment repository. The
// concrete type is returned because the account feature also uses it to purge
// a removed account's comments. Every call is bounded by timeout; a
// non-positive value falls back to defaultStorageTimeout.
func NewCommentRepository(cluster *db.Cluster, timeout time.Duration) *CommentGorm {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &CommentGorm{cluster: cluster, timeout: timeout}
}

func (r *CommentGorm) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Create inserts the comment on the partition owning its URL hash. For
// replies the parent is checked inside the same transaction, so a parent
// deleted concurrently can never gain a dangling reply.
func (r *CommentGorm) Create(ctx context.Context, comment *entity.Comment) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	conn := r.cluster.ForHash(comment.URLHash)

	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if comment.ParentID != nil {
			var parent entity.Comment
			err := tx.Where("id = ?", *comment.ParentID).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// A parent on a different URL lives on a different
				// partition, so it is equally absent here.
				return usecase.ErrParentNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to load parent comment: %w", err)
			}
			if parent.URLHash != comment.URLHash {
				return usecase.ErrParentMismatch
			}
		}

		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
}

// ListByHash returns all comments for the hash from its partition, oldest
// first.
func (r *CommentGorm) ListByHash(ctx context.Context, hash string) ([]entity.Comment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	conn := r.cluster.ForHash(hash)

	var comments []entity.Comment
	err := conn.WithContext(ctx).
		Where("url_hash = ?", hash).
		Order("created_at asc, id asc").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// ListReplies returns the direct replies to the parent, oldest first. Replies
// share the parent's hash, so they live on the parent's partition.
func (r *CommentGorm) ListReplies(ctx context.Context, parentID uuid.UUID) ([]entity.Comment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, conn, err := r.locate(ctx, parentID)
	if err != nil {
		return nil, err
	}

	var replies []entity.Comment
	err = conn.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at asc, id asc").
		Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return replies, nil
}

// ListByAccount collects the account's comments from every partition and
// merges them newest first. Each partition is asked for at most limit rows,
// which bounds the merge.
func (r *CommentGorm) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.Comment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var merged []entity.Comment
	for i, conn := range r.cluster.All() {
		var part []entity.Comment
		err := conn.WithContext(ctx).
			Where("account_id = ?", accountID).
			Order("created_at desc, id desc").
			Limit(limit).
			Find(&part).Error
		if err != nil {
			return nil, fmt.Errorf("partition %d: failed to list account comments: %w", i, err)
		}
		merged = append(merged, part...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// FindByID looks the comment up across all partitions.
func (r *CommentGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	comment, _, err := r.locate(ctx, id)
	return comment, err
}

// UpdateContent replaces the comment's text on its home partition.
func (r *CommentGorm) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*entity.Comment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, conn, err := r.locate(ctx, id)
	if err != nil {
		return nil, err
	}

	err = conn.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	var updated entity.Comment
	if err := conn.WithContext(ctx).Where("id = ?", id).First(&updated).Error; err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}
	return &updated, nil
}

// Delete removes the comment and its whole reply subtree in one transaction
// on the comment's partition. Returns the number of rows removed.
func (r *CommentGorm) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, conn, err := r.locate(ctx, id)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := collectSubtrees(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}

		res := tx.Where("id IN ?", ids).Delete(&entity.Comment{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete comments: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// DeleteByAccount removes every comment the account owns, together with the
// reply subtrees under them, on every partition. Used when an account is
// removed.
func (r *CommentGorm) DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int64
	for i, conn := range r.cluster.All() {
		err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var owned []uuid.UUID
			err := tx.Model(&entity.Comment{}).
				Where("account_id = ?", accountID).
				Pluck("id", &owned).Error
			if err != nil {
				return fmt.Errorf("failed to list account comments: %w", err)
			}
			if len(owned) == 0 {
				return nil
			}

			ids, err := collectSubtrees(tx, owned)
			if err != nil {
				return err
			}

			res := tx.Where("id IN ?", ids).Delete(&entity.Comment{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete comments: %w", res.Error)
			}
			total += res.RowsAffected
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("partition %d: %w", i, err)
		}
	}
	return total, nil
}

// locate finds the comment and the partition connection it lives on. The hash
// is not known from the id alone, so the lookup fans out in partition order.
func (r *CommentGorm) locate(ctx context.Context, id uuid.UUID) (*entity.Comment, *gorm.DB, error) {
	for i, conn := range r.cluster.All() {
		var comment entity.Comment
		err := conn.WithContext(ctx).Where("id = ?", id).First(&comment).Error
		if err == nil {
			return &comment, conn, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("partition %d: failed to find comment: %w", i, err)
		}
	}
	return nil, nil, usecase.ErrCommentNotFound
}

// collectSubtrees gathers the given comment ids plus all reply ids below
// them, breadth first.
func collectSubtrees(tx *gorm.DB, roots []uuid.UUID) ([]uuid.UUID, error) {
	ids := append([]uuid.UUID(nil), roots...)
	frontier := roots
	for len(frontier) > 0 {
		var children []uuid.UUID
		err := tx.Model(&entity.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list replies: %w", err)
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}
