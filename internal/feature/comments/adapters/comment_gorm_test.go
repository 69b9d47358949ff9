package adapters

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"votp_backend/internal/feature/comments/domain/entity"
	"votp_backend/internal/feature/comments/usecase"
	"votp_backend/internal/platform/db"
	"votp_backend/internal/platform/sharding"
)

// setupTestCluster opens one fallback plus two data partitions, all in-memory.
func setupTestCluster(t *testing.T) *db.Cluster {
	t.Helper()

	partitions := make([]*gorm.DB, 0, 3)
	for i := 0; i < 3; i++ {
		conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err)
		require.NoError(t, conn.AutoMigrate(&entity.Comment{}))
		partitions = append(partitions, conn)
	}

	return db.NewCluster(partitions, sharding.NewRouter(2))
}

// fakeHash builds a 64-char hash whose first character picks the partition
// and whose last character keeps hashes distinct.
func fakeHash(first, last byte) string {
	return string(first) + strings.Repeat("0", 62) + string(last)
}

func newComment(accountID uuid.UUID, hash, content string, createdAt time.Time) *entity.Comment {
	return &entity.Comment{
		Content:      content,
		OriginalURL:  "https://example.com/a",
		CanonicalURL: "https://example.com/a",
		URLHash:      hash,
		AccountID:    accountID,
		CreatedAt:    createdAt,
	}
}

func TestCommentGorm_CreateAndListByHash(t *testing.T) {
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Second)
	ctx := context.Background()
	accountID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	t.Run("written comments come back oldest first", func(t *testing.T) {
		hash := fakeHash('0', 'a')
		require.NoError(t, repo.Create(ctx, newComment(accountID, hash, "first", base)))
		require.NoError(t, repo.Create(ctx, newComment(accountID, hash, "second", base.Add(time.Second))))

		comments, err := repo.ListByHash(ctx, hash)

		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "first", comments[0].Content)
		assert.Equal(t, "second", comments[1].Content)
	})

	t.Run("rows land on the partition the router picks", func(t *testing.T) {
		hash := fakeHash('c', 'b')
		require.NoError(t, repo.Create(ctx, newComment(accountID, hash, "on fallback", base)))

		// With two data partitions first char 'c' routes to the fallback.
		var onFallback, onData1 int64
		require.NoError(t, cluster.All()[0].Model(&entity.Comment{}).Where("url_hash = ?", hash).Count(&onFallback).Error)
		require.NoError(t, cluster.All()[1].Model(&entity.Comment{}).Where("url_hash = ?", hash).Count(&onData1).Error)
		assert.EqualValues(t, 1, onFallback)
		assert.EqualValues(t, 0, onData1)

		comments, err := repo.ListByHash(ctx, hash)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})

	t.Run("different hashes do not see each other", func(t *testing.T) {
		a := fakeHash('1', 'a')
		b := fakeHash('1', 'b')
		require.NoError(t, repo.Create(ctx, newComment(accountID, a, "on a", base)))

		comments, err := repo.ListByHash(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestCommentGorm_Replies(t *testing.T) {
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Second)
	ctx := context.Background()
	accountID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	t.Run("reply to an existing parent on the same url", func(t *testing.T) {
		hash := fakeHash('2', 'a')
		parent := newComment(accountID, hash, "parent", base)
		require.NoError(t, repo.Create(ctx, parent))

		reply := newComment(accountID, hash, "reply", base.Add(time.Second))
		reply.ParentID = &parent.ID
		require.NoError(t, repo.Create(ctx, reply))

		replies, err := repo.ListReplies(ctx, parent.ID)
		require.NoError(t, err)
		require.Len(t, replies, 1)
		assert.Equal(t, "reply", replies[0].Content)
	})

	t.Run("reply to a parent on a different url is rejected", func(t *testing.T) {
		// Both hashes start with '3' so parent and reply route to the same
		// partition; the hashes still differ.
		parent := newComment(accountID, fakeHash('3', 'a'), "parent", base)
		require.NoError(t, repo.Create(ctx, parent))

		reply := newComment(accountID, fakeHash('3', 'b'), "reply", base)
		reply.ParentID = &parent.ID

		err := repo.Create(ctx, reply)
		assert.ErrorIs(t, err, usecase.ErrParentMismatch)
	})

	t.Run("reply to a missing parent is rejected", func(t *testing.T) {
		missing := uuid.New()
		reply := newComment(accountID, fakeHash('4', 'a'), "reply", base)
		reply.ParentID = &missing

		err := repo.Create(ctx, reply)
		assert.ErrorIs(t, err, usecase.ErrParentNotFound)
	})

	t.Run("listing replies of a missing parent", func(t *testing.T) {
		_, err := repo.ListReplies(ctx, uuid.New())
		assert.ErrorIs(t, err, usecase.ErrCommentNotFound)
	})
}

func TestCommentGorm_FindByID(t *testing.T) {
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Second)
	ctx := context.Background()
	accountID := uuid.New()
	base := time.Now().UTC()

	// One comment per partition: '0' and '7' go to the data partitions,
	// 'f' to the fallback.
	for _, first := range []byte{'0', '7', 'f'} {
		c := newComment(accountID, fakeHash(first, 'a'), "on "+string(first), base)
		require.NoError(t, repo.Create(ctx, c))

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Content, found.Content)
	}

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, usecase.ErrCommentNotFound)
}

func TestCommentGorm_ListByAccount(t *testing.T) {
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Second)
	ctx := context.Background()
	accountID := uuid.New()
	otherID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	// Spread the account's comments across all three partitions with
	// increasing timestamps.
	firsts := []byte{'0', '7', 'f', '1', '8'}
	for i, first := range firsts {
		c := newComment(accountID, fakeHash(first, 'a'), "mine", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Create(ctx, c))
	}
	require.NoError(t, repo.Create(ctx, newComment(otherID, fakeHash('2', 'a'), "theirs", base)))

	t.Run("merges newest first across partitions", func(t *testing.T) {
		comments, err := repo.ListByAccount(ctx, accountID, 50)

		require.NoError(t, err)
		require.Len(t, comments, len(firsts))
		for i := 1; i < len(comments); i++ {
			assert.False(t, comments[i].CreatedAt.After(comments[i-1].CreatedAt))
		}
		for _, c := range comments {
			assert.Equal(t, accountID, c.AccountID)
		}
	})

	t.Run("limit truncates the merged result", func(t *testing.T) {
		comments, err := repo.ListByAccount(ctx, accountID, 2)

		require.NoError(t, err)
		require.Len(t, comments, 2)
		// The two newest overall, regardless of partition.
		assert.Equal(t, base.Add(4*time.Second).Unix(), comments[0].CreatedAt.Unix())
		assert.Equal(t, base.Add(3*time.Second).Unix(), comments[1].CreatedAt.Unix())
	})
}

func TestCommentGorm_UpdateContent(t *testing.T) {
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Second)
	ctx := context.Background()

	c := newComment(uuid.New(), fakeHash('5', 'a'), "before", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, c))

	updated, err := repo.UpdateContent(ctx, c.ID, "after")

	require.NoError(t, err)
	assert.Equal(t, "after", updated.Content)

	_, err = repo.UpdateContent(ctx, uuid.New(), "after")
	assert.ErrorIs(t, err, usecase.ErrCommentNotFound)
}

func TestCommentGorm_Delete(t *testing.T) {
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Second)
	ctx := context.Background()
	accountID := uuid.New()
	base := time.Now().UTC()
	hash := fakeHash('6', 'a')

	t.Run("removes the whole reply subtree", func(t *testing.T) {
		parent := newComment(accountID, hash, "parent", base)
		require.NoError(t, repo.Create(ctx, parent))

		child := newComment(accountID, hash, "child", base)
		child.ParentID = &parent.ID
		require.NoError(t, repo.Create(ctx, child))

		grandchild := newComment(accountID, hash, "grandchild", base)
		grandchild.ParentID = &child.ID
		require.NoError(t, repo.Create(ctx, grandchild))

		sibling := newComment(accountID, hash, "sibling", base)
		require.NoError(t, repo.Create(ctx, sibling))

		deleted, err := repo.Delete(ctx, parent.ID)

		require.NoError(t, err)
		assert.EqualValues(t, 3, deleted)

		remaining, err := repo.ListByHash(ctx, hash)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "sibling", remaining[0].Content)
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, usecase.ErrCommentNotFound)
	})
}

func TestCommentGorm_DeleteByAccount(t *testing.T) {
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Second)
	ctx := context.Background()
	accountID := uuid.New()
	otherID := uuid.New()
	base := time.Now().UTC()

	// The account owns comments on two partitions; another account replied
	// to one of them, and that reply goes down with the parent.
	mineA := newComment(accountID, fakeHash('0', 'a'), "mine a", base)
	require.NoError(t, repo.Create(ctx, mineA))

	reply := newComment(otherID, fakeHash('0', 'a'), "their reply", base)
	reply.ParentID = &mineA.ID
	require.NoError(t, repo.Create(ctx, reply))

	mineB := newComment(accountID, fakeHash('9', 'a'), "mine b", base)
	require.NoError(t, repo.Create(ctx, mineB))

	standalone := newComment(otherID, fakeHash('9', 'b'), "theirs", base)
	require.NoError(t, repo.Create(ctx, standalone))

	deleted, err := repo.DeleteByAccount(ctx, accountID)

	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	_, err = repo.FindByID(ctx, standalone.ID)
	assert.NoError(t, err)
	_, err = repo.FindByID(ctx, reply.ID)
	assert.ErrorIs(t, err, usecase.ErrCommentNotFound)
}

func TestCommentGorm_CallsCarryDeadline(t *testing.T) {
	// A timeout too short to complete any query must surface as a context
	// error even when the caller passes an unbounded context.
	cluster := setupTestCluster(t)
	repo := NewCommentRepository(cluster, time.Nanosecond)

	_, err := repo.ListByHash(context.Background(), fakeHash('0', '0'))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestComment_ParentDeleteCascadesAtStorageLevel(t *testing.T) {
	// With foreign keys enforced, the schema's ON DELETE CASCADE must remove
	// replies when the parent row itself is deleted out from under them.
	conn, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&entity.Comment{}))

	accountID := uuid.New()
	parent := newComment(accountID, fakeHash('0', 'c'), "parent", time.Now().UTC())
	require.NoError(t, conn.Create(parent).Error)

	reply := newComment(accountID, fakeHash('0', 'c'), "reply", time.Now().UTC())
	reply.ParentID = &parent.ID
	require.NoError(t, conn.Create(reply).Error)

	require.NoError(t, conn.Where("id = ?", parent.ID).Delete(&entity.Comment{}).Error)

	var count int64
	require.NoError(t, conn.Model(&entity.Comment{}).Where("id = ?", reply.ID).Count(&count).Error)
	assert.Zero(t, count, "reply must go down with its parent row")
}
