package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"votp_backend/internal/platform/sharding"
)

func openTestCluster(t *testing.T, partitions int) *Cluster {
	t.Helper()

	conns := make([]*gorm.DB, 0, partitions)
	for i := 0; i < partitions; i++ {
		conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
		require.NoError(t, err, "failed to open in-memory partition")
		conns = append(conns, conn)
	}
	return NewCluster(conns, sharding.NewRouter(partitions-1))
}

func TestCluster_MasterIsFallback(t *testing.T) {
	c := openTestCluster(t, 3)

	assert.Same(t, c.All()[0], c.Master())
	// Hash outside the configured ranges lands on the master.
	assert.Same(t, c.Master(), c.ForHash("ffff"))
}

func TestCluster_RoutedPartitionsAgree(t *testing.T) {
	c := openTestCluster(t, 3)

	// Same hash, same partition, always.
	for i := 0; i < 10; i++ {
		assert.Same(t, c.ForHash("0abc"), c.ForHash("0abc"))
	}

	assert.Same(t, c.All()[1], c.ForHash("0abc"))
	assert.Same(t, c.All()[2], c.ForHash("6abc"))
}

func TestCluster_MigrateAll(t *testing.T) {
	type widget struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}

	c := openTestCluster(t, 2)
	require.NoError(t, c.MigrateAll(&widget{}))

	for _, p := range c.All() {
		assert.True(t, p.Migrator().HasTable(&widget{}))
	}
}
