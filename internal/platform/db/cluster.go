// Package db opens the partitioned storage cluster and exposes routed access
// to it. One gorm connection is held per partition; partition 0 is the
// fallback/master that also stores accounts.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"votp_backend/internal/platform/config"
	"votp_backend/internal/platform/sharding"
)

// Cluster bundles the ordered partition connections with the router that
// places canonical-URL hashes on them. The routing table is immutable after
// Open; read and write routing for the same hash therefore always agree.
type Cluster struct {
	partitions []*gorm.DB
	router     *sharding.Router
}

// Open connects to every partition DSN in order, retrying each for up to a
// minute the way a container waits for its database.
func Open(cfg *config.Config) (*Cluster, error) {
	partitions := make([]*gorm.DB, 0, len(cfg.PartitionDSNs))
	for i, dsn := range cfg.PartitionDSNs {
		conn, err := openWithRetry(dsn)
		if err != nil {
			return nil, fmt.Errorf("partition %d: %w", i, err)
		}
		partitions = append(partitions, conn)
		slog.Info("partition connected", "partition", i)
	}

	return NewCluster(partitions, sharding.NewRouter(len(partitions)-1)), nil
}

// NewCluster builds a cluster from already-open connections, partition 0
// first. Tests use it with in-memory SQLite connections.
func NewCluster(partitions []*gorm.DB, router *sharding.Router) *Cluster {
	return &Cluster{partitions: partitions, router: router}
}

// Master returns the fallback/master partition holding account data.
func (c *Cluster) Master() *gorm.DB {
	return c.partitions[sharding.FallbackPartition]
}

// ForHash returns the partition that owns the given canonical-URL hash.
func (c *Cluster) ForHash(hash string) *gorm.DB {
	return c.partitions[c.router.Route(hash)]
}

// All returns every partition in configured order, for the reads that must
// fan out because no hash identifies the partition up front.
func (c *Cluster) All() []*gorm.DB {
	return c.partitions
}

// MigrateMaster runs auto-migration for models that live only on the
// fallback/master partition.
func (c *Cluster) MigrateMaster(models ...any) error {
	return c.Master().AutoMigrate(models...)
}

// MigrateAll runs auto-migration for models replicated on every partition.
func (c *Cluster) MigrateAll(models ...any) error {
	for i, p := range c.partitions {
		if err := p.AutoMigrate(models...); err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
	}
	return nil
}

func openWithRetry(dsn string) (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			sqlDB, err := conn.DB()
			if err != nil {
				return nil, fmt.Errorf("failed to access connection pool: %w", err)
			}
			sqlDB.SetMaxOpenConns(25)
			sqlDB.SetMaxIdleConns(5)
			sqlDB.SetConnMaxLifetime(30 * time.Minute)
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("connect failed after 60s: %w", err)
		}
		slog.Warn("connect failed, retrying", "error", err)
		time.Sleep(3 * time.Second)
	}
}
