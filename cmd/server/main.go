package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"votp_backend/internal/app/di"
	"votp_backend/internal/app/router"
	authadapters "votp_backend/internal/feature/auth/adapters"
	authentity "votp_backend/internal/feature/auth/domain/entity"
	authhandler "votp_backend/internal/feature/auth/transport/handler"
	authusecase "votp_backend/internal/feature/auth/usecase"
	commentsadapters "votp_backend/internal/feature/comments/adapters"
	commentsentity "votp_backend/internal/feature/comments/domain/entity"
	commentshandler "votp_backend/internal/feature/comments/transport/handler"
	commentsusecase "votp_backend/internal/feature/comments/usecase"
	"votp_backend/internal/platform/config"
	"votp_backend/internal/platform/db"
	jwtauth "votp_backend/internal/platform/jwt"
	"votp_backend/internal/platform/mailer"
	"votp_backend/internal/platform/password"
	platformredis "votp_backend/internal/platform/redis"
	"votp_backend/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cluster, err := db.Open(cfg)
	if err != nil {
		slog.Error("failed to open partitions", "error", err)
		os.Exit(1)
	}

	if cfg.RunMigrations {
		if err := cluster.MigrateMaster(&authentity.User{}, &authentity.PendingCode{}); err != nil {
			slog.Error("master migration failed", "error", err)
			os.Exit(1)
		}
		if err := cluster.MigrateAll(&commentsentity.Comment{}); err != nil {
			slog.Error("partition migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	// Redis is optional. Without it verification codes live on the master
	// database instead.
	var rdb *redisv9.Client
	if cfg.RedisAddr != "" {
		rdb, err = platformredis.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Warn("redis unavailable, verification codes fall back to the database", "error", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close redis client", "error", err)
				}
			}()
		}
	}

	// Repositories, each call bounded by the configured storage timeout.
	userRepo := authadapters.NewUserGorm(cluster.Master(), cfg.StorageTimeout)
	codeRepo := di.NewCodeRepository(rdb, cluster.Master(), cfg.StorageTimeout)
	commentRepo := commentsadapters.NewCommentRepository(cluster, cfg.StorageTimeout)

	// Outbound mail, paced so a burst of signups cannot flood the relay.
	mailLimiter := ratelimiter.NewRateLimiter(30, time.Minute)
	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP, mailLimiter)
	if err != nil {
		slog.Error("failed to initialize mailer", "error", err)
		os.Exit(1)
	}

	tokenService := jwtauth.NewService(cfg.JWTSecret, cfg.TokenValidity)
	hasher := password.NewHasher(cfg.Argon2)

	// Usecases
	authUC, err := authusecase.NewAuthUsecase(userRepo, codeRepo, smtpMailer,
		tokenService, hasher, commentRepo, cfg.CodeExpiry)
	if err != nil {
		slog.Error("failed to initialize auth usecase", "error", err)
		os.Exit(1)
	}
	commentsUC := commentsusecase.NewCommentsUsecase(commentRepo)

	// Expired codes are swept periodically. With Redis the sweep is a no-op
	// because key TTLs already expire them.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := codeRepo.DeleteExpired(context.Background()); err != nil {
				slog.Warn("expired code sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("expired codes removed", "count", n)
			}
		}
	}()

	// Handlers
	authH := authhandler.NewAuthHandler(authUC)
	commentsH := commentshandler.NewCommentsHandler(commentsUC)

	r := router.NewRouter(tokenService, authH, commentsH)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("server starting", "addr", cfg.Addr, "data_partitions", cfg.DataPartitions())
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
