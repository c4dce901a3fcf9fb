package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qa-assignment-api/internal/core/auth"
	"qa-assignment-api/internal/core/config"
	"qa-assignment-api/internal/core/logger"
	"qa-assignment-api/internal/core/server"
	"qa-assignment-api/internal/domain"
	"qa-assignment-api/internal/repo"
	"qa-assignment-api/internal/service"
	"qa-assignment-api/internal/transport/http/router"
	"qa-assignment-api/pkg/utils"
)

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	f := cfg.Log.File
	if f.Enable {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Enable:     true,
			Filename:   f.Filename,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		})
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

// buildEngine wires stores, token service and auth service into the router.
func buildEngine(cfg *config.Config, log *zap.Logger) (*gin.Engine, error) {
	hasher := utils.NewPasswordHasher(cfg.Auth.BcryptCost)
	users := repo.NewUserRepo(hasher, nil)
	products := repo.NewProductRepo(nil)
	bugs := repo.NewBugRepo(nil)

	if cfg.Seed.Enabled {
		if err := repo.SeedUsers(users); err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
		repo.SeedProducts(products)
		repo.SeedBugs(bugs)
		log.Info("seed data loaded",
			zap.Int("users", users.Count()),
			zap.Int("products", products.Len()),
			zap.Int("bugs", bugs.Len()),
		)
	}

	if len(cfg.Seed.Users) > 0 {
		recs := make([]domain.UserImport, 0, len(cfg.Seed.Users))
		for _, u := range cfg.Seed.Users {
			recs = append(recs, domain.UserImport{Email: u.Email, Name: u.Name, PasswordHash: u.PasswordHash})
		}
		if err := repo.ImportUsers(users, recs); err != nil {
			return nil, err
		}
		log.Info("imported users", zap.Int("count", len(recs)))
	}

	jwter, err := auth.NewJWTer([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, cfg.JWT.Algorithm, cfg.JWT.TTL())
	if err != nil {
		return nil, err
	}
	jwter.Leeway = cfg.JWT.Leeway()

	return router.NewAPIEngine(log, cfg, router.Deps{
		Auth:     service.NewAuthService(users, jwter, hasher, log),
		Tokens:   jwter,
		Products: products,
		Bugs:     bugs,
	}), nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	if cfg.JWT.Secret == "your-secret-key-change-in-production" {
		log.Warn("jwt.secret is the built-in default; set APP_JWT_SECRET")
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	h := cfg.App.HTTP
	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(addr, engine,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)

	host4human := h.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := fmt.Sprintf("http://%s:%d", host4human, h.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("api start failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown", zap.Error(err))
		return err
	}
	log.Info("api stopped gracefully")
	return nil
}

func runHashPassword(in io.Reader, out io.Writer, cost int) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return errors.New("empty password on stdin")
	}
	hash, err := utils.NewPasswordHasher(cost).HashPassword(pw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
