package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"qa-assignment-api/internal/core/config"
	"qa-assignment-api/internal/core/server"
	"qa-assignment-api/internal/domain"
	"qa-assignment-api/internal/service"
	"qa-assignment-api/internal/transport/http/handler"
	mdw "qa-assignment-api/internal/transport/http/middleware"
)

type Deps struct {
	Auth     *service.AuthService
	Tokens   mdw.TokenVerifier
	Products domain.ProductRepository
	Bugs     domain.BugRepository
}

func NewAPIEngine(l *zap.Logger, cfg *config.Config, d Deps) *gin.Engine {
	r := server.NewRouter(l)

	lim := cfg.App.Limits
	limiter := mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst)
	if lim.PerIP {
		limiter = mdw.RateLimitPerIP(rate.Limit(lim.RPS), lim.Burst)
	}
	r.Use(
		mdw.RequestID(),
		limiter,
		mdw.ConcurrencyLimit(lim.MaxInflight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": cfg.App.Name, "version": cfg.App.Version, "status": "operational"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.App.Name, "environment": cfg.App.Env})
	})

	api := r.Group("/api/v1")
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// sets the subject that protected actions and bug reporters read
	api.Use(mdw.OptionalAuth(d.Tokens))

	var reg Registry
	reg.Register(
		&handler.AuthHandler{Auth: d.Auth},
		&handler.BugHandler{Bugs: d.Bugs, DefaultReporter: cfg.Bugs.DefaultReporter, ProtectWrites: cfg.Auth.ProtectWrites},
		&handler.ProductHandler{Products: d.Products, ProtectWrites: cfg.Auth.ProtectWrites},
	)
	reg.MountAll(api)

	return r
}
