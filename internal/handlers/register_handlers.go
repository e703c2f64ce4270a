package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/middleware"
	"github.com/accounted-hq/accounted-app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using
// interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	idempotencyRepo portsrepo.IdempotencyRepository,
	dbPool *pgxpool.Pool,
) {
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		if cfg.EnableDBCheck && dbPool != nil {
			if err := dbPool.Ping(c.Request.Context()); err != nil {
				c.JSON(503, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIV1Routes(r, cfg, services, idempotencyRepo)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	idempotencyRepo portsrepo.IdempotencyRepository,
) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		rate = limiter.Rate{Period: time.Minute, Limit: 100}
	}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	v1 := r.Group("/api/v1",
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.RateLimit(limiterInstance),
		middleware.Idempotency(idempotencyRepo, cfg.IdempotencyRetention),
	)

	registerPeriodRoutes(v1, services.Period, services.Journal)
	registerJournalRoutes(v1, services.Journal, services.Posting)
	registerAuditRoutes(v1, services.Hash)
	registerReportingRoutes(v1, services.Reporting)
}
