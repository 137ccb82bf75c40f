// @title                       Inventory Items API
// @version                     1.0
// @description                 Items de inventario con categorías, tags, filtros, orden y paginación.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	_ "github.com/jhoicas/inventory-items/docs"
	"github.com/jhoicas/inventory-items/internal/application/auth"
	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
	"github.com/jhoicas/inventory-items/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/inventory-items/internal/infrastructure/pdf"
	"github.com/jhoicas/inventory-items/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/inventory-items/internal/interfaces/http"
	"github.com/jhoicas/inventory-items/pkg/config"
	"github.com/jhoicas/inventory-items/pkg/logger"
	"github.com/jhoicas/inventory-items/pkg/telemetry"
)

// listCache caché de listados con chequeo de salud.
type listCache interface {
	usecase.ListCache
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db", cfg.DB.Driver).
		Str("cache", cfg.Cache.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Generated {
		log.Warn().Msg("JWT_SECRET vacío: se usa un secreto aleatorio por proceso; los tokens no sobreviven a un reinicio")
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar telemetría")
	}

	st, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("abrir store")
	}
	defer st.Close()

	lc, err := openCache(ctx, cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Cache.Driver).Msg("abrir caché")
	}

	pagination := inventory.Pagination{DefaultSize: cfg.Pagination.PageSize, MaxSize: cfg.Pagination.MaxPageSize}
	itemUC := usecase.NewItemUseCase(st.Items, st.Tx, lc, infrapdf.NewStockReportGenerator(), usecase.ItemUseCaseConfig{
		CachePrefix: cfg.Cache.Prefix,
		CacheTTL:    cfg.Cache.TTL,
		Pagination:  pagination,
	}, log)
	categoryUC := usecase.NewCategoryUseCase(st.Categories, itemUC, pagination)
	tagUC := usecase.NewTagUseCase(st.Tags, itemUC, pagination)
	authUC := auth.NewAuthUseCase(st.Users, auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		AccessMinutes:  cfg.JWT.AccessMinutes,
		RefreshMinutes: cfg.JWT.RefreshMinutes,
		Issuer:         cfg.JWT.Issuer,
	})

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:           cfg.App.Name,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, log)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory Items API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:       itemUC,
		CategoryUC:   categoryUC,
		TagUC:        tagUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
		TokenLimiter: httpRouter.NewIPRateLimiter(cfg.RateLimit.TokenPerMinute, cfg.RateLimit.TokenBurst),
		HealthChecks: map[string]httpRouter.HealthCheck{
			"db":    st.Ping,
			"cache": lc.Ping,
		},
		Log: log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}

// openCache Redis si CACHE_DRIVER=redis; si no, caché en memoria del proceso.
func openCache(ctx context.Context, cfg config.CacheConfig) (listCache, error) {
	if cfg.Driver == config.CacheDriverRedis {
		rc, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return cache.NewMemoryCache(), nil
}
