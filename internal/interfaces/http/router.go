package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventory-items/internal/application/auth"
	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// HealthCheck verifica una dependencia (store, caché).
type HealthCheck func(ctx context.Context) error

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC       *usecase.ItemUseCase
	CategoryUC   *usecase.CategoryUseCase
	TagUC        *usecase.TagUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
	TokenLimiter *IPRateLimiter
	HealthChecks map[string]HealthCheck
	Log          *logger.Logger
}

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name           string
	AllowedOrigins string
}

// NewApp construye la app Fiber con timeouts, manejador de errores JSON, recover y CORS.
func NewApp(cfg AppConfig, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorHandler(log),
		// La clave de caché sale de OriginalURL y se guarda más allá del handler.
		Immutable: true,
	})
	app.Use(recover.New())
	origins := cfg.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", healthHandler(deps.HealthChecks))

	// Tokens (público, limitado por IP)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	token := app.Group("/api/token")
	if deps.TokenLimiter != nil {
		token.Use(deps.TokenLimiter.Middleware(log))
	}
	token.Post("/", authHandler.ObtainToken)
	token.Post("/refresh", authHandler.Refresh)

	// Rutas protegidas (requieren Bearer Token de acceso)
	protected := AuthMiddleware(deps.JWTSecret, deps.AuthUC, log)

	items := app.Group("/items", protected)
	itemHandler := NewItemHandler(deps.ItemUC, log)
	items.Get("/", itemHandler.List)
	items.Post("/", itemHandler.Create)
	items.Get("/:sku", itemHandler.Retrieve)
	items.Put("/:sku", itemHandler.Replace)
	items.Patch("/:sku", itemHandler.PartialUpdate)
	items.Delete("/:sku", itemHandler.Delete)

	reports := app.Group("/reports", protected)
	reports.Get("/stock.pdf", itemHandler.StockReport)

	categories := app.Group("/categories", protected)
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/:name", categoryHandler.Retrieve)
	categories.Delete("/:name", categoryHandler.Delete)

	tags := app.Group("/tags", protected)
	tagHandler := NewTagHandler(deps.TagUC, log)
	tags.Get("/", tagHandler.List)
	tags.Post("/", tagHandler.Create)
	tags.Get("/:name", tagHandler.Retrieve)
	tags.Delete("/:name", tagHandler.Delete)
}

// healthHandler 200 si todas las dependencias responden, 503 si alguna falla.
func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		status := fiber.StatusOK
		result := fiber.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = fiber.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		overall := "ok"
		if status != fiber.StatusOK {
			overall = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{"status": overall, "checks": result})
	}
}
