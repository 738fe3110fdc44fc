package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/craftable/errx/errxfiber"
	"github.com/Abraxas-365/skyport/iam/tenant"
	"github.com/Abraxas-365/skyport/pkg/config"
	"github.com/Abraxas-365/skyport/pkg/database"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

var startTime = time.Now()

func main() {
	// Cargar configuración. Un secreto JWT ausente o débil es fatal.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg)

	log.Println("🚀 Starting Skyport API...")
	log.Printf("📍 Environment: %s", cfg.Server.Environment)

	log.Println("🔌 Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	log.Println("🔌 Connecting to Redis...")
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	container, err := NewContainer(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer container.Cleanup()

	app, err := newApp(container)
	if err != nil {
		log.Fatalf("Failed to configure routes: %v", err)
	}

	if err := container.StartBackground(); err != nil {
		log.Fatalf("Failed to start flight status scheduler: %v", err)
	}

	health := container.HealthCheck(context.Background())
	log.Printf("🏥 Health check: Database=%v, Redis=%v, Scheduler=%v",
		health["database"], health["redis"], health["scheduler"])

	log.Printf("📋 Registered services: %v", container.GetServiceNames())
	log.Printf("📋 Registered repositories: %v", container.GetRepositoryNames())

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 Server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("⏸️  Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("❌ Error during server shutdown: %v", err)
	}

	log.Println("👋 Server stopped gracefully")
}

// newApp arma la aplicación Fiber con el pipeline de tenant y auth y registra
// todas las rutas. Falla si alguna ruta declarada quedó sin registrar.
func newApp(c *Container) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      "Skyport API",
		ServerHeader: "Skyport",
		ReadTimeout:  c.Config.Server.ReadTimeout,
		WriteTimeout: c.Config.Server.WriteTimeout,
		ErrorHandler: errxfiber.FiberErrorHandler(),
	})

	setupMiddleware(app, c)

	log.Println("🛣️  Setting up routes...")
	if err := setupRoutes(app, c); err != nil {
		return nil, err
	}
	log.Println("✅ Routes configured")

	return app, nil
}

func setupLogger(cfg *config.Config) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.Server.Environment == "production" {
		log.SetFlags(log.LstdFlags)
	}
}

// setupMiddleware configura los middleware globales. El orden importa: la celda
// de tenant existe antes del resolver y el gate corre después del resolver.
func setupMiddleware(app *fiber.App, c *Container) {
	app.Use(requestid.New())

	if c.Config.Server.Environment != "test" {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${host}${path} - ${latency}\n",
		}))
	}

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     getCorsOrigins(c.Config),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     strings.Join([]string{"Origin", "Content-Type", "Accept", "Authorization", c.TenantResolver.HeaderName()}, ","),
		AllowCredentials: true,
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(tenant.Scope())
	app.Use(c.TenantResolver.Middleware())
	app.Use(c.AuthMiddleware.Authenticate())
}

func setupRoutes(app *fiber.App, c *Container) error {
	c.Authorizer.Handle(app, fiber.MethodGet, PathHealth, healthCheckHandler(c))

	c.AuthHandlers.RegisterRoutes(app, c.Authorizer)
	log.Println("  ✓ Auth routes registered")

	c.FlightHandler.RegisterRoutes(app, c.Authorizer)
	log.Println("  ✓ Flight routes registered")

	c.RateHandler.RegisterRoutes(app, c.Authorizer)
	log.Println("  ✓ Currency routes registered")

	if missing := c.Authorizer.Unregistered(); len(missing) > 0 {
		return fmt.Errorf("declared routes without handler: %v", missing)
	}

	app.Use(func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
			"path":  ctx.Path(),
		})
	})

	return nil
}

func healthCheckHandler(c *Container) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		health := c.HealthCheck(ctx.UserContext())

		allHealthy := true
		for _, healthy := range health {
			if !healthy {
				allHealthy = false
				break
			}
		}

		status := "healthy"
		statusCode := fiber.StatusOK
		if !allHealthy {
			status = "degraded"
			statusCode = fiber.StatusServiceUnavailable
		}

		return ctx.Status(statusCode).JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
			"services":  health,
		})
	}
}

// getCorsOrigins retorna los orígenes permitidos para CORS
func getCorsOrigins(cfg *config.Config) string {
	if cfg.Server.CorsOrigins != "" {
		return cfg.Server.CorsOrigins
	}

	if cfg.Server.Environment == "production" {
		return "https://skyport.example.com"
	}

	// Evitar wildcard cuando AllowCredentials=true
	return "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"
}
