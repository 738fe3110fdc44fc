package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Abraxas-365/skyport/currency"
	"github.com/Abraxas-365/skyport/currency/currencyapi"
	"github.com/Abraxas-365/skyport/currency/currencyinfra"

	"github.com/Abraxas-365/skyport/flight"
	"github.com/Abraxas-365/skyport/flight/flightapi"
	"github.com/Abraxas-365/skyport/flight/flightinfra"
	"github.com/Abraxas-365/skyport/flight/flightsrv"
	"github.com/Abraxas-365/skyport/flight/flightstatus"

	"github.com/Abraxas-365/skyport/iam/auth"
	"github.com/Abraxas-365/skyport/iam/auth/authinfra"
	"github.com/Abraxas-365/skyport/iam/tenant"
	"github.com/Abraxas-365/skyport/iam/user"
	"github.com/Abraxas-365/skyport/iam/user/userinfra"

	"github.com/Abraxas-365/skyport/pkg/config"
	"github.com/Abraxas-365/skyport/pkg/database"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

// Container contiene todas las dependencias de la aplicación
type Container struct {
	// =================================================================
	// CONFIGURATION & INFRASTRUCTURE
	// =================================================================
	Config      *config.Config
	DB          *sqlx.DB
	RedisClient *redis.Client

	// =================================================================
	// IAM
	// =================================================================
	UserRepo        user.UserRepository
	PasswordService user.PasswordService
	TenantResolver  *tenant.Resolver

	// =================================================================
	// AUTH
	// =================================================================
	TokenService   auth.TokenService
	TokenDenylist  auth.TokenDenylist
	Authorizer     *auth.Authorizer
	AuthHandlers   *auth.AuthHandlers
	AuthMiddleware *auth.AuthMiddleware

	// =================================================================
	// FLIGHTS ✈️
	// =================================================================
	FlightRepo      flight.FlightRepository
	FleetRepo       flight.FleetStatusRepository
	FlightService   *flightsrv.FlightService
	FlightHandler   *flightapi.FlightHandler
	StatusScheduler *flightstatus.Scheduler

	// =================================================================
	// CURRENCY 💱
	// =================================================================
	RateRepo    currency.RateRepository
	RateHandler *currencyapi.RateHandler
}

// NewContainer crea el contenedor de dependencias. No arranca el scheduler.
func NewContainer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client) (*Container, error) {
	c := &Container{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
	}

	log.Println("📦 Initializing dependency container...")

	c.initIAMComponents()
	if err := c.initAuthComponents(); err != nil {
		return nil, err
	}
	if err := c.initFlightComponents(); err != nil {
		return nil, err
	}
	c.initCurrencyComponents()

	log.Println("✅ Dependency container initialized successfully")

	return c, nil
}

// =================================================================
// IAM INITIALIZATION
// =================================================================

func (c *Container) initIAMComponents() {
	log.Println("  👥 Initializing IAM components...")
	c.UserRepo = userinfra.NewPostgresUserRepository(c.DB)
	c.PasswordService = authinfra.NewBcryptPasswordService()
	c.TenantResolver = tenant.NewResolver(c.Config.Tenancy.DefaultTenant, c.Config.Tenancy.HeaderName)
}

func (c *Container) initAuthComponents() error {
	log.Println("  🔐 Initializing auth components...")

	tokenService, err := auth.NewJWTService(c.Config.Auth.JWT)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	c.TokenService = tokenService
	c.TokenDenylist = authinfra.NewRedisTokenDenylist(c.RedisClient)
	c.Authorizer = auth.NewAuthorizer(accessTable())

	c.AuthHandlers = auth.NewAuthHandlers(
		c.TokenService,
		c.UserRepo,
		c.PasswordService,
		c.TokenDenylist,
		c.TenantResolver.HeaderName(),
	)

	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService, c.UserRepo, c.TokenDenylist)
	return nil
}

// =================================================================
// FLIGHT INITIALIZATION ✈️
// =================================================================

func (c *Container) initFlightComponents() error {
	log.Println("  ✈️  Initializing flight components...")

	repo := flightinfra.NewPostgresFlightRepository(c.DB)
	c.FlightRepo = repo
	c.FleetRepo = repo

	location := c.Config.Scheduler.Location()
	c.FlightService = flightsrv.NewFlightService(c.FlightRepo, location)
	c.FlightHandler = flightapi.NewFlightHandler(c.FlightService, c.TenantResolver.HeaderName())

	scheduler, err := flightstatus.NewScheduler(
		c.FleetRepo,
		c.Config.Scheduler.FlightStatus,
		flightstatus.WithLocation(location),
	)
	if err != nil {
		return err
	}
	c.StatusScheduler = scheduler
	return nil
}

// =================================================================
// CURRENCY INITIALIZATION 💱
// =================================================================

func (c *Container) initCurrencyComponents() {
	log.Println("  💱 Initializing currency components...")
	c.RateRepo = currencyinfra.NewCachedRateRepository(
		currencyinfra.NewPostgresRateRepository(c.DB),
		c.RedisClient,
		c.Config.Currency.CacheTTL,
	)
	c.RateHandler = currencyapi.NewRateHandler(c.RateRepo)
}

// =================================================================
// LIFECYCLE
// =================================================================

// StartBackground arranca el scheduler de estados si está habilitado
func (c *Container) StartBackground() error {
	if !c.Config.Scheduler.Enabled {
		log.Println("⏸️  Flight status scheduler disabled")
		return nil
	}
	return c.StatusScheduler.Start()
}

func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.StatusScheduler != nil {
		log.Println("  ⏰ Stopping flight status scheduler...")
		ctx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeout)
		if err := c.StatusScheduler.Stop(ctx); err != nil {
			log.Printf("  ⚠️  Flight status scheduler did not stop cleanly: %v", err)
		}
		cancel()
	}

	if c.DB != nil {
		log.Println("  🗄️  Closing database connections...")
		database.CloseDB(c.DB)
	}

	if c.RedisClient != nil {
		log.Println("  🔴 Closing Redis connections...")
		database.CloseRedis(c.RedisClient)
	}

	log.Println("✅ Container cleanup complete")
}

func (c *Container) HealthCheck(ctx context.Context) map[string]bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return map[string]bool{
		"database":  database.PingPostgres(ctx, c.DB) == nil,
		"redis":     database.PingRedis(ctx, c.RedisClient) == nil,
		"scheduler": !c.Config.Scheduler.Enabled || c.StatusScheduler.IsRunning(),
	}
}

func (c *Container) GetServiceNames() []string {
	return []string{
		"TokenService",
		"FlightService",
		"FlightStatusScheduler",
	}
}

func (c *Container) GetRepositoryNames() []string {
	return []string{
		"UserRepo",
		"FlightRepo",
		"RateRepo",
	}
}
