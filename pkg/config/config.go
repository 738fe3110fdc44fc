package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Abraxas-365/skyport/iam/auth"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/joho/godotenv"
)

// Config configuración principal de la aplicación
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      auth.Config
	Tenancy   TenancyConfig
	Scheduler SchedulerConfig
	Currency  CurrencyConfig
}

// ServerConfig configuración del servidor HTTP
type ServerConfig struct {
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     string
}

// DatabaseConfig configuración de PostgreSQL
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// TenancyConfig controla la resolución del tenant por host
type TenancyConfig struct {
	DefaultTenant kernel.TenantID
	HeaderName    string
}

// SchedulerConfig configuración del recálculo periódico de estados de vuelo
type SchedulerConfig struct {
	Enabled      bool
	FlightStatus string
	Timezone     string
}

// CurrencyConfig configuración del cache de tasas de cambio
type CurrencyConfig struct {
	CacheTTL time.Duration
}

// Load carga la configuración desde variables de entorno. Un archivo .env en el
// directorio de trabajo se carga primero si existe; las variables ya definidas ganan.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
			CorsOrigins:     getEnv("CORS_ALLOWED_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", getEnv("POSTGRES_HOST", "localhost")),
			Port:            getEnv("DB_PORT", getEnv("POSTGRES_PORT", "5432")),
			User:            getEnv("DB_USER", getEnv("POSTGRES_USER", "postgres")),
			Password:        getEnv("DB_PASSWORD", getEnv("POSTGRES_PASSWORD", "postgres")),
			DBName:          getEnv("DB_NAME", getEnv("POSTGRES_DB", "skyport")),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: LoadAuthConfig(),
		Tenancy: TenancyConfig{
			DefaultTenant: kernel.NewTenantID(strings.TrimSpace(getEnv("TENANT_DEFAULT", "default"))),
			HeaderName:    getEnv("TENANT_HEADER", "X-Tenant-ID"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      getBoolEnv("FLIGHT_STATUS_ENABLED", true),
			FlightStatus: getEnv("FLIGHT_STATUS_SCHEDULE", "@every 60s"),
			Timezone:     getEnv("FLIGHT_STATUS_TIMEZONE", "UTC"),
		},
		Currency: CurrencyConfig{
			CacheTTL: getDurationEnv("CURRENCY_CACHE_TTL", 10*time.Minute),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate valida la configuración
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Tenancy.DefaultTenant.IsEmpty() {
		return fmt.Errorf("TENANT_DEFAULT is required")
	}
	if strings.TrimSpace(c.Tenancy.HeaderName) == "" {
		return fmt.Errorf("TENANT_HEADER is required")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid FLIGHT_STATUS_TIMEZONE: %w", err)
	}

	// La validación del secreto JWT es fatal en el arranque
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}

	return nil
}

// GetDSN retorna el DSN de PostgreSQL
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr retorna la dirección de Redis
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Location retorna la zona horaria en la que se interpretan fechas y horas de vuelo
func (c *SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// LoadAuthConfig carga la configuración de autenticación desde variables de entorno.
// No hay secreto por defecto: sin JWT_SECRET el proceso no arranca.
func LoadAuthConfig() auth.Config {
	return auth.Config{
		JWT: auth.JWTConfig{
			SecretKey:      os.Getenv("JWT_SECRET"),
			AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 10*time.Hour),
			Issuer:         getEnv("JWT_ISSUER", "skyport"),
		},
	}
}
