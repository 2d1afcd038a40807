// Package config загружает конфигурацию сервиса из config.toml
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
)

// ErrNoServices возвращается, когда в конфигурации не задано ни одной услуги
var ErrNoServices = errors.New("config: at least one [[services]] entry is required")

// Config корневая конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	PetService PetServiceConfig `toml:"petservice"`
	Booking    BookingConfig    `toml:"booking"`
	Services   []ServiceConfig  `toml:"services"`
}

// ServerConfig настройки HTTP-сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения для lib/pq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// PetServiceConfig настройки клиента PetService (денормализация данных питомца)
type PetServiceConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// BookingConfig политики движка бронирований
type BookingConfig struct {
	// ReservationTimeout максимальное время резервирования в секундах;
	// по истечении операция завершается без частичных изменений
	ReservationTimeout int `toml:"reservation_timeout"`

	// PendingHoldsCapacity определяет, занимают ли pending-бронирования
	// вместимость до одобрения администратором.
	// true (консервативно, по умолчанию) — занимают с момента создания;
	// false — вместимость резервируется только при одобрении.
	PendingHoldsCapacity *bool `toml:"pending_holds_capacity"`

	// RebuildLedgerOnStart пересчитывает журнал вместимости из бронирований
	// при старте сервиса (восстановление после ручных правок БД)
	RebuildLedgerOnStart bool `toml:"rebuild_ledger_on_start"`
}

// HoldsPendingCapacity возвращает политику с учетом значения по умолчанию
func (c *BookingConfig) HoldsPendingCapacity() bool {
	if c.PendingHoldsCapacity == nil {
		return true
	}
	return *c.PendingHoldsCapacity
}

// ServiceConfig запись каталога услуг
type ServiceConfig struct {
	ID             string `toml:"id"`
	Name           string `toml:"name"`
	CapacityPerDay int    `toml:"capacity_per_day"` // 0 = без ограничения
	PricingMode    string `toml:"pricing_mode"`     // per_night | flat_rate
	RateMinor      int64  `toml:"rate_minor"`
}

// Load читает конфигурацию из TOML-файла
//
// Перед чтением подхватывается .env (если есть): переменная PETCARE_DB_PASSWORD
// перекрывает пароль БД из файла, чтобы не хранить секреты в config.toml.
func Load(path string) (*Config, error) {
	// .env опционален, его отсутствие не ошибка
	_ = godotenv.Load()

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if password := os.Getenv("PETCARE_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	applyDefaults(&cfg)

	if len(cfg.Services) == 0 {
		return nil, ErrNoServices
	}

	return &cfg, nil
}

// Catalog строит и валидирует каталог услуг из конфигурации
func (c *Config) Catalog() (domain.Catalog, error) {
	entries := make([]*domain.ServiceCatalogEntry, len(c.Services))
	for i, svc := range c.Services {
		entries[i] = &domain.ServiceCatalogEntry{
			ServiceID:      svc.ID,
			Name:           svc.Name,
			CapacityPerDay: svc.CapacityPerDay,
			PricingMode:    domain.PricingMode(svc.PricingMode),
			RateMinor:      svc.RateMinor,
		}
	}
	return domain.NewCatalog(entries)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "petcare-booking-service"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.PetService.Timeout == 0 {
		cfg.PetService.Timeout = 5
	}
	if cfg.Booking.ReservationTimeout == 0 {
		cfg.Booking.ReservationTimeout = 10
	}
}
