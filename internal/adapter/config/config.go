package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database *Database
	HTTP     *HTTP
	Cache    *Cache
	Events   *Events
	Loyalty  *Loyalty
	App      *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string `env:"APP_MODE"`
	SeedDemo bool   `env:"SEED_DEMO"`
}

// Database.DSN left empty selects the in-memory store.
type Database struct {
	DSN      string `env:"DATABASE_URI"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

// Cache.Address left empty disables idempotent order placement.
type Cache struct {
	Address        string        `env:"REDIS_ADDRESS"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL"`
}

// Events.Brokers left empty disables event publishing.
type Events struct {
	Brokers string `env:"KAFKA_BROKERS"`
	Topic   string `env:"KAFKA_TOPIC"`
}

func (e *Events) BrokerList() []string {
	if e.Brokers == "" {
		return nil
	}
	list := strings.Split(e.Brokers, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	return list
}

type Loyalty struct {
	PointsPerUnit string `env:"POINTS_PER_UNIT"`
}

func NewConfig() (*Config, error) {
	var db Database
	var http HTTP
	var cache Cache
	var events Events
	var loyalty Loyalty
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&cache.Address, "c", "", "Redis address for idempotency keys")
	flag.DurationVar(&cache.IdempotencyTTL, "t", 24*time.Hour, "Idempotency key TTL")
	flag.StringVar(&events.Brokers, "k", "", "Kafka brokers, comma separated")
	flag.StringVar(&events.Topic, "topic", `shop.orders`, "Kafka topic for order events")
	flag.StringVar(&loyalty.PointsPerUnit, "p", "", "Loyalty points per currency unit")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.BoolVar(&app.SeedDemo, "s", true, "Seed demo data into the in-memory store")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&cache)
	if err != nil {
		return nil, fmt.Errorf("error parsing cache config: %w", err)
	}
	err = env.Parse(&events)
	if err != nil {
		return nil, fmt.Errorf("error parsing events config: %w", err)
	}
	err = env.Parse(&loyalty)
	if err != nil {
		return nil, fmt.Errorf("error parsing loyalty config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}

	config := Config{
		Database: &db,
		HTTP:     &http,
		Cache:    &cache,
		Events:   &events,
		Loyalty:  &loyalty,
		App:      &app,
	}

	return &config, nil
}
