package main

import (
	"context"
	"fmt"

	"github.com/MikeRez0/ypshop/internal/adapter/cache"
	"github.com/MikeRez0/ypshop/internal/adapter/config"
	"github.com/MikeRez0/ypshop/internal/adapter/event"
	"github.com/MikeRez0/ypshop/internal/adapter/handler/http"
	"github.com/MikeRez0/ypshop/internal/adapter/logger"
	"github.com/MikeRez0/ypshop/internal/adapter/storage"
	"github.com/MikeRez0/ypshop/internal/adapter/storage/memory"
	"github.com/MikeRez0/ypshop/internal/adapter/storage/repository"
	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/MikeRez0/ypshop/internal/core/service"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	policy := domain.DefaultPolicy()
	if conf.Loyalty.PointsPerUnit != "" {
		ppu, err := decimal.Parse(conf.Loyalty.PointsPerUnit)
		if err != nil {
			log.Error("points per unit parse error", zap.Error(err))
			return
		}
		policy.PointsPerUnit = ppu
	}

	repo, err := newRepository(ctx, conf, policy, log)
	if err != nil {
		log.Error("repository creating error", zap.Error(err))
		return
	}

	var publisher port.EventPublisher = event.Discard{}
	if len(conf.Events.BrokerList()) > 0 {
		kafkaPublisher, err := event.NewKafkaPublisher(conf.Events, log.Named("Events"))
		if err != nil {
			log.Error("event publisher creating error", zap.Error(err))
			return
		}
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
	}

	var idempotency port.IdempotencyCache
	if conf.Cache.Address != "" {
		redisCache, err := cache.NewRedisCache(ctx, conf.Cache)
		if err != nil {
			log.Error("cache creating error", zap.Error(err))
			return
		}
		defer func() { _ = redisCache.Close() }()
		idempotency = redisCache
	}

	svc, err := service.NewService(repo, publisher, policy, log.Named("Service"))
	if err != nil {
		log.Error("service creating error", zap.Error(err))
		return
	}

	catalogHandler, err := http.NewCatalogHandler(svc, log.Named("Catalog handler"))
	if err != nil {
		log.Error("catalog handler creating error", zap.Error(err))
		return
	}
	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.Cache, idempotency, catalogHandler, orderHandler, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}

func newRepository(ctx context.Context, conf *config.Config,
	policy domain.Policy, log *zap.Logger) (port.Repository, error) {
	if conf.Database.DSN == "" {
		log.Info("no database configured, using in-memory store")
		repo, err := memory.NewRepository()
		if err != nil {
			return nil, err
		}
		if conf.App.SeedDemo {
			if err := repo.Seed(ctx, policy); err != nil {
				return nil, fmt.Errorf("seed: %w", err)
			}
		}
		return repo, nil
	}

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	err = db.RunMigrations()
	if err != nil {
		return nil, fmt.Errorf("database migration: %w", err)
	}
	return repository.NewRepository(db)
}
