package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/ms-planner/planner-backend/config"
	"github.com/ms-planner/planner-backend/internal/bootstrap"
	"github.com/ms-planner/planner-backend/internal/clients"
	"github.com/ms-planner/planner-backend/internal/db"
	"github.com/ms-planner/planner-backend/internal/harvest"
	"github.com/ms-planner/planner-backend/internal/people"
	"github.com/ms-planner/planner-backend/internal/projects"
	syncjob "github.com/ms-planner/planner-backend/internal/sync"
	"github.com/ms-planner/planner-backend/internal/tenants"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := db.Open(ctx, db.Options{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	tenantRepo := tenants.NewRepo(pool)
	if err := tenantRepo.Ensure(ctx, cfg.Sync.TenantID, cfg.Sync.TenantName); err != nil {
		log.Fatalf("ensure tenant: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unreachable, continuing without cache/lock: %v", err)
			rdb = nil
		}
	}

	var syncService *syncjob.Service
	if cfg.Harvest.AccountID != "" && cfg.Harvest.Token != "" {
		source := harvest.New(harvest.Config{
			BaseURL:   cfg.Harvest.BaseURL,
			AccountID: cfg.Harvest.AccountID,
			Token:     cfg.Harvest.Token,
		})

		var lock syncjob.Locker
		if rdb != nil {
			lock = syncjob.NewRedisLocker(rdb)
		}

		syncService = syncjob.NewService(
			source,
			tenantRepo,
			clients.NewRepo(pool),
			projects.NewRepo(pool),
			people.NewRepo(pool),
			syncjob.NewWatermarkRepo(pool),
			lock,
			cfg.Sync.TenantID,
			cfg.Sync.TenantName,
		)

		if cfg.Sync.Enabled {
			syncjob.NewScheduler(syncService, cfg.Sync.CronSpec).Start()
		}
	} else {
		log.Println("harvest credentials not set, sync endpoint disabled")
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:          "planner-backend",
		Version:              cfg.App.Version,
		TenantID:             cfg.Sync.TenantID,
		DB:                   pool,
		Redis:                rdb,
		SyncService:          syncService,
		CalendarMonthsPast:   cfg.Calendar.MonthsPast,
		CalendarMonthsFuture: cfg.Calendar.MonthsFuture,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
