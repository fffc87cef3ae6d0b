// Command worker runs one sync against the external time-tracking
// service and exits. Useful for backfills and cron outside the API
// process.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ms-planner/planner-backend/config"
	"github.com/ms-planner/planner-backend/internal/clients"
	"github.com/ms-planner/planner-backend/internal/db"
	"github.com/ms-planner/planner-backend/internal/harvest"
	"github.com/ms-planner/planner-backend/internal/people"
	"github.com/ms-planner/planner-backend/internal/projects"
	syncjob "github.com/ms-planner/planner-backend/internal/sync"
	"github.com/ms-planner/planner-backend/internal/tenants"
)

func main() {
	full := flag.Bool("full", false, "ignore watermarks and fetch everything")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Harvest.AccountID == "" || cfg.Harvest.Token == "" {
		log.Fatal("HARVEST_ACCOUNT_ID and HARVEST_TOKEN are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

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

	var lock syncjob.Locker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		lock = syncjob.NewRedisLocker(rdb)
	}

	source := harvest.New(harvest.Config{
		BaseURL:   cfg.Harvest.BaseURL,
		AccountID: cfg.Harvest.AccountID,
		Token:     cfg.Harvest.Token,
	})

	svc := syncjob.NewService(
		source,
		tenants.NewRepo(pool),
		clients.NewRepo(pool),
		projects.NewRepo(pool),
		people.NewRepo(pool),
		syncjob.NewWatermarkRepo(pool),
		lock,
		cfg.Sync.TenantID,
		cfg.Sync.TenantName,
	)

	summary, err := svc.Run(ctx, *full)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}

	log.Printf("sync ok: imported clients=%d projects=%d users=%d totals clients=%d projects=%d people=%d",
		summary.Imported.Clients, summary.Imported.Projects, summary.Imported.Users,
		summary.Totals.Clients, summary.Totals.Projects, summary.Totals.People)
}
