package main

import (
	"context"
	"log"

	"github.com/atelierhq/atelier-backend/config"
	"github.com/atelierhq/atelier-backend/internal/bootstrap"
	cronjob "github.com/atelierhq/atelier-backend/internal/questionnaire/cron"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	router, svcs := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:   "atelier-backend",
		Version:       cfg.App.Version,
		DB:            db,
		Redis:         rdb,
		SyncPerMinute: cfg.Sync.RatePerMinute,
	})

	sweeper := cronjob.NewScheduler(svcs.Instances, cfg.Sync.PruneCron)
	sweeper.Start()
	defer sweeper.Stop()

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
