package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mejakita/api/internal/config"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/router"
	"github.com/mejakita/api/internal/storage"
	"github.com/mejakita/api/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)

	store, err := storage.NewClient(ctx, storage.Config{
		Endpoint:      cfg.StorageEndpoint,
		Region:        cfg.StorageRegion,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		Bucket:        cfg.StorageBucket,
		ImageBasePath: cfg.ImageBasePath,
	})
	if err != nil {
		log.Fatalf("Unable to configure object storage: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, pool, store, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
