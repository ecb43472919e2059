package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/heliotek/offerwerk/internal/audit"
	"github.com/heliotek/offerwerk/internal/cache"
	"github.com/heliotek/offerwerk/internal/catalog"
	"github.com/heliotek/offerwerk/internal/config"
	"github.com/heliotek/offerwerk/internal/db"
	"github.com/heliotek/offerwerk/internal/logger"
	"github.com/heliotek/offerwerk/internal/migrations"
	"github.com/heliotek/offerwerk/internal/pricing"
	"github.com/heliotek/offerwerk/internal/rates"
	"github.com/heliotek/offerwerk/internal/seed"
)

func main() {
	cfg := config.Load()

	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Fatal("failed to run startup seed", zap.Error(err))
	}
	if stats.Inserts > 0 {
		log.Info("startup seed applied", zap.Int("inserts", stats.Inserts))
	}

	recorder := audit.NewRecorder(audit.NewStore(database), logger.Named(log, "audit"))
	defer recorder.Close()

	srv := &server{
		log:     log,
		catalog: catalog.NewStore(database),
		rates:   rates.NewStore(database),
		engine:  pricing.NewEngine(catalog.NewStore(database), recorder, logger.Named(log, "pricing")),
		cache:   cache.New(),
		apiKey:  cfg.APIKey,
	}

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
