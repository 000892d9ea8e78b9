package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/itam-io/itam-server/internal/config"
	"github.com/itam-io/itam-server/internal/db"
	"github.com/itam-io/itam-server/internal/handlers"
	"github.com/itam-io/itam-server/internal/importer"
	"github.com/itam-io/itam-server/internal/middleware"
	"github.com/itam-io/itam-server/internal/repo"
	"github.com/itam-io/itam-server/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	assetRepo := repo.NewAssetRepo(database)
	catalogRepo := repo.NewCatalogRepo(database)
	peripheralRepo := repo.NewPeripheralRepo(database)
	customerRepo := repo.NewCustomerRepo(database)
	changeLogRepo := repo.NewChangeLogRepo(database)

	audit := importer.NewAuditRecorder(changeLogRepo, slog.Default())
	engine := importer.NewEngine(assetRepo, catalogRepo, peripheralRepo, customerRepo, audit, slog.Default())
	engine.ChunkSize = cfg.ImportChunkSize

	importHandler := &handlers.ImportHandler{Engine: engine}
	changeLogHandler := &handlers.ChangeLogHandler{Repo: changeLogRepo}

	if cfg.OrphanSweepCron != "" {
		if _, err := scheduler.Run(assetRepo, cfg.OrphanSweepCron); err != nil {
			slog.Error("start orphan sweep", "cron", cfg.OrphanSweepCron, "error", err)
			os.Exit(1)
		}
	}

	importLimiter := middleware.ImportRateLimiter(cfg.ImportRatePerMinute)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Identity([]byte(cfg.JWTSecret)))

		r.Group(func(r chi.Router) {
			r.Use(importLimiter.Middleware)
			r.Use(middleware.MaxBytes(cfg.ImportMaxBodyBytes))
			r.Post("/imports/assets", importHandler.ImportAssets)
			r.Post("/imports/assets/preview", importHandler.PreviewImport)
		})

		r.Get("/changelog", changeLogHandler.ListChangeLog)
	})

	slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
