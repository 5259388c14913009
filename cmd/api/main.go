package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/modules/auth"
	"github.com/busesamerica/buses-america-inventory/internal/modules/exchange"
	"github.com/busesamerica/buses-america-inventory/internal/modules/inspection"
	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/busesamerica/buses-america-inventory/internal/modules/photo"
	"github.com/busesamerica/buses-america-inventory/internal/modules/report"
	"github.com/busesamerica/buses-america-inventory/internal/modules/supplier"
	"github.com/busesamerica/buses-america-inventory/internal/modules/user"
	"github.com/busesamerica/buses-america-inventory/internal/modules/warranty"
	"github.com/busesamerica/buses-america-inventory/internal/modules/workplan"
	"github.com/busesamerica/buses-america-inventory/internal/platform/config"
	"github.com/busesamerica/buses-america-inventory/internal/platform/dbx"
	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/busesamerica/buses-america-inventory/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := dbx.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to the database")
	}
	defer db.Close()
	log.Info("successfully connected to the database")

	blobs, closeBlobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open photo store")
	}
	defer closeBlobs()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httpx.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(httpx.CORS(cfg.AllowedOrigins))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.WriteError(w, r, "database unavailable", "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
		httpx.OK(w, map[string]string{"status": "ok"})
	})

	// ── Operators ───────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	user.NewHandler(user.NewService(userRepo)).RegisterRoutes(router)

	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	auth.NewHandler(authService).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		r.Use(auth.RequireOperator(cfg.AuthRequired))
		registerDomain(r, db, blobs, cfg, log)
	})

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.WithField("port", cfg.AppPort).Info("Buses America inventory API starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped")
	}
}

func registerDomain(r chi.Router, db *sql.DB, blobs photo.BlobStore, cfg *config.Config, log *logrus.Logger) {
	// ── Reference data ──────────────────────────────────────
	exchangeService := exchange.NewService(exchange.NewPostgresRepository(db))
	exchange.NewHandler(exchangeService).RegisterRoutes(r)

	supplier.NewHandler(supplier.NewService(supplier.NewPostgresRepository(db), cfg.DefaultPhoneRegion)).RegisterRoutes(r)

	inspection.NewHandler(inspection.NewService(inspection.NewPostgresRepository(db))).RegisterRoutes(r)

	// ── Unit lifecycle ──────────────────────────────────────
	inventoryService := inventory.NewService(
		inventory.NewPostgresRepository(db),
		exchangeService,
		inventory.Options{
			WarrantyTermDays:            cfg.WarrantyTermDays,
			AllowRejectedInspectionLink: cfg.AllowRejectedInspectionLink,
		},
		log.WithField("module", "inventory"),
	)
	inventory.NewHandler(inventoryService).RegisterRoutes(r)

	// ── Child trackers ──────────────────────────────────────
	workplanService := workplan.NewService(workplan.NewPostgresRepository(db), inventoryService, log.WithField("module", "workplan"))
	workplan.NewHandler(workplanService).RegisterRoutes(r)

	warranty.NewHandler(warranty.NewService(warranty.NewPostgresRepository(db), inventoryService)).RegisterRoutes(r)

	photoService := photo.NewService(photo.NewPostgresRepository(db), blobs, inventoryService, cfg.MaxUploadBytes, log.WithField("module", "photo"))
	photo.NewHandler(photoService, cfg.MaxUploadBytes).RegisterRoutes(r)

	// ── Reports ─────────────────────────────────────────────
	report.NewHandler(report.NewService(inventoryService)).RegisterRoutes(r)
}

func openBlobStore(ctx context.Context, cfg *config.Config) (photo.BlobStore, func(), error) {
	if cfg.StorageProvider == "gcs" {
		store, err := photo.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	store, err := photo.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
