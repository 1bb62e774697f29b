package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/app"
	"github.com/Skotchmaster/camera_shop/internal/config"
	"github.com/Skotchmaster/camera_shop/internal/es"
	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/pkg/db"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.Env)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	gdb, err := openDB(startCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Error("db_init_error", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(startCtx, gdb, models.All()...); err != nil {
		cancel()
		log.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	backends := app.Backends{Events: mykafka.Nop{}, Index: es.Nop{}}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
		backends.Events = producer
		log.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	if cfg.ESURL != "" {
		client, err := es.NewClient(startCtx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, log)
		if err != nil {
			log.Warn("es_init_error", "reason", "search falls back to the database", "error", err)
		} else {
			products := es.NewProducts(client, cfg.ESIndex)
			if err := products.EnsureIndex(startCtx); err != nil {
				log.Warn("es_index_error", "index", cfg.ESIndex, "error", err)
			}
			backends.Index = products
		}
	}
	cancel()

	e := app.New(gdb, cfg, log, backends)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		log.Warn("force_exit")
		os.Exit(1)
	}()

	log.Info("shutting_down")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Error("db_close_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("kafka_close_error", "error", err)
		}
	}
	log.Info("shutdown_complete")
}

// openDB accepts a postgres DSN or, for local runs, sqlite:<path>.
func openDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		return db.OpenSQLite(ctx, path)
	}
	return db.Open(ctx, dsn)
}
