package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mkadlec/spajz/internal/backup"
	"github.com/mkadlec/spajz/internal/database"
	"github.com/mkadlec/spajz/internal/logging"
	"github.com/mkadlec/spajz/internal/push"
	"github.com/mkadlec/spajz/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("SPAJZ_LOG_LEVEL"))

	port := os.Getenv("SPAJZ_PORT")
	if port == "" {
		port = "8080"
	}

	dataDir := os.Getenv("SPAJZ_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		logger.Error("create data dir", "error", err)
		os.Exit(1)
	}

	dbPath := os.Getenv("SPAJZ_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "spajz.db")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Push is optional: without VAPID keys the server still runs, it just
	// skips every dispatch.
	var pushCfg *push.Config
	vapidPath := filepath.Join(dataDir, "vapid.json")
	if cfg, err := push.LoadConfig(vapidPath); err != nil {
		logger.Warn("VAPID keys not loaded, push notifications disabled; run genvapid to create them", "path", vapidPath, "error", err)
	} else {
		pushCfg = &cfg
	}

	backupCfg := backup.Config{
		Dir:        filepath.Join(dataDir, "backups"),
		Passphrase: os.Getenv("SPAJZ_BACKUP_PASSPHRASE"),
	}

	srv := server.New(db, pushCfg, backupCfg, logger)

	schedCtx, stopSched := context.WithCancel(context.Background())
	srv.PushScheduler().Start(schedCtx)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Špajz running", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopSched()
	srv.PushScheduler().Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
