package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"done/api"
	"done/config"
	"done/logging"
	"done/state"
	"done/tui"
	"done/utils"
)

func main() {
	fs := flag.NewFlagSet("done", flag.ContinueOnError)
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logging.New(os.Stderr, "", "").Fatal("loading config", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := utils.OpenDB(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("opening database", "driver", cfg.DBDriver, "err", err)
	}
	defer db.Close()

	manager := state.NewManager(utils.NewSQLSlot(db, cfg.StorageKey), logger)
	list, err := manager.Initialize(ctx)
	if err != nil {
		logger.Warn("task list not persisted", "err", err)
	}
	logger.Info("task list ready", "driver", db.Driver(), "key", cfg.StorageKey, "tasks", len(list.Tasks))

	if cfg.Mode == config.ModeTUI {
		// The terminal owns stdout; keep the console quiet while it runs.
		logger.SetLevel(logging.ParseLevel("error"))
		if err := tui.Run(ctx, manager); err != nil {
			logger.Fatal("terminal interface", "err", err)
		}
		return
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: api.NewRouter(manager, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutting down server", "err", err)
		}
	}()

	logger.Info("listening", "addr", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serving", "err", err)
	}
}
