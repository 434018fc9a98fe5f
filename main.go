package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"arcade-server/logger"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	clientDir := flag.String("client", "", "Path to client directory (default: ../client)")
	dbPath := flag.String("db", "arcade.db", "SQLite database path, empty to run without persistence")
	tuning := flag.String("tuning", "", "YAML file overriding game tuning")
	seed := flag.Uint("seed", 0, "Fixed RNG seed for every run (0 = seed from the clock)")
	flag.Parse()

	logger.Init()
	log := logger.Log

	if *clientDir == "" {
		exe, _ := os.Executable()
		*clientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// Fallback for development
		if _, err := os.Stat(*clientDir); os.IsNotExist(err) {
			*clientDir = "../client"
		}
	}

	cfg, err := LoadTuning(*tuning)
	if err != nil {
		log.WithError(err).Fatal("load tuning")
	}

	var db *DB
	if *dbPath != "" {
		db, err = OpenDB(*dbPath)
		if err != nil {
			log.WithError(err).Fatal("open database")
		}
		defer db.Close()
	}

	var seedFn func() uint32
	if *seed != 0 {
		fixed := uint32(*seed)
		seedFn = func() uint32 { return fixed }
	}

	hub, err := NewHub(db, cfg, seedFn)
	if err != nil {
		log.WithError(err).Fatal("init hub")
	}
	go hub.Run()

	server := &http.Server{Addr: *addr, Handler: SetupRoutes(hub, *clientDir)}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("addr", *addr).WithField("client", *clientDir).Info("server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-stop
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	hub.Shutdown()
}
