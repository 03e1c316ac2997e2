package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"

	"properlytics/internal/auth"
	"properlytics/internal/config"
	"properlytics/internal/httpapi"
	"properlytics/internal/listingstore"
	"properlytics/internal/logger"
	"properlytics/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (overrides individual flags)")
	listen := flag.String("listen", ":8000", "listen address")
	dbPath := flag.String("db", "listings.db", "path to SQLite database file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	secret := os.Getenv("PROPERLYTICS_AUTH_SECRET")
	if *configPath != "" {
		cfg, err := config.LoadServer(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		*listen = cfg.Server.Listen
		*dbPath = cfg.Server.DBPath
		secret = cfg.Server.AuthSecret
		if cfg.Logging.Level != "" {
			*logLevel = cfg.Logging.Level
		}
		if cfg.Telemetry.Enabled {
			shutdown, err := telemetry.Setup(context.Background(), "properlytics-server", cfg.Telemetry.Endpoint)
			if err != nil {
				log.Fatalf("telemetry setup: %v", err)
			}
			defer func() {
				_ = shutdown(context.Background())
			}()
		}
	}

	logg := logger.New(*logLevel)

	authn, err := auth.New(secret)
	if err != nil {
		log.Fatalf("auth: %v (set PROPERLYTICS_AUTH_SECRET or server.auth_secret)", err)
	}

	store, err := listingstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store (%s): %v", *dbPath, err)
	}
	defer store.Close()

	if err := seedAdmin(store); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	h := httpapi.NewServer(store, authn, logg)
	logg.Info("listing backend listening", "addr", *listen, "db", *dbPath)
	if err := http.ListenAndServe(*listen, h); err != nil {
		log.Fatal(err)
	}
}

// seedAdmin bootstraps one admin account from the environment so a fresh
// database is reachable. No-op when the variables are unset.
func seedAdmin(store *listingstore.Store) error {
	username := strings.TrimSpace(os.Getenv("PROPERLYTICS_ADMIN_USER"))
	password := os.Getenv("PROPERLYTICS_ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return store.UpsertAdmin(context.Background(), &listingstore.AdminUser{
		Username:     username,
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
	})
}
