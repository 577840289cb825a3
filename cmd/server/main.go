package main

import (
	"log"
	"net/http"
	"strconv"

	"brainrot67/internal/arena"
	"brainrot67/internal/data"
	"brainrot67/internal/platform/config"
	"brainrot67/internal/profile"
	"brainrot67/internal/roster"
	"brainrot67/internal/shop"
)

type serverConfig struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"BRAINROT_SQLITE_PATH" envDefault:"brainrot67.db"`
	RosterPath  string `env:"BRAINROT_ROSTER_PATH"`
	WatchRoster bool   `env:"BRAINROT_WATCH_ROSTER" envDefault:"false"`
	TickRate    int    `env:"BRAINROT_TICK_RATE" envDefault:"60"`
}

func main() {
	var cfg serverConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("%v", err)
	}

	// 1. Progression store
	var (
		store *data.Store
		err   error
	)
	if cfg.DatabaseURL != "" {
		store, err = data.OpenPostgres(cfg.DatabaseURL)
	} else {
		store, err = data.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatalf("failed to open data store: %v", err)
	}
	defer store.Close()
	log.Printf("progression store: %s", store.Dialect())

	// 2. Roster, optionally overridden from yaml and hot-reloaded
	catalog := roster.Default()
	if cfg.RosterPath != "" {
		catalog, err = roster.LoadFile(cfg.RosterPath)
		if err != nil {
			log.Fatalf("failed to load roster %s: %v", cfg.RosterPath, err)
		}
	}
	registry := roster.NewRegistry(catalog)
	if cfg.RosterPath != "" && cfg.WatchRoster {
		watcher, err := roster.NewWatcher(cfg.RosterPath, registry)
		if err != nil {
			log.Printf("Warning: roster hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	// 3. Routes
	profiles := profile.New(store)
	battles := arena.NewServer(store, registry, cfg.TickRate)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", profiles.RegisterHandler)
	mux.HandleFunc("/api/login", profiles.LoginHandler)
	mux.HandleFunc("/api/me", profiles.MeHandler)
	mux.HandleFunc("/api/leaderboard", profile.NewLeaderboardHandler(store))
	mux.HandleFunc("/api/shop", shop.NewListHandler(store))
	mux.HandleFunc("/api/shop/buy", shop.NewBuyHandler(store))
	mux.HandleFunc("/ws/battle", battles.HandleWS)

	addr := ":" + strconv.Itoa(cfg.Port)
	log.Println("Server starting on " + addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
