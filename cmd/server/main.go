package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"shiftgrove/server/config"
	"shiftgrove/server/handlers"
	"shiftgrove/server/mapgen"
	"shiftgrove/server/persistence"
	"shiftgrove/server/services"
	"shiftgrove/server/sim"
	"shiftgrove/server/upgrades"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	mapCfg, err := config.LoadMapConfig(cfg.MapConfigPath)
	if err != nil {
		log.Fatalf("Failed to load map config: %v", err)
	}

	// Initialize database
	var db persistence.Storage
	if cfg.DBType == "postgres" {
		db, err = persistence.NewPostgresStore(cfg.DatabaseURL)
		log.Println("Using PostgreSQL persistence")
	} else {
		// Default to JSON store
		db, err = persistence.NewJSONStore(cfg.DBFile)
		log.Println("Using JSON persistence")
	}
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer db.Close()

	// Initialize services
	worldService, err := services.NewWorldService(db, mapCfg, services.WorldOptions{
		Name:        cfg.WorldName,
		FixedSeed:   cfg.FixedSeed,
		SpawnRadius: cfg.SpawnRadius,
		Generator:   mapgen.DefaultOptions(),
	})
	if err != nil {
		log.Fatalf("Failed to create world: %v", err)
	}
	playerService := services.NewPlayerService(worldService, db, upgrades.Default(upgrades.DefaultWeapons()))
	clientManager := handlers.NewClientManager()

	boss := sim.NewBossDirector(cfg.BossTimer)
	defer clientManager.ReplicateSeed(worldService)()
	defer clientManager.ReplicateBoss(boss, worldService)()

	loop := sim.NewLoop(cfg.TickRate)
	loop.Register("boss", boss)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Simulation stopped: %v", err)
		}
	}()

	api := &handlers.API{
		World:      worldService,
		Boss:       boss,
		AdminToken: cfg.AdminToken,
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", handlers.ServeWS(playerService, worldService, clientManager))
	api.Register(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		srv.Shutdown(context.Background())
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
