package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"nightfall/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to server.yaml")
	flag.Parse()

	// A missing .env is fine; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ Failed to read .env: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	log.Printf("Loaded configuration: backend = %s, night/day/vote = %d/%d/%ds",
		cfg.Storage.Backend, cfg.Game.NightSeconds, cfg.Game.DaySeconds, cfg.Game.VoteSeconds)

	app, err := SetupServer(cfg, nil)
	if err != nil {
		log.Fatal("Failed to set up server: ", err)
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout, // 0 for SSE support
	}

	// SSE handlers watch the request context; cancel it on shutdown so open
	// streams let Shutdown finish
	streams, closeStreams := context.WithCancel(context.Background())
	server.BaseContext = func(net.Listener) context.Context { return streams }
	server.RegisterOnShutdown(closeStreams)

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := app.Shutdown(ctx); err != nil {
		log.Printf("Failed to flush rooms: %v", err)
	}

	log.Println("Server gracefully stopped")
}
