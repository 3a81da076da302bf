package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"kinship/auth"
	"kinship/config"
	"kinship/database"
	"kinship/handlers"
	"kinship/middleware"
	"kinship/services"
	"kinship/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.Dialect(), cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	issuer, err := auth.NewTokenIssuer(cfg.TokenConfig())
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	h := handlers.New(
		services.NewAuthService(store, hasher, issuer),
		services.NewUserService(store),
		services.NewFriendService(store, hub),
		hub,
	)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	h.Routes(r, issuer)
	r.GET("/ws", websocket.NewHandler(hub, issuer).Serve)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Printf("Server error: %v", err)
	case <-ctx.Done():
		log.Println("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}
