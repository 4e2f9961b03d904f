package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"medifind/internal/auth"
	"medifind/internal/config"
	httpapi "medifind/internal/http"
	"medifind/internal/repository"
	"medifind/internal/service"
)

func main() {
	cfg := config.LoadServer()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	store := repository.NewMemoryStore()
	pharmacies := repository.NewMemoryPharmacies(store)
	users := repository.NewMemoryUsers(store)
	settings := repository.NewMemorySettings(store)
	tx := repository.NewMemoryTx(store)
	geography := repository.NewStaticGeography()
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	authSvc := service.NewAuthService(pharmacies, users, settings, tx, tokens)
	inventory := service.NewInventoryService(store)
	search := service.NewSearchService(store, pharmacies)
	profile := service.NewProfileService(pharmacies, settings, cfg.MaxImageSize)
	analytics := service.NewAnalyticsService(store)

	srv := httpapi.NewServer(authSvc, inventory, search, profile, analytics, geography, tokens)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		log.WithField("addr", httpServer.Addr).Info("dev server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}
