// Command notifications runs the notification relay.
package main

import (
	"fmt"
	"os"

	"github.com/civiceye/backend/internal/config"
	"github.com/civiceye/backend/internal/handlers"
	"github.com/civiceye/backend/internal/orchestration"
	"github.com/civiceye/backend/internal/repository"
	"github.com/civiceye/backend/internal/server"
	"github.com/civiceye/backend/internal/services"
	"github.com/civiceye/backend/internal/validation"
)

func main() {
	app, err := server.Bootstrap(config.NotificationService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notifications: %v\n", err)
		os.Exit(1)
	}
	cfg, sugar := app.Config, app.Sugar

	var store interface {
		services.NotificationStore
		handlers.Pinger
	}
	if app.DB != nil {
		store = repository.NewNotificationStore(app.DB)
	} else {
		store = repository.NewMemoryNotificationStore()
	}

	users := orchestration.NewValidationClient(app.Resolver, cfg.ServiceCallTimeout, sugar)
	svc := services.NewNotificationService(store, users, validation.New(), sugar)

	router := app.Router(
		handlers.NewHealthHandler(cfg.Service, store, sugar),
		server.NotificationRoutes(handlers.NewNotificationHandler(svc, sugar), app.Gate()),
	)

	if err := app.Run(router); err != nil {
		sugar.Fatalf("%v", err)
	}
}
