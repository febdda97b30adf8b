// Command complaints runs the complaint ledger. Filing a complaint validates
// the user against the identity registry and notifies them through the
// notification relay.
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
	app, err := server.Bootstrap(config.ComplaintService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "complaints: %v\n", err)
		os.Exit(1)
	}
	cfg, sugar := app.Config, app.Sugar

	var store interface {
		services.ComplaintStore
		handlers.Pinger
	}
	if app.DB != nil {
		store = repository.NewComplaintStore(app.DB)
	} else {
		store = repository.NewMemoryComplaintStore()
	}

	users := orchestration.NewValidationClient(app.Resolver, cfg.ServiceCallTimeout, sugar)
	dispatcher := orchestration.NewDispatcher(app.Resolver, cfg.ServiceCallTimeout, cfg.AsyncNotifications, sugar)
	svc := services.NewComplaintService(store, users, dispatcher, validation.New(), sugar)

	router := app.Router(
		handlers.NewHealthHandler(cfg.Service, store, sugar),
		server.ComplaintRoutes(handlers.NewComplaintHandler(svc, sugar), app.Gate()),
	)

	if err := app.Run(router, dispatcher.Wait); err != nil {
		sugar.Fatalf("%v", err)
	}
}
