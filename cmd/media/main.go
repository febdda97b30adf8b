// Command media runs the media vault. Uploads are accepted only for
// complaints the complaint ledger confirms.
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
	"github.com/civiceye/backend/internal/storage"
)

func main() {
	app, err := server.Bootstrap(config.MediaService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "media: %v\n", err)
		os.Exit(1)
	}
	cfg, sugar := app.Config, app.Sugar

	var store interface {
		services.MediaStore
		handlers.Pinger
	}
	if app.DB != nil {
		store = repository.NewMediaStore(app.DB)
	} else {
		store = repository.NewMemoryMediaStore()
	}

	files, err := storage.New(app.Context(), cfg)
	if err != nil {
		app.Close()
		sugar.Fatalf("Failed to initialise storage: %v", err)
	}
	sugar.Infow("File storage ready", "type", cfg.StorageType)

	complaints := orchestration.NewValidationClient(app.Resolver, cfg.ServiceCallTimeout, sugar)
	svc := services.NewMediaService(store, files, complaints, sugar)

	router := app.Router(
		handlers.NewHealthHandler(cfg.Service, store, sugar),
		server.MediaRoutes(handlers.NewMediaHandler(svc, cfg.MaxUploadBytes, sugar), app.Gate()),
	)

	if err := app.Run(router); err != nil {
		sugar.Fatalf("%v", err)
	}
}
