// Command identity runs the identity registry, the owner of user accounts.
package main

import (
	"fmt"
	"os"

	"github.com/civiceye/backend/internal/auth"
	"github.com/civiceye/backend/internal/config"
	"github.com/civiceye/backend/internal/handlers"
	"github.com/civiceye/backend/internal/repository"
	"github.com/civiceye/backend/internal/server"
	"github.com/civiceye/backend/internal/services"
	"github.com/civiceye/backend/internal/validation"
)

func main() {
	app, err := server.Bootstrap(config.UserService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "identity: %v\n", err)
		os.Exit(1)
	}
	cfg, sugar := app.Config, app.Sugar

	var store interface {
		services.UserStore
		handlers.Pinger
	}
	if app.DB != nil {
		store = repository.NewUserStore(app.DB)
	} else {
		store = repository.NewMemoryUserStore()
	}

	svc := services.NewUserService(store,
		auth.NewHasher(),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		validation.New(),
		sugar,
	)

	router := app.Router(
		handlers.NewHealthHandler(cfg.Service, store, sugar),
		server.UserRoutes(handlers.NewUserHandler(svc, sugar), app.Gate()),
	)

	if err := app.Run(router); err != nil {
		sugar.Fatalf("%v", err)
	}
}
