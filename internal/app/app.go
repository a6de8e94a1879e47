package app

import (
	"soundsocial/config"
	"soundsocial/internal/database"
	"soundsocial/internal/handlers/middleware"
	"soundsocial/internal/logger"
	"soundsocial/internal/services"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Config     config.Config
	Service    services.Service
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	service := services.New(db, config)
	middleware := middleware.New(config)

	app := &App{
		Database:   db,
		Middleware: middleware,
		Config:     config,
		Service:    service,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}
	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Service.Transaction,
		a.Service.RateGate,
		a.Service.MusicBrainz,
		a.Service.Catalog,
		a.Service.Rating,
	}
	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() error {
	return a.Database.Close()
}
