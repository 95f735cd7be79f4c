package main

import (
	"context"
	"errors"
	"os"
	"time"

	"packtrack/internal/services"
	"packtrack/internal/shared"

	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := "config.toml"
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.CatalogService
	if config.Credentials.Catalog.ClientID != "" && config.Credentials.Catalog.ClientSecret != "" {
		if svc, err := services.NewSpotifyCatalog(map[string]string{
			"client_id":     config.Credentials.Catalog.ClientID,
			"client_secret": config.Credentials.Catalog.ClientSecret,
			"base_url":      config.Credentials.Catalog.BaseURL,
			"token_url":     config.Credentials.Catalog.TokenURL,
		}); err == nil {
			ttl := time.Duration(config.Matching.CacheTTLSeconds) * time.Second
			if ttl <= 0 {
				ttl = 15 * time.Minute
			}
			catalog = services.NewCachedCatalog(svc, services.NewAlbumCache(ttl))
		} else {
			logger.Warn("catalog unavailable", "error", err)
		}
	}

	var checker services.ReleaseChecker
	if config.Credentials.Checker.BaseURL != "" {
		checker = services.NewHTTPChecker(config.Credentials.Checker.BaseURL)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalog,
		Checker:    checker,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "packtrack",
		Usage:    "Reconcile album tracklists against tracked songs",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
