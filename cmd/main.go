package main

import (
	"context"
	"os"

	"github.com/desertthunder/phonos/internal/api"
	"github.com/desertthunder/phonos/internal/auth"
	"github.com/desertthunder/phonos/internal/library"
	"github.com/desertthunder/phonos/internal/player"
	"github.com/desertthunder/phonos/internal/query"
	"github.com/desertthunder/phonos/internal/search"
	"github.com/desertthunder/phonos/internal/shared"
	"github.com/desertthunder/phonos/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open session database: %v", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	sessions, err := store.New(db)
	if err != nil {
		logger.Fatalf("failed to initialize session store: %v", err)
	}

	flow := auth.NewFlow(auth.FlowOpts{
		ClientID:    config.Spotify.ClientID,
		RedirectURI: config.Spotify.RedirectURI,
		Scopes:      config.Spotify.Scopes,
		BackendURL:  config.API.BaseURL,
		Storage:     sessions,
		Logger:      logger,
	})

	gateway := api.NewGateway(api.GatewayOpts{
		BaseURL:           config.API.BaseURL,
		Tokens:            flow.Token,
		RequestsPerSecond: config.API.RequestsPerSecond,
		Logger:            logger,
	})

	lib := library.New(gateway, query.NewCache(logger))
	searcher := search.NewSearcher(gateway, search.DefaultDelay, logger)
	dispatcher := player.NewDispatcher(gateway, logger)
	channel := player.NewChannel(config.API.BaseURL, gateway, nil, logger)

	// A 401 invalidates the session; a logout tears down the realtime
	// subscription. The disconnect runs async because the 401 may have come
	// from the channel's own token request, and Disconnect waits for that
	// goroutine.
	gateway.OnUnauthorized(func() {
		if err := flow.Logout(); err != nil {
			logger.Warn("failed to clear session after 401", "error", err)
		}
	})
	flow.OnLogout(func() { go channel.Disconnect() })

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Flow:       flow,
		Gateway:    gateway,
		Library:    lib,
		Searcher:   searcher,
		Dispatcher: dispatcher,
		Channel:    channel,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "phonos",
		Usage:    "Manage and play your Spotify playlists from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}

	channel.Disconnect()
	searcher.Stop()
}
