package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sukalov/hymnarium/internal/api"
	"github.com/sukalov/hymnarium/internal/bot"
	"github.com/sukalov/hymnarium/internal/bot/admin"
	"github.com/sukalov/hymnarium/internal/bot/client"
	"github.com/sukalov/hymnarium/internal/cache"
	"github.com/sukalov/hymnarium/internal/config"
	"github.com/sukalov/hymnarium/internal/db"
	"github.com/sukalov/hymnarium/internal/hymnal"
	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/state"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when BOT_TOKEN is set, the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cmdCtx *commandContext, cfg *config.Config) error {
	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(database)

	var rc *redisClient.Client
	if cfg.Redis.URL != "" {
		rc, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()
	}

	store, err := cache.OpenStore(cfg.Cache, rc)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}

	mediaClient, err := cmdCtx.mediaClient()
	if err != nil {
		return err
	}
	if err := mediaClient.Ready(); err != nil {
		logger.Warn("media proxy disabled until R2 credentials are set", "error", err.Error())
	}

	svc := hymnal.NewService(db.NewHymnStore(database), cache.New(store, cfg.Cache.TTL), mediaClient)
	server := api.NewServer(cfg.HTTPAddr, svc, mediaClient)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})

	if cfg.Bot.Token != "" {
		hymnBot, err := bot.New("hymnarium", cfg.Bot.Token)
		if err != nil {
			logger.Error("telegram bot disabled", "error", err.Error())
		} else {
			if cfg.Bot.LogChannelID != 0 {
				logger.AttachChannel(hymnBot, cfg.Bot.LogChannelID)
			}
			handlers, err := botHandlers(gctx, cfg, svc, rc)
			if err != nil {
				return err
			}
			g.Go(func() error {
				hymnBot.Start(gctx, handlers)
				return nil
			})
		}
	}

	logger.Info("hymnarium started", "env", cfg.Env, "address", cfg.HTTPAddr, "cache", cfg.Cache.Backend)
	return g.Wait()
}

func botHandlers(ctx context.Context, cfg *config.Config, svc *hymnal.Service, rc *redisClient.Client) (bot.Handlers, error) {
	var prefs *state.StateManager
	if rc != nil {
		prefs = state.NewStateManager(state.NewRedisBackend(rc))
	} else {
		prefs = state.NewStateManager(nil)
	}
	if err := prefs.Init(ctx); err != nil {
		return bot.Handlers{}, err
	}

	handlers := client.NewClientHandlers(svc, prefs, cfg.Bot.PublicURL).Handlers()
	admin.NewAdminHandlers(svc, cfg.Bot.AdminUsernames).Register(&handlers)
	return handlers, nil
}
