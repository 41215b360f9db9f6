package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/iliyamo/multi-user-blog/internal/auth"
	"github.com/iliyamo/multi-user-blog/internal/config"
	"github.com/iliyamo/multi-user-blog/internal/database"
	"github.com/iliyamo/multi-user-blog/internal/handler"
	"github.com/iliyamo/multi-user-blog/internal/logutil"
	"github.com/iliyamo/multi-user-blog/internal/middleware"
	"github.com/iliyamo/multi-user-blog/internal/queue"
	"github.com/iliyamo/multi-user-blog/internal/repository"
	"github.com/iliyamo/multi-user-blog/internal/router"
)

func main() {
	app := &cli.App{
		Name:  "blog",
		Usage: "Multi-user blog server",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			consumeCmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}

// setup loads configuration and installs the process logger in ctx.
func setup(ctx context.Context) (context.Context, config.Config) {
	cfg := config.Load()
	logger := logutil.New(cfg.Env, cfg.LogLevel)
	log.Logger = logger
	return logutil.WithLogger(ctx, logger), cfg
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations and exit",
		Action: func(appCtx *cli.Context) error {
			ctx, cfg := setup(appCtx.Context)
			db, err := database.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Migrate(ctx, db, cfg.DBDriver)
		},
	}
}

func consumeCmd() *cli.Command {
	return &cli.Command{
		Name:  "consume",
		Usage: "Run only the activity log consumer",
		Action: func(appCtx *cli.Context) error {
			ctx, cfg := setup(appCtx.Context)
			err := queue.StartActivityConsumer(ctx, cfg.AMQPURL, cfg.ActivityLogDir)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "Apply pending migrations before serving",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "consumer",
				Usage: "Run the activity log consumer in-process when a broker is configured",
				Value: true,
			},
		},
		Action: func(appCtx *cli.Context) error {
			ctx, cfg := setup(appCtx.Context)
			logger := logutil.GetOrDefault(ctx)

			db, err := database.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if appCtx.Bool("migrate") {
				if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
					return err
				}
			}

			codec, err := auth.NewTokenCodec(cfg.SessionSecret)
			if err != nil {
				return err
			}
			users := repository.NewUserRepo(db)
			hasher := auth.NewPasswordHasher(auth.Scheme(cfg.PasswordScheme), cfg.SaltLength, cfg.BcryptCost)
			creds := auth.NewCredentialStore(users, hasher)
			sessions := auth.NewSessionManager(codec, creds)

			var events handler.EventPublisher
			if cfg.AMQPURL != "" {
				events = queue.NewPublisher(cfg.AMQPURL)
				if appCtx.Bool("consumer") {
					go func() {
						if err := queue.StartActivityConsumer(ctx, cfg.AMQPURL, cfg.ActivityLogDir); err != nil && !errors.Is(err, context.Canceled) {
							logger.Error().Err(err).Msg("activity consumer stopped")
						}
					}()
				}
			} else {
				logger.Info().Msg("no broker configured, activity events are disabled")
			}

			cache := middleware.NewRedisCache(config.LoadCacheConfig(), config.NewRedisClient(ctx))

			e := router.New(router.Deps{
				Logger:   logger,
				Sessions: sessions,
				Auth:     handler.NewAuthHandler(creds, sessions, events),
				Blog: handler.NewBlogHandler(
					repository.NewPostRepo(db),
					repository.NewCommentRepo(db),
					repository.NewLikeRepo(db),
					events,
				),
				Cache: cache,
			})

			addr := ":" + cfg.Port
			errc := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
				errc <- e.Start(addr)
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info().Msg("shutting down")
			return e.Shutdown(shutdownCtx)
		},
	}
}
