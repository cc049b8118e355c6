package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowprobe/flowprobe/pkg/cmd"
	"github.com/flowprobe/flowprobe/pkg/log"
	"github.com/flowprobe/flowprobe/pkg/otelhelper"
	"github.com/flowprobe/flowprobe/pkg/persistence"
	"github.com/flowprobe/flowprobe/pkg/persistence/redis"
)

const defaultPort = 9094

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowprobe-api",
		Usage:                 "Serve the workflow test engine REST API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the hot run-report cache (optional)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			tracerProvider, err := otelhelper.InitTracer(ctx, "flowprobe-api")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}

			defer func() {
				if err := tracerProvider.Shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			logger.InfoContext(ctx, "Initializing flowprobe API")

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := store.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			var reportCache persistence.ReportCache

			if redisURL := command.String("redis-url"); redisURL != "" {
				reportCache, err = redis.NewReportStore(ctx, logger, redisURL, 0)
				if err != nil {
					return err
				}

				defer func() {
					if err := reportCache.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close report cache", "error", err)
					}
				}()
			}

			api := NewAPI(logger, store, reportCache)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return err
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
