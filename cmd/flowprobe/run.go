package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/cleanup"
	"github.com/flowprobe/flowprobe/pkg/cmd"
	"github.com/flowprobe/flowprobe/pkg/convert"
	"github.com/flowprobe/flowprobe/pkg/discovery"
	"github.com/flowprobe/flowprobe/pkg/invoker"
	"github.com/flowprobe/flowprobe/pkg/log"
	"github.com/flowprobe/flowprobe/pkg/otelhelper"
	"github.com/flowprobe/flowprobe/pkg/runner"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run a scenario path end to end, including cleanup",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the process structure JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "process-map-id",
				Usage:    "Identifier of the source process map",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "org-id",
				Usage:    "Organization the run belongs to",
				Required: true,
				Sources:  cli.EnvVars("ORG_ID"),
			},
			&cli.StringFlag{
				Name:     "callables-url",
				Usage:    "Base URL of the integration callables service",
				Required: true,
				Sources:  cli.EnvVars("CALLABLES_URL"),
			},
			&cli.IntFlag{
				Name:  "path",
				Usage: "Index of the discovered path to run (-1 runs the happy path)",
				Value: -1,
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Store run reports in this storage backend",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression to re-run the path on a schedule",
				Sources: cli.EnvVars("RUN_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "portal-id",
				Usage:   "CRM portal id used for resource view links",
				Sources: cli.EnvVars("HUBSPOT_PORTAL_ID"),
			},
			&cli.StringFlag{
				Name:    "workspace",
				Usage:   "Chat workspace subdomain used for message links",
				Sources: cli.EnvVars("SLACK_WORKSPACE"),
			},
			&cli.StringFlag{
				Name:    "channel",
				Usage:   "Chat channel id messages are posted to",
				Sources: cli.EnvVars("SLACK_CHANNEL"),
			},
			&cli.StringFlag{
				Name:    "calendar-id",
				Usage:   "Calendar id events are created in",
				Sources: cli.EnvVars("CALENDAR_ID"),
			},
			&cli.BoolFlag{
				Name:  "continue-on-failure",
				Usage: "Keep walking the path after a failed step",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("run")

	tracerProvider, err := otelhelper.InitTracer(ctx, "flowprobe")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		}
	}()

	structure, err := loadStructure(command.String("input"))
	if err != nil {
		return err
	}

	converter := convert.NewConverter(logger)

	workflow, err := converter.Convert(structure, convert.Options{
		ProcessMapID: command.String("process-map-id"),
		OrgID:        command.String("org-id"),
	})
	if err != nil {
		return err
	}

	result, err := discovery.DiscoverPaths(structure, discovery.Options{})
	if err != nil {
		return err
	}

	path := result.HappyPath()
	if index := command.Int("path"); index >= 0 {
		if index >= len(result.Paths) {
			return fmt.Errorf("path index %d out of range, %d paths discovered", index, len(result.Paths))
		}

		path = result.Paths[index]
	}

	if path == nil {
		return fmt.Errorf("no paths discovered for process map %s", command.String("process-map-id"))
	}

	bus, err := cmd.NewEventBus(command.String("event-bus"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := bus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	httpInvoker := invoker.NewHTTPInvoker(command.String("callables-url"), invoker.RetryConfig{}, logger)
	run := runner.NewRunner(capability.NewRegistry(), httpInvoker, bus, cleanup.Callbacks{}, logger)

	opts := runner.Options{
		OrgID:                 command.String("org-id"),
		AccountIDs:            accountIDs(command),
		ContinueOnStepFailure: command.Bool("continue-on-failure"),
	}

	execute := func(ctx context.Context) error {
		report, err := run.Run(ctx, workflow, path, opts)
		if err != nil {
			return err
		}

		if databaseURL := command.String("database-url"); databaseURL != "" {
			store, err := cmd.NewPersistence(ctx, logger, databaseURL)
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			if err := store.SaveWorkflow(ctx, workflow); err != nil {
				return err
			}

			if err := store.SaveRunReport(ctx, report); err != nil {
				return err
			}
		}

		return printJSON(report)
	}

	schedule := command.String("schedule")
	if schedule == "" {
		return execute(ctx)
	}

	return runScheduled(ctx, logger, schedule, execute)
}

// runScheduled re-runs the path on a cron schedule until interrupted.
func runScheduled(ctx context.Context, logger *slog.Logger, schedule string, execute func(context.Context) error) error {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(schedule, func() {
		if err := execute(ctx); err != nil {
			logger.ErrorContext(ctx, "Scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	logger.InfoContext(ctx, "Scheduler started", "schedule", schedule)
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-quit:
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	logger.InfoContext(ctx, "Scheduler stopped")

	return nil
}

func accountIDs(command *cli.Command) map[string]string {
	ids := map[string]string{}

	for flag, key := range map[string]string{
		"portal-id":   capability.ContextKeyPortalID,
		"workspace":   capability.ContextKeyWorkspace,
		"channel":     capability.ContextKeyChannel,
		"calendar-id": capability.ContextKeyCalendar,
	} {
		if value := command.String(flag); value != "" {
			ids[key] = value
		}
	}

	return ids
}
