// Command taskdoc-mcp serves a persistent task document to agents over MCP
// and offers a few commands for inspecting it from a terminal.
//
// Usage:
//
//	taskdoc-mcp                  # serve MCP tools on stdio
//	taskdoc-mcp summary -d       # print the checklist with descriptions
//	taskdoc-mcp watch            # re-print the summary on every change
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	taskdoc "github.com/roasbeef/taskdoc-mcp"
	"github.com/roasbeef/taskdoc-mcp/internal/config"
	"github.com/roasbeef/taskdoc-mcp/internal/logutil"
	"github.com/roasbeef/taskdoc-mcp/internal/telemetry"
)

// Populated at build-time via -ldflags.
var version = "dev"

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if mv := info.Main.Version; mv != "" && mv != "(devel)" {
			return mv
		}
	}
	return version
}

// flags holds the global command line flags.
type flags struct {
	ConfigPath  string
	StoragePath string
	LogLevel    string
	LogFile     string
}

// app holds everything built in Before and shared by the commands.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *taskdoc.FileStore
	engine *taskdoc.Engine
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var (
		f         = &flags{}
		a         = &app{}
		logCloser func()
	)

	cmd := &cli.Command{
		Name:  "taskdoc-mcp",
		Usage: "Persistent task checklist for agents, served over MCP",
		Description: `taskdoc-mcp keeps one task document (goal, checklist, notes,
resources and metadata) in a JSON file and exposes it as MCP tools.

Run with no command to serve the tools on stdio.`,
		Version: buildVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKDOC_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "storage",
				Usage:       "path to the task document (overrides config)",
				Sources:     cli.EnvVars("TASKDOC_STORAGE"),
				Destination: &f.StoragePath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error)",
				Sources:     cli.EnvVars("TASKDOC_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("TASKDOC_LOG_FILE"),
				Destination: &f.LogFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(f.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if err := f.apply(cfg); err != nil {
				return ctx, err
			}

			logger, closer, err := logutil.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logCloser = closer

			err = telemetry.Init(ctx, cfg.ServerName, buildVersion(), telemetry.Options{
				Enabled: cfg.Telemetry.Enabled,
				Stdout:  cfg.Telemetry.Stdout,
			})
			if err != nil {
				return ctx, err
			}

			store, err := taskdoc.NewFileStore(cfg.StoragePath,
				taskdoc.WithLockTimeout(cfg.LockTimeout))
			if err != nil {
				return ctx, fmt.Errorf("open store: %w", err)
			}

			*a = app{
				cfg:   cfg,
				log:   logger,
				store: store,
				engine: taskdoc.NewEngine(
					telemetry.WrapStore(store),
					taskdoc.WithLogger(logutil.Component(logger, "engine")),
				),
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			telemetry.Shutdown(shutdownCtx)

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unknown command %q. Run 'taskdoc-mcp --help' for usage", c.Args().First())
			}
			return a.serve(ctx)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the MCP tools on stdio (default)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return a.serve(ctx)
				},
			},
			{
				Name:  "summary",
				Usage: "Print the checklist summary",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "descriptions",
						Aliases: []string{"d"},
						Usage:   "include detailed descriptions",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					opts := taskdoc.SummaryOptions{IncludeDescriptions: c.Bool("descriptions")}
					fmt.Print(renderMarkdown(a.engine.ChecklistSummary(ctx, opts)))
					return nil
				},
			},
			{
				Name:  "current",
				Usage: "Print the current task view as JSON",
				Action: func(ctx context.Context, c *cli.Command) error {
					return printJSON(a.engine.CurrentTaskDetails(ctx))
				},
			},
			{
				Name:  "show",
				Usage: "Print the full task document as JSON",
				Action: func(ctx context.Context, c *cli.Command) error {
					return printJSON(a.engine.Document(ctx))
				},
			},
			{
				Name:  "watch",
				Usage: "Re-print the summary whenever the task document changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return a.watch(ctx)
				},
			},
			{
				Name:  "path",
				Usage: "Print the task document location",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Println(a.store.Path())
					return nil
				},
			},
		},
	}

	exitCode := 0
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}

// apply overrides config values with flags or environment variables that
// were set.
func (f *flags) apply(cfg *config.Config) error {
	if f.StoragePath != "" {
		cfg.StoragePath = f.StoragePath
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.LogFile = f.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func (a *app) serve(ctx context.Context) error {
	srv := taskdoc.NewServer(a.engine,
		taskdoc.WithServerName(a.cfg.ServerName),
		taskdoc.WithServerVersion(buildVersion()),
		taskdoc.WithServerLogger(logutil.Component(a.log, "mcp")),
	)

	a.log.Info().Str("storage", a.store.Path()).Msg("starting MCP server")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (a *app) watch(ctx context.Context) error {
	opts := taskdoc.SummaryOptions{}
	render := func() {
		if isTerminal() {
			fmt.Print("\033[H\033[2J")
		}
		fmt.Print(renderMarkdown(a.engine.ChecklistSummary(ctx, opts)))
	}

	render()
	return taskdoc.WatchFile(ctx, a.store.Path(), render)
}
