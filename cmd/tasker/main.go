package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/ldi/tasker/internal/config"
	"github.com/ldi/tasker/internal/db"
	"github.com/ldi/tasker/internal/db/postgres"
	"github.com/ldi/tasker/internal/logging"
	"github.com/ldi/tasker/internal/service"
	"github.com/ldi/tasker/internal/snapshot"
	"github.com/ldi/tasker/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// store is what every command needs from a storage gateway. Both the SQLite
// and the postgres gateways satisfy it.
type store interface {
	service.ProjectStore
	service.JournalStore
	snapshot.Target
	snapshot.Notifier
	Init(ctx context.Context) error
	Close() error
}

// app carries the global flags shared by all commands.
type app struct {
	configPath string
	flags      map[string]*pflag.Flag
}

var menuChoices = []ui.Choice{
	{Name: "init", Description: "Create a .tasker workspace in the current directory"},
	{Name: "serve", Description: "Run the HTTP API"},
	{Name: "mcp", Description: "Run the MCP server on stdio"},
	{Name: "list-projects", Description: "List projects with task counts"},
	{Name: "status", Description: "Show every project board"},
	{Name: "export", Description: "Write a snapshot of the database"},
	{Name: "import", Description: "Replace the database with a snapshot"},
}

func newRootCmd() *cobra.Command {
	a := &app{flags: map[string]*pflag.Flag{}}

	root := &cobra.Command{
		Use:           "tasker",
		Short:         "Tasker - projects, tasks and a journal behind HTTP and MCP",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return cmd.Help()
			}
			selected, err := ui.RunMenu(menuChoices)
			if err != nil {
				return fmt.Errorf("failed to run menu: %w", err)
			}
			if selected == "" {
				return nil
			}
			sub, _, err := cmd.Find([]string{selected})
			if err != nil {
				return err
			}
			return sub.RunE(sub, nil)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to config file (default .tasker/config.yaml)")
	pf.String("db-driver", config.DriverSQLite, "Database driver (sqlite or postgres)")
	pf.String("db-path", config.DefaultConfig().Database.Path, "Path to the SQLite database file")
	pf.String("db-url", "", "postgres:// connection string")
	pf.String("snapshot-path", config.DefaultConfig().Snapshot.Path, "Path to the snapshot file")
	pf.String("log-level", config.DefaultConfig().Log.Level, "Log level (debug, info, warn, error, off)")

	a.bind("database.driver", pf.Lookup("db-driver"))
	a.bind("database.path", pf.Lookup("db-path"))
	a.bind("database.url", pf.Lookup("db-url"))
	a.bind("snapshot.path", pf.Lookup("snapshot-path"))
	a.bind("log.level", pf.Lookup("log-level"))

	root.AddCommand(
		a.initCmd(),
		a.serveCmd(),
		a.mcpCmd(),
		a.listProjectsCmd(),
		a.statusCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

func (a *app) bind(key string, f *pflag.Flag) {
	a.flags[key] = f
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(a.configPath, a.flags)
}

// openStore opens and migrates the configured database. With auto set and
// snapshot.auto enabled, every write re-exports the snapshot file.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger, auto bool) (store, error) {
	var s store
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		s = pg
	default:
		sq, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		s = sq
	}

	if err := s.Init(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if auto && cfg.Snapshot.Auto {
		snapshot.EnableAuto(s, cfg.Snapshot.Path, logger)
	}
	return s, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.New("tasker", cfg.Log.Level, os.Stderr)
}

func newServices(s store, logger *log.Logger) (*service.ProjectService, *service.JournalService) {
	return service.NewProjectService(s, service.WithLogger(logger)),
		service.NewJournalService(s, service.WithLogger(logger))
}
