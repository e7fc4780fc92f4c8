package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/ldi/tasker/internal/config"
	"github.com/ldi/tasker/internal/mcp"
	"github.com/ldi/tasker/internal/server"
	"github.com/ldi/tasker/internal/snapshot"
	"github.com/ldi/tasker/internal/ui"
	"github.com/ldi/tasker/internal/ui/components"
	"github.com/ldi/tasker/pkg/models"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a .tasker workspace with config, database and .gitignore",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetDir := "."
			if len(args) > 0 {
				targetDir = args[0]
			}
			return a.runInit(contextOrBackground(cmd.Context()), cmd.OutOrStdout(), targetDir)
		},
	}
}

func (a *app) runInit(ctx context.Context, out io.Writer, targetDir string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	taskerDir := filepath.Join(targetDir, config.Dir)
	if err := os.MkdirAll(taskerDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", config.Dir, err)
	}
	fmt.Fprintf(out, "✓ Created %s/ directory\n", config.Dir)

	gitignorePath := filepath.Join(taskerDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("tasker.db*\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Fprintf(out, "✓ Created %s/.gitignore\n", config.Dir)

	configPath := filepath.Join(targetDir, config.DefaultPath())
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote default config to %s\n", configPath)
	} else if err != nil {
		return fmt.Errorf("failed to check config: %w", err)
	}

	// Default locations follow the target directory; explicit ones are kept.
	defaults := config.DefaultConfig()
	if cfg.Database.Path == defaults.Database.Path {
		cfg.Database.Path = filepath.Join(targetDir, defaults.Database.Path)
	}
	if cfg.Snapshot.Path == defaults.Snapshot.Path {
		cfg.Snapshot.Path = filepath.Join(targetDir, defaults.Snapshot.Path)
	}

	logger := newLogger(cfg)
	s, err := openStore(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if cfg.Database.Driver == config.DriverPostgres {
		fmt.Fprintln(out, "✓ Initialized postgres database")
	} else {
		fmt.Fprintf(out, "✓ Initialized database at %s\n", cfg.Database.Path)
	}

	if _, err := os.Stat(cfg.Snapshot.Path); err == nil {
		if err := snapshot.Import(ctx, s, cfg.Snapshot.Path); err != nil {
			return fmt.Errorf("failed to import snapshot: %w", err)
		}
		fmt.Fprintf(out, "✓ Imported snapshot from %s\n", cfg.Snapshot.Path)
	}

	fmt.Fprintln(out, "✓ Tasker initialized successfully")
	return nil
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().Int("port", config.DefaultConfig().Server.Port, "Port to listen on")
	a.bind("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func (a *app) runServe(parent context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(contextOrBackground(parent), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer s.Close()

	projects, journal := newServices(s, logger)
	srv := server.New(projects, journal, server.Config{
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			s, err := openStore(contextOrBackground(cmd.Context()), cfg, logger, true)
			if err != nil {
				return err
			}
			defer s.Close()

			projects, journal := newServices(s, logger)
			return mcp.Serve(mcp.NewServer(projects, journal, Version))
		},
	}
}

func (a *app) listProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-projects",
		Short: "List projects with task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, _, err := a.readAll(contextOrBackground(cmd.Context()), false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-36s %-30s %-8s %-8s\n", "ID", "NAME", "ACTIVE", "BACKLOG")
			fmt.Fprintln(out, "------------------------------------------------------------------------------------")
			for _, p := range projects {
				fmt.Fprintf(out, "%-36s %-30s %-8d %-8d\n", p.ID, p.Name, len(p.Tasks), len(p.Backlog))
			}
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	var (
		width int
		pager bool
	)
	cmd := &cobra.Command{
		Use:   "status [project-id]",
		Short: "Show totals and the board of every project, or of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, entries, err := a.readAll(contextOrBackground(cmd.Context()), true)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				projects = filterProject(projects, args[0])
				if len(projects) == 0 {
					return fmt.Errorf("project not found: %s", args[0])
				}
			}
			if pager && isatty.IsTerminal(os.Stdout.Fd()) {
				var buf bytes.Buffer
				printStatus(&buf, projects, entries, width)
				return ui.RunPager("Tasker Status", buf.String())
			}
			printStatus(cmd.OutOrStdout(), projects, entries, width)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 60, "Width of the project boards")
	cmd.Flags().BoolVar(&pager, "pager", false, "Show the report in a scrollable view when on a terminal")
	return cmd
}

func filterProject(projects []*models.Project, id string) []*models.Project {
	for _, p := range projects {
		if p.ID == id {
			return []*models.Project{p}
		}
	}
	return nil
}

func printStatus(out io.Writer, projects []*models.Project, entries []*models.JournalEntry, width int) {
	var active, backlog, subtasks int
	statusCounts := map[string]int{}
	for _, p := range projects {
		active += len(p.Tasks)
		backlog += len(p.Backlog)
		for _, t := range p.AllTasks() {
			subtasks += len(t.Subtasks)
			status := t.Status
			if status == "" {
				status = "(none)"
			}
			statusCounts[status]++
		}
	}

	fmt.Fprintln(out, "Tasker Status")
	fmt.Fprintln(out, "=============")
	fmt.Fprintf(out, "Projects:        %d\n", len(projects))
	fmt.Fprintf(out, "Active Tasks:    %d\n", active)
	fmt.Fprintf(out, "Backlog Tasks:   %d\n", backlog)
	fmt.Fprintf(out, "Subtasks:        %d\n", subtasks)
	fmt.Fprintf(out, "Journal Entries: %d\n", len(entries))

	if len(statusCounts) > 0 {
		statuses := make([]string, 0, len(statusCounts))
		for s := range statusCounts {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)

		fmt.Fprintln(out, "\nTask Breakdown:")
		for _, s := range statuses {
			fmt.Fprintf(out, "  %-12s %d\n", s+":", statusCounts[s])
		}
	}

	for _, p := range projects {
		fmt.Fprintln(out)
		fmt.Fprintln(out, components.NewProjectBoard(p, width).View())
		fmt.Fprintf(out, "  %s\n", components.Summary(p))
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write a snapshot of the database (default snapshot.path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			path := cfg.Snapshot.Path
			if len(args) > 0 {
				path = args[0]
			}

			ctx := contextOrBackground(cmd.Context())
			s, err := openStore(ctx, cfg, newLogger(cfg), false)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := snapshot.Export(ctx, s, path); err != nil {
				return fmt.Errorf("failed to export snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported snapshot to %s\n", path)
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [path]",
		Short: "Replace the database contents with a snapshot (default snapshot.path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			path := cfg.Snapshot.Path
			if len(args) > 0 {
				path = args[0]
			}

			ctx := contextOrBackground(cmd.Context())
			s, err := openStore(ctx, cfg, newLogger(cfg), false)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := snapshot.Import(ctx, s, path); err != nil {
				return fmt.Errorf("failed to import snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported snapshot from %s\n", path)
			return nil
		},
	}
}

// readAll loads every project and, when withJournal is set, every journal
// entry.
func (a *app) readAll(ctx context.Context, withJournal bool) ([]*models.Project, []*models.JournalEntry, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := openStore(ctx, cfg, newLogger(cfg), false)
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if !withJournal {
		return projects, nil, nil
	}
	entries, err := s.ListJournalEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return projects, entries, nil
}

// contextOrBackground covers commands run from the menu, which have no
// context attached.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
