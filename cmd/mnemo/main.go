package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mnemo/internal/async"
	"mnemo/internal/config"
	"mnemo/internal/logging"
	"mnemo/internal/orchestrator"
	httpserver "mnemo/internal/server/http"
)

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Agentic long-term memory service",
	Long:  "mnemo learns durable user context from conversations and serves memory-augmented completions.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, app *App) error {
			return app.EnsureSchemas(ctx)
		})
	},
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Run one memory consolidation pass over all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, app *App) error {
			result, err := app.Consolidator.ConsolidateAll(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("scanned=%d clusters=%d merged=%d demoted=%d\n",
				result.Scanned, result.Clusters, result.Merged, result.Demoted)
			return nil
		})
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Delete expired episodic memories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, app *App) error {
			deleted, err := app.Decay.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("deleted=%d\n", deleted)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, consolidateCmd, decayCmd)
}

func main() {
	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp runs fn against a wired app with a signal-aware context, for the
// one-shot maintenance commands.
func withApp(fn func(ctx context.Context, app *App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app, err := NewApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app, err := NewApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.EnsureSchemas(ctx); err != nil {
		return fmt.Errorf("schema bootstrap: %w", err)
	}

	queue := async.NewQueue(app.Logger)
	queue.Start(ctx)
	defer queue.Close()

	orch, err := app.BuildOrchestrator(ctx, queue)
	if err != nil {
		return err
	}

	background := orchestrator.NewBackground(app.Decay, app.Consolidator, app.Logger)
	background.Start(ctx)

	server := httpserver.NewServer(orch, cfg.Port, app.Logger)
	return server.Run()
}
