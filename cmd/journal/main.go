package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iammorganparry/journal/internal/api"
	"github.com/iammorganparry/journal/internal/config"
	"github.com/iammorganparry/journal/internal/journal"
	"github.com/iammorganparry/journal/internal/store"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "journal",
		Short:        "Liberal arts practice journal: daily memos, weekly reports, monthly presentations",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newInitCmd(), newStatsCmd(), newExportCmd())
	return rootCmd
}

// app holds everything a command needs once config is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *store.DB
	svc    *journal.Service
}

func (a *app) Close() error {
	return a.db.Close()
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// setup loads config and opens the store. Logs go to logOut so commands
// that print results on stdout keep it clean.
func setup(logOut io.Writer, overrides ...func(*config.Config)) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}
	logger := newLogger(logOut, cfg)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	recordStore := store.NewRecordStore(db)
	svc := journal.NewService(recordStore, cfg.ExportDir, loc, logger)

	return &app{cfg: cfg, logger: logger, db: db, svc: svc}, nil
}

// openReady is setup plus table creation, for the one-shot commands.
func openReady(cmd *cobra.Command, overrides ...func(*config.Config)) (*app, error) {
	a, err := setup(cmd.ErrOrStderr(), overrides...)
	if err != nil {
		return nil, err
	}
	if err := a.svc.Init(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web app",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(os.Stdout)
			if err != nil {
				return err
			}
			defer a.Close()
			logger := a.logger

			// A missing or unreachable database leaves the app up; /health
			// reports it and every page shows the error.
			if err := a.svc.Init(cmd.Context()); err != nil {
				logger.Warn("starting without initialized tables", "error", err)
			}

			router, err := api.NewRouter(a.svc, a.db, string(a.db.Backend()), api.NewSessionStore(), a.cfg.Passcode, logger)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%d", a.cfg.Port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			// Graceful shutdown
			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("journal server starting",
					"addr", addr,
					"backend", a.db.Backend(),
					"gated", a.cfg.Passcode != "",
				)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				logger.Error("server error", "error", err)
				return err
			case <-done:
			}
			logger.Info("shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("shutdown error", "error", err)
			}

			logger.Info("server stopped")
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the record tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openReady(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "tables ready (%s)\n", a.db.Backend())
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the number of records of each kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openReady(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.svc.Dashboard(cmd.Context())
			out := cmd.OutOrStdout()
			for _, c := range stats.Counts {
				fmt.Fprintf(out, "%-22s %d\n", c.Kind, c.Count)
			}
			fmt.Fprintf(out, "%-22s %d\n", "total", stats.Total)
			return err
		},
	}
}

func newExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export records as Markdown or CSV",
	}

	var output string
	markdownCmd := &cobra.Command{
		Use:   "markdown",
		Short: "Write the combined Markdown export",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openReady(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			md, err := a.svc.ExportMarkdown(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), md)
				return err
			}
			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	markdownCmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")

	var dir string
	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Write one CSV file per record kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openReady(cmd, func(c *config.Config) {
				if dir != "" {
					c.ExportDir = dir
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			paths, err := a.svc.WriteCSVFiles(cmd.Context())
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	csvCmd.Flags().StringVar(&dir, "dir", "", "directory for the CSV files (default JOURNAL_EXPORT_DIR)")

	exportCmd.AddCommand(markdownCmd, csvCmd)
	return exportCmd
}
