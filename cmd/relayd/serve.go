package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/graphql-go/handler"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const _shutdownTimeout = 5 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the GraphQL endpoint on /graphql",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.Int("max-limit", 100, "maximum first/last, -1 disables the limit")
	flags.String("args-policy", "default-first", `policy without first/last: "unbounded", "require" or "default-first"`)
	flags.String("stale-policy", "reset", `policy for cursors of missing records: "reset", "empty" or "error"`)
	bindFlags(v, flags, map[string]string{
		"http.addr":            "addr",
		"pagination.max_limit": "max-limit",
		"pagination.policy":    "args-policy",
		"pagination.stale":     "stale-policy",
	})

	return cmd
}

func serve(ctx context.Context, cfg Config, logger *logrus.Logger) error {
	return withDB(cfg.Database, logger, func(db *gorm.DB) error {
		return serveDB(ctx, db, cfg, logger)
	})
}

func serveDB(ctx context.Context, db *gorm.DB, cfg Config, logger *logrus.Logger) error {
	h, err := newHandler(db, cfg.Pagination, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.WithField("addr", cfg.HTTP.Addr).Info("serving graphql")

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cannot shut down: %w", err)
	}

	return nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Author{}, &Post{}); err != nil {
		return fmt.Errorf("cannot migrate database: %w", err)
	}

	return nil
}

func newHandler(db *gorm.DB, cfg PaginationConfig, logger *logrus.Logger) (*handler.Handler, error) {
	opts, err := cfg.options(logger)
	if err != nil {
		return nil, err
	}

	s, err := buildSchema(db, opts, logger)
	if err != nil {
		return nil, err
	}

	return handler.New(&handler.Config{
		Schema:   &s,
		Pretty:   true,
		GraphiQL: true,
	}), nil
}
