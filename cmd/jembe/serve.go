package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Jembe/jembe-sub000"
	"github.com/Jembe/jembe-sub000/internal/config"
	"github.com/Jembe/jembe-sub000/internal/metrics"
	"github.com/Jembe/jembe-sub000/internal/presentation/tui"
	"github.com/Jembe/jembe-sub000/pkg/adapters/file"
	httpAdapter "github.com/Jembe/jembe-sub000/pkg/adapters/http"
	"github.com/Jembe/jembe-sub000/pkg/adapters/memory"
	redisAdapter "github.com/Jembe/jembe-sub000/pkg/adapters/redis"
	"github.com/Jembe/jembe-sub000/pkg/persistence/middleware"
	"github.com/Jembe/jembe-sub000/pkg/ports"
	"github.com/Jembe/jembe-sub000/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the headless driver API",
	Long: `Starts an HTTP server that drives one jembe client per session: pages
are loaded, commands queued and flushed against the configured producer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if cfg.BaseURL == "" {
			return errors.New("base_url is not configured")
		}

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		history, locker, closeHistory, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		transport := newTransport(cfg)
		factory := func(sessionID string) (*jembe.Client, error) {
			sessionLogger := logger.With("session", sessionID)
			return jembe.New(
				jembe.WithLogger(sessionLogger),
				jembe.WithBinder(newBinders(sessionLogger)),
				jembe.WithTransport(transport),
				jembe.WithUploader(transport),
				jembe.WithHistory(history, sessionID),
				jembe.WithMetrics(m),
				jembe.WithRefreshAction(cfg.RefreshAction),
			), nil
		}

		opts := []session.Option{session.WithLogger(logger)}
		if locker != nil {
			opts = append(opts, session.WithLocker(locker, cfg.Timeout))
		}
		mgr := session.NewManager(factory, opts...)

		handler := httpAdapter.NewHandler(mgr,
			httpAdapter.WithFetcher(transport),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithServerLogger(logger),
		)

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(jembe.Version))
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting driver api", "addr", srv.Addr, "producer", cfg.BaseURL, "history", cfg.History.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("failed to close server", "error", err)
				}
			}
			closeSessions(ctx, mgr, logger)
			logger.Info("driver api stopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on; overrides server.addr")
}

func newTransport(cfg config.Config) *httpAdapter.Transport {
	opts := []httpAdapter.TransportOption{
		httpAdapter.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.UploadURL != "" {
		opts = append(opts, httpAdapter.WithUploadURL(cfg.UploadURL))
	}
	return httpAdapter.NewTransport(cfg.BaseURL, opts...)
}

// openHistory builds the configured history backend. The redis backend also
// provides the distributed session locker.
func openHistory(cfg config.Config) (ports.HistoryStore, ports.DistributedLocker, func(), error) {
	switch cfg.History.Backend {
	case "redis":
		rc := cfg.History.Redis
		client := goredis.NewClient(&goredis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("failed to reach redis at %s: %w", rc.Addr, err)
		}
		opts := []redisAdapter.Option{redisAdapter.WithPrefix(rc.Prefix)}
		if rc.TTL > 0 {
			opts = append(opts, redisAdapter.WithTTL(rc.TTL))
		}
		store := redisAdapter.NewFromClient(client, opts...)
		locker := redisAdapter.NewLocker(client, rc.Prefix)
		protected, err := protectHistory(cfg.History, store)
		if err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
		return protected, locker, func() { _ = store.Close() }, nil
	case "file":
		protected, err := protectHistory(cfg.History, file.New(cfg.History.Dir))
		if err != nil {
			return nil, nil, nil, err
		}
		return protected, nil, func() {}, nil
	default:
		protected, err := protectHistory(cfg.History, memory.NewHistoryStore())
		if err != nil {
			return nil, nil, nil, err
		}
		return protected, nil, func() {}, nil
	}
}

// protectHistory masks redacted keys first, then encrypts what remains.
func protectHistory(h config.History, store ports.HistoryStore) (ports.HistoryStore, error) {
	var mws []middleware.Middleware
	if len(h.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(h.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	key, err := h.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(store, mws...), nil
}

func closeSessions(ctx context.Context, mgr *session.Manager, logger *slog.Logger) {
	for _, id := range mgr.List() {
		if err := mgr.Close(ctx, id); err != nil {
			logger.Warn("failed to close session", "session", id, "error", err)
		}
	}
}
