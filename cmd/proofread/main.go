// Command proofread checks English grammar with an LLM and streams the
// correction into a single message that is edited as the answer arrives.
//
// Usage:
//
//	TELEGRAM_BOT_TOKEN=... OPENAI_API_KEY=sk-... proofread [flags]
//	ANTHROPIC_API_KEY=sk-... proofread -mode console
//
// Flags:
//
//	-config string     Path to a TOML config file
//	-mode string       Front-end: telegram, serve, console (default: telegram)
//	-provider string   Provider: openai, anthropic, gemini (auto-detected from env vars if omitted)
//	-model string      Model ID (default: provider default)
//	-api-key string    API key (overrides provider's env var)
//	-addr string       HTTP listen address for health, metrics and the websocket API
//	-log-level string  debug, info, warn or error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/fwojciec/proofread/bot"
	bt "github.com/fwojciec/proofread/bubbletea"
	"github.com/fwojciec/proofread/httpapi"
	"github.com/fwojciec/proofread/i18n"
	"github.com/fwojciec/proofread/metrics"
	"github.com/fwojciec/proofread/postgres"
	"github.com/fwojciec/proofread/sqlite"
	"github.com/fwojciec/proofread/telegram"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "proofread: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   = flag.String("config", "", "Path to a TOML config file")
		mode         = flag.String("mode", "", "Front-end: telegram, serve, console")
		providerFlag = flag.String("provider", "", "Provider: openai, anthropic, gemini (auto-detected from env vars if omitted)")
		model        = flag.String("model", "", "Model ID (provider-specific)")
		apiKey       = flag.String("api-key", "", "API key (overrides provider's env var)")
		addr         = flag.String("addr", "", "HTTP listen address")
		logLevel     = flag.String("log-level", "", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, os.Getenv, overrides{
		Mode:     *mode,
		Provider: *providerFlag,
		Model:    *model,
		Addr:     *addr,
		LogLevel: *logLevel,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The console owns the terminal; logging there would corrupt the view.
	var logOut io.Writer = os.Stderr
	if cfg.Mode == modeConsole {
		logOut = io.Discard
	}
	logger, err := newLogger(logOut, cfg.LogLevel)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg.LocalesDir)
	if err != nil {
		return err
	}
	lang, err := catalog.Parse(cfg.Language)
	if err != nil {
		return fmt.Errorf("config: language: %w", err)
	}

	// Resolve provider. Env vars are read here and passed as values.
	provider, err := resolveProvider(ctx, cfg.Provider, *apiKey, cfg.Model, apiKeys{
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		Gemini:    os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg, "proofread")

	relay := proofread.NewRelay(provider, catalog,
		proofread.WithInterval(cfg.Interval.Duration),
		proofread.WithDeadline(cfg.Deadline.Duration),
		proofread.WithLogger(logger),
		proofread.WithObserver(m),
	)

	api := httpapi.New(relay, catalog,
		httpapi.WithLogger(logger),
		httpapi.WithMaxWords(cfg.MaxWords),
		httpapi.WithMetricsHandler(metrics.Handler(reg)),
		httpapi.WithAllowAnyOrigin(cfg.AllowAnyOrigin),
	)

	switch cfg.Mode {
	case modeConsole:
		tui := bt.New(bt.RelayRunFunc(relay, catalog, lang), catalog, proofread.DefaultTheme(),
			bt.WithLanguage(lang),
			bt.WithMaxWords(cfg.MaxWords),
		)
		if err := bt.Run(ctx, tui); err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
		return nil
	case modeServe:
		return serveHTTP(ctx, cfg.Addr, api.Router(), logger)
	default:
		return runTelegram(ctx, cfg, relay, catalog, api.Router(), logger)
	}
}

func runTelegram(ctx context.Context, cfg config, relay *proofread.Relay, catalog *i18n.Catalog, handler http.Handler, logger *slog.Logger) error {
	prefs, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	client := telegram.New(cfg.Telegram.Token,
		telegram.WithRateLimit(cfg.Telegram.RateLimit, cfg.Telegram.Burst),
	)
	b := bot.New(client, relay, catalog, prefs,
		bot.WithLogger(logger),
		bot.WithMaxWords(cfg.MaxWords),
		bot.WithPollTimeout(cfg.Telegram.PollTimeout.Duration),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("bot started")
		return b.Run(gctx)
	})
	g.Go(func() error {
		return serveHTTP(gctx, cfg.Addr, handler, logger)
	})
	return g.Wait()
}

// openStore opens the language preference store: PostgreSQL when a
// database URL is configured, SQLite otherwise.
func openStore(ctx context.Context, cfg storeConfig) (proofread.PreferenceStore, func(), error) {
	if cfg.DatabaseURL != "" {
		store, pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}
	store, err := sqlite.Open(ctx, cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// serveHTTP serves handler on addr until ctx is done, then shuts down
// gracefully.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http: %w", err)
	}
}

func loadCatalog(dir string) (*i18n.Catalog, error) {
	if dir == "" {
		return i18n.Default()
	}
	return i18n.LoadDir(dir)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
