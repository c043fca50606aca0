package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/spimex-view/internal/api"
	"github.com/kjannette/spimex-view/internal/config"
	"github.com/kjannette/spimex-view/internal/external"
	"github.com/kjannette/spimex-view/internal/logging"
	"github.com/kjannette/spimex-view/internal/metrics"
	"github.com/kjannette/spimex-view/internal/notifications"
	"github.com/kjannette/spimex-view/internal/session"
	"github.com/kjannette/spimex-view/internal/view"
)

const banner = `
╔══════════════════════════════════════╗
║     Spimex Trading Results View      ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cfg.Print()

	m := metrics.New()
	client := external.NewTradingClient(cfg.TradingAPIURL, cfg.TradingAPITimeout, m)

	renderer, err := view.NewRenderer(view.MessagesFor(cfg.Locale))
	if err != nil {
		slog.Error("template setup failed", "error", err)
		os.Exit(1)
	}

	defaults := view.Defaults{
		DateRangeDays: cfg.DateRangeDays,
		DatesLimit:    cfg.DatesLimitDefault,
		ResultsLimit:  cfg.ResultsLimitDefault,
	}
	sessions := session.NewStore(func() *view.Controller {
		page := view.NewPage(time.Now(), defaults, renderer.Messages())
		return view.NewController(page, client, renderer)
	}, session.Config{
		IdleTimeout:   cfg.SessionIdleTimeout,
		SweepInterval: cfg.SessionSweepInterval,
	}, m)

	alerts := notifications.NewSender(cfg.WebhookURL, cfg.BotName, cfg.AlertCooldown)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := client.Ping(pingCtx); err != nil {
		slog.Warn("trading API not reachable yet", "url", cfg.TradingAPIURL, "error", err)
	}
	cancel()

	srv := api.NewServer(api.Deps{
		Sessions: sessions,
		Upstream: client,
		Metrics:  m,
		Alerts:   alerts,
	}, cfg.Addr(), cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sessions.Start()

	slog.Info("all services started")

	<-ctx.Done()
	slog.Info("shutting down gracefully")

	sessions.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("shutdown complete")
}
