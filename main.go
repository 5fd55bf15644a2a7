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

	"lunch-menu/bot"
	"lunch-menu/config"
	"lunch-menu/db"
	"lunch-menu/events"
	"lunch-menu/logger"
	"lunch-menu/services"
	"lunch-menu/web"

	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "lunch-menu"
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(cfg)
		return
	}

	log := logger.New(serviceName, os.Stdout, cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("service_failed", "", "Service stopped with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("restaurant time zone: %w", err)
	}

	var (
		store     services.Store
		authStore services.AuthStore
		ping      func(context.Context) error
	)
	switch cfg.Storage {
	case "memory":
		mem := services.NewMemStore()
		store, authStore = mem, mem
		log.Warn("storage_memory", "", "Using in-memory storage; data is lost on restart")
	case "postgres", "":
		if err := db.Init(ctx, cfg.DB); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := applyMigrations(ctx, false); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations_applied", "", "Database migrations applied")
		}
		pg := services.NewPgStore()
		store, authStore, ping = pg, pg, db.Ping
	default:
		return fmt.Errorf("unknown STORAGE %q (want postgres or memory)", cfg.Storage)
	}

	var publisher services.EventPublisher = services.NopEvents
	if cfg.RabbitMQ.URL != "" {
		p, err := events.Dial(cfg.RabbitMQ.URL, log)
		if err != nil {
			log.Error("rabbitmq_unavailable", "", "Order events disabled", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	var mailer services.Mailer
	if cfg.SMTP.Host != "" {
		mailer = services.NewSMTPMailer(cfg.SMTP)
	}
	auth := services.NewAuth(authStore, mailer, services.AuthOptions{
		SessionTTL: cfg.Auth.SessionTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
		ResetURL:   cfg.HTTP.PublicURL + "/admin/reset-password",
	}, log)
	generated, err := auth.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if generated != "" {
		fmt.Fprintf(os.Stderr, "Admin %s created with password: %s\n", cfg.Auth.AdminEmail, generated)
	}

	monitor := services.NewStatusMonitor(store, loc, cfg.Restaurant.StatusPollInterval, log)
	orders := services.NewOrderBook(store, publisher, log)

	var (
		notifier services.Notifier = services.NopNotifier
		staffBot *bot.StaffBot
	)
	if cfg.Telegram.MessageToken != "" {
		staffBot, err = bot.NewStaffBot(cfg.Telegram, loc, orders, log)
		if err != nil {
			return fmt.Errorf("staff bot: %w", err)
		}
		notifier = staffBot
	}

	carts := services.NewCartBook(cfg.Restaurant.CartTTL)
	workflow := services.NewOrderWorkflow(store, monitor, publisher, notifier, log)

	server := web.NewServer(web.Deps{
		Catalog:        services.NewCatalog(store),
		Ordering:       services.NewOrdering(store, carts, monitor, workflow),
		Orders:         orders,
		Hours:          services.NewHours(store, monitor, log),
		Status:         monitor,
		Auth:           auth,
		Log:            log,
		Location:       loc,
		RestaurantName: cfg.Restaurant.Name,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		SecureCookies:  cfg.HTTP.SecureCookies,
		Ping:           ping,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return monitor.Run(gctx) })
	g.Go(func() error {
		carts.RunSweeper(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error { return auth.RunSessionJanitor(gctx, time.Hour) })
	if staffBot != nil {
		g.Go(func() error { return staffBot.Run(gctx) })
	}
	g.Go(func() error {
		log.Info("http_started", "", "HTTP server listening", slog.Int("port", cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("http_stopping", "", "Shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runMigrate(cfg *config.Config) {
	ctx := context.Background()
	if err := db.Init(ctx, cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := applyMigrations(ctx, true); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
