package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/hrdesk/internal/server"
	"github.com/iota-uz/hrdesk/pkg/configuration"
	"github.com/iota-uz/hrdesk/pkg/logging"
	"github.com/iota-uz/hrdesk/pkg/metrics"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.OpenTelemetry.Enabled {
		shutdown, err := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
		if err != nil {
			log.Fatalf("failed to set up tracing: %v", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(flushCtx)
		}()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
	}

	rt, err := server.NewRuntime(ctx, conf)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	defer rt.Close()

	if err := rt.App.Migrations().Run(ctx); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	if conf.Prometheus.Enabled {
		rt.App.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, logger))
	}

	srv, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   rt.App,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	registry := rt.HRM.Registry()
	g.Go(func() error {
		registry.StartRefresh(gctx, conf.Cache.RefreshInterval)
		return nil
	})
	if conf.RedisURL != "" {
		opts, err := redis.ParseURL(conf.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		bridge := querycache.NewRedisBridge(client, conf.Cache.RedisChannel, logger.WithField("component", "querycache"))
		registry.AttachBridge(bridge)
		g.Go(func() error {
			return bridge.Run(gctx)
		})
	}
	g.Go(func() error {
		log.Printf("Listening on: %s\n", conf.Origin)
		return srv.Start(conf.SocketAddress)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
