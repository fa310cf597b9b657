// Command server runs the portal API: org administration, content and
// the document workflow, notification fan-out and the feed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	contenthandler "isleport/internal/content/handler"
	"isleport/internal/content/query"
	contentservice "isleport/internal/content/service"
	contentstore "isleport/internal/content/store"
	"isleport/internal/fanout"
	fanoutmetrics "isleport/internal/fanout/metrics"
	jwttoken "isleport/internal/jwt_token"
	notifhandler "isleport/internal/notification/handler"
	notifservice "isleport/internal/notification/service"
	notifstore "isleport/internal/notification/store"
	orghandler "isleport/internal/org/handler"
	orgservice "isleport/internal/org/service"
	orgstore "isleport/internal/org/store"
	"isleport/internal/platform/config"
	"isleport/internal/platform/httpserver"
	"isleport/internal/platform/logger"
	"isleport/internal/platform/metrics"
	"isleport/internal/platform/postgres"
	platformredis "isleport/internal/platform/redis"
	httptransport "isleport/internal/transport/http"
	"isleport/internal/visibility"
	"isleport/pkg/platform/tx"
)

const (
	shutdownTimeout = 10 * time.Second
	unreadCacheTTL  = 5 * time.Minute
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	var (
		orgStore     orgstore.Store
		contentStore contentstore.Store
		notifStore   notifstore.Store
		runner       tx.Runner = tx.NoopRunner{}
		checks       []httptransport.HealthCheck
	)

	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()

		orgStore = orgstore.NewPostgres(db)
		contentStore = contentstore.NewPostgres(db)
		notifStore = notifstore.NewPostgres(db)
		runner = tx.NewSQLRunner(db)
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
	} else {
		log.Warn("POSTGRES_URL not set, falling back to in-memory stores")
		mem := orgstore.NewInMemory()
		orgStore = mem
		contentStore = contentstore.NewInMemory(mem)
		notifStore = notifstore.NewInMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}

	var notifOpts []notifservice.Option
	if redisClient != nil {
		defer redisClient.Close()
		notifOpts = append(notifOpts,
			notifservice.WithUnreadCache(notifstore.NewUnreadCache(redisClient.Client, unreadCacheTTL)))
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	}
	notifSvc := notifservice.New(notifStore, log, notifOpts...)

	engineOpts := []fanout.Option{
		fanout.WithInvalidator(notifSvc),
		fanout.WithMetrics(fanoutmetrics.New(prometheus.DefaultRegisterer)),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := fanout.NewStreamPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		engineOpts = append(engineOpts, fanout.WithPublisher(publisher))
	}
	engine := fanout.NewEngine(orgStore, notifStore, log, engineOpts...)

	resolver := visibility.NewResolver(orgStore)
	orgSvc := orgservice.New(orgStore, log, orgservice.WithNotifier(engine))
	contentSvc := contentservice.New(contentStore, resolver, log,
		contentservice.WithNotifier(engine),
		contentservice.WithTxRunner(runner),
	)
	composer := query.NewComposer(resolver, contentStore)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:        log,
		Metrics:       metrics.New(),
		Validator:     jwttoken.NewJWTService(cfg.JWTSigningKey, "isleport", "isleport"),
		AdminToken:    cfg.AdminToken,
		Org:           orghandler.New(orgSvc),
		Content:       contenthandler.New(contentSvc, composer),
		Notifications: notifhandler.New(notifSvc),
		Checks:        checks,
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
