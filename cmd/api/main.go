package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"lessonhub/pkg/api"
	"lessonhub/pkg/config"
	lessonmongo "lessonhub/pkg/lesson/mongostore"
	"lessonhub/pkg/logger"
	"lessonhub/pkg/metrics"
	"lessonhub/pkg/mongodb"
	"lessonhub/pkg/order"
	ordermongo "lessonhub/pkg/order/mongostore"
	pg "lessonhub/pkg/order/postgres"
	"lessonhub/pkg/order/redisstream"
	"lessonhub/pkg/otel"
)

var build = "develop"

// @title Lessonhub API
// @version 1.0
// @description Lesson catalog and order intake
// @host localhost:3000
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serveCmd := func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), configPath)
	}

	root := &cobra.Command{
		Use:          "lessonhub",
		Short:        "Lesson catalog and order intake API",
		SilenceUsage: true,
		RunE:         serveCmd,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "dbconnection.properties", "properties file with db.* and server settings")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Connect to MongoDB and serve the HTTP API",
		RunE:  serveCmd,
	})
	root.AddCommand(newSeedCmd(&configPath))

	return root
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	lvl, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log := logger.New(os.Stdout, lvl, cfg.Telemetry.ServiceName, otel.GetTraceID)
	defer log.Sync()

	log.Info(ctx, "startup", "build", build)
	if err := run(ctx, log, cfg); err != nil {
		log.Error(ctx, "startup", "error", err)
		return err
	}
	return nil
}

func run(ctx context.Context, log *logger.Logger, cfg *config.Config) error {
	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Host:        cfg.Telemetry.OTelHost,
		Probability: cfg.Telemetry.Probability,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	// -------------------------------------------------------------------------
	// Database. The listener is not started until the server has answered.

	log.Info(ctx, "startup", "status", "connecting to mongodb", "db", cfg.DB.Name)
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:            cfg.DB.ConnectionURI(),
		Database:       cfg.DB.Name,
		ConnectTimeout: cfg.DB.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("connecting to mongodb: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error(ctx, "shutdown", "status", "mongodb disconnect", "error", err)
		}
	}()
	log.Info(ctx, "startup", "status", "connected to mongodb")

	checks := []api.HealthCheck{{
		Name:     "mongodb",
		Required: true,
		Check:    func(ctx context.Context) error { return mongodb.Ping(ctx, client) },
	}}

	orders, orderChecks, closeOrders, err := newOrderRepository(ctx, log, cfg, db)
	if err != nil {
		return err
	}
	defer closeOrders()
	checks = append(checks, orderChecks...)

	var notifier order.Notifier
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		notifier = redisstream.New(rdb, cfg.Redis.Stream, 100_000)
		checks = append(checks, api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		log.Info(ctx, "startup", "status", "order announcements enabled", "stream", cfg.Redis.Stream)
	}

	// -------------------------------------------------------------------------
	// API

	srv, err := api.NewServer(api.Config{
		Log:       log,
		Lessons:   lessonmongo.New(db),
		Orders:    orders,
		Notifier:  notifier,
		ImagesDir: cfg.Images.Dir,
		Metrics:   metrics.New(),
		Tracer:    tp.Tracer(cfg.Telemetry.ServiceName),
		Origins:   cfg.CORS.Origins,
		Checks:    checks,
	})
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(ctx, "startup", "status", "api router started", "addr", httpSrv.Addr)
		serverErrors <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		log.Info(ctx, "shutdown", "status", "shutdown started")
		defer log.Info(ctx, "shutdown", "status", "shutdown complete")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpSrv.Shutdown(sctx); err != nil {
			httpSrv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func newOrderRepository(ctx context.Context, log *logger.Logger, cfg *config.Config, db *mongo.Database) (order.Repository, []api.HealthCheck, func(), error) {
	if cfg.Orders.Backend != config.BackendPostgres {
		return ordermongo.New(db), nil, func() {}, nil
	}

	sqlDB, err := sql.Open("postgres", cfg.Orders.PostgresURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	repo := pg.New(sqlDB)
	if err := repo.EnsureSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, nil, err
	}
	log.Info(ctx, "startup", "status", "orders stored in postgres")

	check := api.HealthCheck{Name: "postgres", Required: true, Check: sqlDB.PingContext}
	return repo, []api.HealthCheck{check}, func() { sqlDB.Close() }, nil
}
