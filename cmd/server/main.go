package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/talentpipe/crm/modules"
	corepersistence "github.com/talentpipe/crm/modules/core/infrastructure/persistence"
	"github.com/talentpipe/crm/modules/core/seed"
	"github.com/talentpipe/crm/pkg/application"
	"github.com/talentpipe/crm/pkg/configuration"
	"github.com/talentpipe/crm/pkg/eventbus"
	"github.com/talentpipe/crm/pkg/logging"
	"github.com/talentpipe/crm/pkg/metrics"
	"github.com/talentpipe/crm/pkg/middleware"
	"github.com/talentpipe/crm/pkg/server"
)

func main() {
	seedTenant := flag.String("seed", "", "tenant uuid to seed a bootstrap admin profile for")
	flag.Parse()

	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := app.Migrations().Apply(ctx); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	if *seedTenant != "" {
		tenantID, err := uuid.Parse(*seedTenant)
		if err != nil {
			log.Fatalf("invalid --seed tenant id: %v", err)
		}
		if err := seed.AdminUser(ctx, app, tenantID); err != nil {
			log.Fatalf("failed to seed admin profile: %v", err)
		}
		logger.WithField("tenant_id", tenantID).Info("seeded admin profile")
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   conf.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", conf.TenantIDHeader, conf.RequestIDHeader},
		AllowCredentials: true,
	})
	app.RegisterMiddleware(
		corsHandler.Handler,
		middleware.WithLogger(logger),
		middleware.WithPool(pool),
		middleware.Authorize(),
		middleware.ProvideUser(corepersistence.NewUserRepository()),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewHTTPServer(app, notFoundHandler(), methodNotAllowedHandler())
	logger.Infof("listening on %s", conf.SocketAddress)
	if err := srv.Start(runCtx, conf.SocketAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	conf.Unload()
}
