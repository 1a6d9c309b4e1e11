// Command api runs the Bikerlight store HTTP API.
//
//	@title						Bikerlight Store API
//	@version					1.0
//	@description				Smart-jacket store: catalog, cart, checkout, subscriptions, invoices and jacket telemetry.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bikerlight/store-api/internal/api"
	"github.com/bikerlight/store-api/internal/api/handler"
	"github.com/bikerlight/store-api/internal/core/ports"
	"github.com/bikerlight/store-api/internal/core/service"
	"github.com/bikerlight/store-api/internal/infrastructure/config"
	mongodb "github.com/bikerlight/store-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bikerlight/store-api/internal/infrastructure/db/redis"
	"github.com/bikerlight/store-api/internal/infrastructure/db/sqldb"
	"github.com/bikerlight/store-api/internal/infrastructure/http/handlers"
	"github.com/bikerlight/store-api/internal/infrastructure/payment/paypal"
	"github.com/bikerlight/store-api/internal/infrastructure/pdf"
	"github.com/bikerlight/store-api/internal/infrastructure/queue"
	"github.com/bikerlight/store-api/internal/infrastructure/storage"
	"github.com/bikerlight/store-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Pretty: true})
		boot.Fatal().Err(err).Msg("configuration error")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Output:  os.Stdout,
		Service: "store-api",
	})

	// --- Relational store ---
	db, err := sqldb.Open(ctx, sqldb.Config{Driver: cfg.DB.Driver, URL: cfg.DB.URL})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("could not open database")
	}
	defer db.Close()
	if err := sqldb.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("could not migrate database")
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("database ready")

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("could not connect to redis")
	}
	defer rdb.Close()

	// --- MongoDB ---
	mongoClient, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	telemetryRepo := mongodb.NewTelemetryRepository(mdb)
	if err := telemetryRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not create telemetry indexes")
	}

	// --- Image storage ---
	var (
		images    ports.ImageStore
		uploadDir string
	)
	switch cfg.Storage.Driver {
	case "s3":
		images, err = storage.NewS3Store(ctx, cfg.Storage.S3Bucket, cfg.Storage.AWSRegion, cfg.Storage.S3PublicURL)
	default:
		var local *storage.LocalStore
		local, err = storage.NewLocalStore(cfg.Storage.UploadDir)
		if local != nil {
			images, uploadDir = local, local.Dir()
		}
	}
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("could not initialise image storage")
	}

	// --- Repositories ---
	users := sqldb.NewUserRepository(db)
	sessions := sqldb.NewSessionRepository(db)
	products := sqldb.NewProductRepository(db)
	carts := sqldb.NewCartRepository(db)
	sales := sqldb.NewSaleRepository(db)
	subscriptions := sqldb.NewSubscriptionRepository(db)
	txm := sqldb.NewTxManager(db)

	// --- Services ---
	catalogSvc := service.NewCatalogService(products, redisdb.NewCatalogCache(rdb, cfg.Redis.CacheTTL), images, logger.Component("catalog"))
	cartSvc := service.NewCartService(carts, products, logger.Component("cart"))
	checkoutSvc := service.NewCheckoutService(txm, catalogSvc, logger.Component("checkout"))
	subscriptionSvc := service.NewSubscriptionService(txm, subscriptions, sales, logger.Component("subscriptions"))
	authSvc := service.NewAuthService(users, sessions, subscriptionSvc, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	saleSvc := service.NewSaleService(sales)
	invoiceSvc := service.NewInvoiceService(users, saleSvc, pdf.NewInvoiceRenderer(), logger.Component("invoices"))
	gateway := paypal.NewClient(paypal.Config{
		ClientID: cfg.PayPal.ClientID,
		Secret:   cfg.PayPal.Secret,
		BaseURL:  cfg.PayPal.BaseURL,
		Currency: cfg.PayPal.Currency,
	}, logger.Component("paypal"))
	paymentSvc := service.NewPaymentService(gateway, carts, checkoutSvc, logger.Component("payments"))
	reportSvc := service.NewReportService(sqldb.NewReportRepository(db))
	routeSvc := service.NewRouteService(sqldb.NewRouteRepository(db), logger.Component("routes"))
	telemetrySvc := service.NewTelemetryService(
		telemetryRepo,
		redisdb.NewDedupChecker(rdb),
		cfg.IoT.DefaultDevice,
		cfg.IoT.SampleWindow,
		logger.Component("telemetry"),
	)

	// --- Background workers ---
	g, gctx := errgroup.WithContext(ctx)

	dispatcher := queue.NewDispatcher(cfg.IoT.Workers, telemetrySvc, logger.Component("telemetry.dispatcher"))
	dispatcher.Start(gctx)

	if len(cfg.Kafka.Brokers) > 0 {
		writer := queue.NewKafkaWriter(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer writer.Close()
		poller := queue.NewOutboxPoller(sqldb.NewOutboxRepository(db), writer, cfg.Kafka.PollInterval, logger.Component("outbox"))
		g.Go(func() error {
			poller.Run(gctx)
			return nil
		})
	} else {
		log.Warn().Msg("KAFKA_BROKERS not set; outbox events stay pending")
	}

	// --- HTTP ---
	e := api.NewRouter(api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		DeviceKey: cfg.IoT.DeviceKey,
		Sessions:  authSvc,
		UploadDir: uploadDir,
		Log:       logger.Component("http"),
	}, api.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Catalog:      handler.NewCatalogHandler(catalogSvc),
		Cart:         handler.NewCartHandler(cartSvc),
		Checkout:     handler.NewCheckoutHandler(checkoutSvc),
		Payment:      handler.NewPaymentHandler(paymentSvc),
		Subscription: handler.NewSubscriptionHandler(subscriptionSvc),
		Sale:         handler.NewSaleHandler(saleSvc),
		Invoice:      handler.NewInvoiceHandler(invoiceSvc),
		Route:        handler.NewRouteHandler(routeSvc),
		Report:       handler.NewReportHandler(reportSvc),
		Telemetry:    handler.NewTelemetryHandler(dispatcher, telemetrySvc),
		Health:       handlers.NewHealthHandler(),
		Readiness: handlers.NewHealthDependenciesHandler(map[string]handlers.Check{
			"database": handlers.SQLCheck(db.DB),
			"redis":    handlers.RedisCheck(rdb),
			"mongodb":  handlers.MongoCheck(mdb),
		}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(e, "store-api"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server exited")
}
