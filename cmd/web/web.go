package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/navbryce/next-social-be/config"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/db/memory"
	"github.com/navbryce/next-social-be/db/planetscale"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/routes"
	"github.com/navbryce/next-social-be/services"
	"github.com/navbryce/next-social-be/util"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "next-social-be"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	logger, err := util.InitLogger(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OtelEndpoint != "" {
		tp, err := initTracer(ctx, cfg)
		if err != nil {
			logger.Error("failed to init tracer", zap.Error(err))
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	database, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal("received err when attempting to connect to DB", zap.Error(err))
	}
	defer database.Close()

	postCache, closeCache, err := openPostCache(ctx, cfg)
	if err != nil {
		logger.Fatal("unable to connect to redis", zap.Error(err))
	}
	defer closeCache()

	bus, closeBus, err := openBus(cfg)
	if err != nil {
		logger.Fatal("unable to connect to nats", zap.Error(err))
	}
	defer closeBus()

	var app *firebase.App
	if cfg.Auth.Mode == config.AuthModeFirebase || cfg.Bucket != "" {
		if err := configureFirebaseCredentials(); err != nil {
			logger.Fatal("an error occurred while configuring firebase credentials", zap.Error(err))
		}
		if app, err = firebase.NewApp(ctx, nil); err != nil {
			logger.Fatal("error initializing firebase", zap.Error(err))
		}
	}

	verifier, err := newVerifier(ctx, cfg, app)
	if err != nil {
		logger.Fatal("error initializing auth", zap.Error(err))
	}

	var uploader services.Uploader = &services.DiskUploader{Dir: cfg.UploadDir}
	if cfg.Bucket != "" {
		if uploader, err = services.NewStorageBucket(ctx, app, cfg.Bucket); err != nil {
			logger.Fatal("an error occurred while connecting to the user uploads bucket", zap.Error(err))
		}
	}

	fanout := controllers.NewFanoutDispatcher(bus, &controllers.FanoutOpts{
		Workers:  cfg.Fanout.Workers,
		MaxTries: cfg.Fanout.MaxTries,
	})

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.FEOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	routes.AddHealthCheckRoutes(&r.RouterGroup, database)
	routes.AddMetricsRoutes(&r.RouterGroup)

	api := r.Group("/api", middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	routes.AddPostRoutes(api, database, verifier, controllers.NewPostController(database, postCache, uploader, fanout))
	routes.AddInteractionRoutes(api, database, verifier, controllers.NewInteractionController(database, postCache))
	routes.AddDirectRoutes(api, database, verifier, controllers.NewDirectController(database, fanout))
	routes.AddUserRoutes(api, database, verifier, controllers.NewUserController(database, uploader))
	routes.AddFollowRoutes(api, database, verifier, controllers.NewFollowController(database))
	routes.AddFeedRoutes(api, database, verifier, controllers.NewExploreController(database))
	routes.AddNotificationRoutes(api, database, verifier, controllers.NewNotificationController(database))
	streams, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()
	routes.AddRealtimeRoutes(api, database, verifier, bus, streams.Done())

	// WriteTimeout stays unset: realtime streams are long lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Shutdown does not cancel in-flight requests; end the realtime streams ourselves.
	srv.RegisterOnShutdown(stopStreams)

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("error when attempting to run web server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	fanout.Wait()
}

func openDatabase(cfg *config.Config) (db.Database, error) {
	if cfg.Store == config.StoreMemory {
		util.Log.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	}
	database, err := planetscale.GetDatabase(&cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.RunMigrations {
		if err := planetscale.MigrationsUp(database.GetSQLDB()); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	return database, nil
}

func openPostCache(ctx context.Context, cfg *config.Config) (services.PostCache, func(), error) {
	if cfg.RedisAddr == "" {
		return services.NewMemoryPostCache(), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, nil, err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}
	return services.NewRedisPostCache(rdb, cfg.CacheTTL), func() { _ = rdb.Close() }, nil
}

func openBus(cfg *config.Config) (services.Bus, func(), error) {
	if cfg.NatsUrl == "" {
		return services.NewMemoryBus(), func() {}, nil
	}
	nc, err := nats.Connect(cfg.NatsUrl, nats.Name(serviceName))
	if err != nil {
		return nil, nil, err
	}
	return services.NewNatsBus(nc, cfg.NatsPrefix), func() { _ = nc.Drain() }, nil
}

func newVerifier(ctx context.Context, cfg *config.Config, app *firebase.App) (middleware.TokenVerifier, error) {
	if cfg.Auth.Mode == config.AuthModeJWT {
		return middleware.NewJWTVerifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer), nil
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return middleware.NewFirebaseVerifier(authClient), nil
}

func initTracer(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", cfg.Env),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}

const (
	CredentialsPathEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
	CredentialsJsonEnvVar = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	TargetCredentialsFile = "./google-application-credentials.json"
)

func configureFirebaseCredentials() error {
	credentialsPath, hasCredentialsPath := os.LookupEnv(CredentialsPathEnvVar)
	if hasCredentialsPath {
		util.Log.Info("credentials path detected in env", zap.String("path", credentialsPath))
		return nil
	}
	credentialsJson, hasCredentialsJson := os.LookupEnv(CredentialsJsonEnvVar)
	if hasCredentialsJson {
		util.Log.Info("credentials JSON string detected in env")
		err := os.WriteFile(TargetCredentialsFile, []byte(credentialsJson), 0o400)
		if err != nil {
			return fmt.Errorf("error writing credentials to temp file, %w", err)
		}
		err = os.Setenv(CredentialsPathEnvVar, TargetCredentialsFile)
		if err != nil {
			return fmt.Errorf("error setting %v env var %w", CredentialsPathEnvVar, err)
		}
		return nil
	}
	return fmt.Errorf("must specify either %v (a path)"+
		" or %v (credentials as JSON string)", CredentialsPathEnvVar, CredentialsJsonEnvVar)
}
