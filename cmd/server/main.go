package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/murtaza309/streemza/account"
	"github.com/murtaza309/streemza/app_config"
	"github.com/murtaza309/streemza/catalog"
	"github.com/murtaza309/streemza/comment"
	"github.com/murtaza309/streemza/engagement"
	"github.com/murtaza309/streemza/live"
	"github.com/murtaza309/streemza/media"
	"github.com/murtaza309/streemza/metrics"
	"github.com/murtaza309/streemza/notification"
	"github.com/murtaza309/streemza/server"
	. "github.com/murtaza309/streemza/utils"
	"github.com/murtaza309/streemza/utils/dotenv"
	. "github.com/murtaza309/streemza/utils/flag"
	. "github.com/murtaza309/streemza/utils/log"
	"github.com/murtaza309/streemza/worker"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

const (
	shutdownTimeout = 10 * time.Second
	devJwtSecret    = "streemza-development-secret"
)

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func jwtSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret != "" {
		return secret
	}
	if dotenv.IsProdEnv() {
		Log.Fatal("JWT_SECRET must be set in production")
	}
	Log.Warn("JWT_SECRET not set, using the development secret")
	return devJwtSecret
}

func newStatsd(config app_config.ServerAppConfig) statsd.ClientInterface {
	if config.STATSD_ADDR == "" {
		return &statsd.NoOpClient{}
	}
	client, err := statsd.New(config.STATSD_ADDR)
	if err != nil {
		Log.WithError(err).Error("fail to create statsd client, metrics are discarded")
		return &statsd.NoOpClient{}
	}
	return client
}

func main() {
	ParseFlags()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	// Flags and env are only known now, rebuild the logger with them.
	InitLogger()
	defer cleanup()

	config := app_config.ParseServerAppConfig(*AppConfigPath)

	if config.TRACING_ENABLED {
		StartTracer(*ServiceName)
	}
	if config.PROFILING_ENABLED {
		if err := StartProfiler(*ServiceName); err != nil {
			Log.WithError(err).Error("fail to start profiler")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	eventbus := worker.NewEventBus()

	entityStore, closeStore, err := openStore(ctx, config)
	if err != nil {
		Log.Fatalf("fail to open %s store: %s", config.STORE_DRIVER, err)
	}
	defer closeStore()

	mediaStore, localMedia, err := openMediaStore(config)
	if err != nil {
		Log.Fatalf("fail to open %s media store: %s", config.MEDIA_DRIVER, err)
	}

	signalChannels := live.NewSignalChannels()
	var deliverer live.Deliverer = signalChannels
	modules := []worker.Module{
		metrics.NewReporter(metrics.ReporterConfig{Name: "engagement_reporter"}, newStatsd(config), eventbus),
	}
	if config.REDIS_RELAY_ENABLED {
		client, err := GetRedisClient(ctx)
		if err != nil {
			Log.Fatalf("fail to connect to redis for live relay: %s", err)
		}
		relay := live.NewRedisRelay(
			live.RedisRelayConfig{Name: "redis_relay", Channel: config.REDIS_RELAY_CHANNEL},
			client,
			signalChannels,
		)
		deliverer = relay
		modules = append(modules, relay)
	}
	modules = append(modules, live.NewPusher(live.PusherConfig{Name: "live_pusher"}, eventbus, deliverer))

	engine := worker.NewEngine(modules, ctx, cancel, eventbus)
	go engine.Run()

	tokens := account.NewTokenIssuer(jwtSecret(), time.Duration(config.TOKEN_TTL_HOURS)*time.Hour)
	fanout := notification.NewFanout(entityStore, entityStore, eventbus)
	srv := &server.Server{
		Engagement: engagement.NewEngine(
			entityStore,
			entityStore,
			fanout,
			eventbus,
			engagement.Config{SerializeReactions: config.SERIALIZE_REACTIONS},
		),
		Comments:      comment.NewService(entityStore, entityStore, entityStore, fanout, eventbus),
		Notifications: fanout,
		Accounts:      account.NewAccounts(entityStore, mediaStore, tokens),
		Catalog:       catalog.NewCatalog(entityStore, entityStore, mediaStore),
		Live:          signalChannels,
		Tokens:        tokens,
		BypassAuth:    *BypassAuth,
	}
	srv.SetAllowedOrigins(config.CORS_ALLOW_ORIGINS)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	if len(config.CORS_ALLOW_ORIGINS) == 0 {
		router.Use(cors.Default())
	} else {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = config.CORS_ALLOW_ORIGINS
		corsConfig.AddAllowHeaders("Authorization")
		router.Use(cors.New(corsConfig))
	}
	if config.TRACING_ENABLED {
		router.Use(gintrace.Middleware(*ServiceName))
	}
	if localMedia != nil {
		router.Static(config.MEDIA_URL_PREFIX, localMedia.Root())
	}
	srv.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:    config.SERVER_ADDR,
		Handler: router,
	}
	go func() {
		Log.Info("api server starts up on ", config.SERVER_ADDR)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Log.Fatalf("api server stopped: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	Log.Info("shutting down api server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		Log.WithError(err).Error("api server forced to shutdown")
	}
	engine.Shutdown()
}

// mediaStore is returned together with the local store, if any, so the caller
// can serve its files.
func openMediaStore(config app_config.ServerAppConfig) (media.MediaStore, *media.LocalMediaStore, error) {
	if config.MEDIA_DRIVER == app_config.MediaDriverS3 {
		s3Store, err := media.NewS3MediaStore(config.MEDIA_S3_BUCKET, config.MEDIA_S3_REGION, config.MEDIA_URL_PREFIX)
		return s3Store, nil, err
	}
	local, err := media.NewLocalMediaStore(config.MEDIA_LOCAL_ROOT, config.MEDIA_URL_PREFIX)
	if err != nil {
		return nil, nil, err
	}
	return local, local, nil
}
