package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/rs/zerolog/log"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/billings/scheduler"
	"schoolku_backend/internals/features/finance/billings/service"
	"schoolku_backend/internals/features/finance/billings/store"
	helper "schoolku_backend/internals/helpers"
	"schoolku_backend/internals/helpers/dbtime"
	middlewares "schoolku_backend/internals/middlewares"
	routes "schoolku_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	if err := configs.SetupLogger(configs.LogConfigFromEnv()); err != nil {
		log.Fatal().Err(err).Msg("logger setup failed")
	}
	dbtime.DefaultLocation = configs.Location

	app := fiber.New(fiber.Config{
		// 🚀 fast JSON
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.FiberErrorHandler,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ base middleware + performance
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + request deadline (matches statement_timeout on the DB session)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + schema + warm-up
	database.ConnectDB()
	database.TunePool()
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := database.Migrate(migrateCtx, database.DB); err != nil {
		cancelMigrate()
		log.Fatal().Err(err).Msg("❌ migration failed")
	}
	cancelMigrate()
	database.WarmUpQueries()

	// 💳 fee ledger (+ Midtrans when configured)
	opts := []service.Option{
		service.WithLocation(configs.Location),
		service.WithLogger(configs.WithComponent("fees")),
	}
	if configs.MidtransServerKey != "" {
		opts = append(opts, service.WithGateway(service.NewMidtransGateway(configs.MidtransServerKey, configs.MidtransProduction)))
	}
	svc := service.New(store.NewPostgresStore(database.DB), opts...)

	// ⏱ defaulter digest after the DB is ready
	var stopDigest func()
	if configs.DefaulterDigestCron != "" {
		c, err := scheduler.StartDefaulterDigest(configs.DefaulterDigestCron, configs.Location, svc)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ defaulter digest schedule invalid")
		}
		stopDigest = func() { <-c.Stop().Done() }
	}

	// ✅ Routes
	sqlDB, err := database.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ database handle unavailable")
	}
	routes.SetupRoutes(app, sqlDB, svc, configs.JWTSecret)

	// 🔒 Keep-Alive & connection timeouts
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	// Start server non-blocking
	go func() {
		log.Info().Str("port", port).Msg("✅ Listening")
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown + close the DB pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if stopDigest != nil {
		stopDigest()
	}
	database.Close()
}
