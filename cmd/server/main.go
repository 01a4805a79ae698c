package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnnaShafeeva/hotel-diplom/internal/config"
	"github.com/AnnaShafeeva/hotel-diplom/internal/database"
	"github.com/AnnaShafeeva/hotel-diplom/internal/logging"
	"github.com/AnnaShafeeva/hotel-diplom/internal/repository"
	"github.com/AnnaShafeeva/hotel-diplom/internal/routes"
	"github.com/AnnaShafeeva/hotel-diplom/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl, log); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	if err := database.SeedDefaultUsers(ctx, repository.NewUserRepository(database.DB), cfg.DefaultUsers, log); err != nil {
		log.Fatalf("Failed to seed default users: %v", err)
	}

	// 3. Optional collaborators
	deps := routes.Dependencies{Logger: log}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		defer rdb.Close()
		deps.Redis = rdb
	}
	if cfg.MailEnabled() {
		deps.Notifier = services.NewMailNotifier(services.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Insecure: cfg.SMTP.Insecure,
		})
	}

	// 4. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(ctx, app, cfg, database.DB, deps); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	// 5. Start Server
	log.WithFields(logrus.Fields{"port": cfg.Port, "redis": deps.Redis != nil, "mail": deps.Notifier != nil}).
		Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
