package routes

import (
	"context"
	"errors"

	"github.com/AnnaShafeeva/hotel-diplom/internal/config"
	"github.com/AnnaShafeeva/hotel-diplom/internal/handlers"
	"github.com/AnnaShafeeva/hotel-diplom/internal/middleware"
	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/repository"
	"github.com/AnnaShafeeva/hotel-diplom/internal/services"
	chatws "github.com/AnnaShafeeva/hotel-diplom/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Dependencies are the optional collaborators built by the server command.
type Dependencies struct {
	Logger   logrus.FieldLogger
	Redis    *redis.Client
	Notifier services.ReservationNotifier
}

// RegisterRoutes wires repositories, services and handlers onto app. Background workers
// (chat relay, redis bridge) stop when ctx is cancelled.
func RegisterRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *pgxpool.Pool, deps Dependencies) error {
	if cfg == nil || cfg.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	userRepo := repository.NewUserRepository(db)
	hotelRepo := repository.NewHotelRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	supportRequestRepo := repository.NewSupportRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	relay := chatws.NewRelay(logger.WithField("component", "chat_relay"))
	go relay.Run(ctx)

	var publisher services.MessagePublisher = relay
	if deps.Redis != nil {
		bridge := chatws.NewRedisBridge(deps.Redis, cfg.RedisChannel, relay, logger.WithField("component", "chat_redis_bridge"))
		publisher = bridge
		go func() {
			if err := bridge.Run(ctx); err != nil {
				logger.WithError(err).Error("chat redis bridge stopped")
			}
		}()
	}

	roomService := services.NewRoomService(roomRepo, hotelRepo, reservationRepo, logger.WithField("component", "rooms"))
	reservationService := services.NewReservationService(
		repository.NewBookingTxRunner(db),
		reservationRepo,
		userRepo,
		deps.Notifier,
		logger.WithField("component", "reservations"),
	)
	chatService := services.NewChatService(supportRequestRepo, messageRepo, publisher, logger.WithField("component", "support"))

	authHandler := handlers.NewAuthHandler(userRepo)
	roomHandler := handlers.NewRoomHandler(roomService)
	reservationHandler := handlers.NewReservationHandler(reservationService)
	supportHandler := handlers.NewSupportHandler(chatService, relay, cfg.JWTSecret)

	authRequired := middleware.AuthRequired(cfg.JWTSecret)
	employeesOnly := middleware.RequireRoles(models.RoleManager, models.RoleAdmin)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/me", authRequired, authHandler.Me)

	common := api.Group("/common")
	common.Get("/hotels/:id", roomHandler.GetHotel)
	common.Get("/hotel-rooms", middleware.OptionalAuth(cfg.JWTSecret), roomHandler.SearchRooms)
	common.Get("/hotel-rooms/:id", middleware.OptionalAuth(cfg.JWTSecret), roomHandler.GetRoom)

	supportChat := common.Group("/support-requests/:id", authRequired)
	supportChat.Get("/messages", supportHandler.GetMessages)
	supportChat.Post("/messages", supportHandler.SendMessage)
	supportChat.Post("/messages/read", supportHandler.MarkMessagesRead)
	supportChat.Get("/unread", supportHandler.GetUnreadCount)

	admin := api.Group("/admin", authRequired, middleware.RequireRoles(models.RoleAdmin))
	admin.Post("/hotels", roomHandler.CreateHotel)
	admin.Put("/hotels/:id", roomHandler.UpdateHotel)
	admin.Post("/hotel-rooms", roomHandler.CreateRoom)
	admin.Put("/hotel-rooms/:id", roomHandler.UpdateRoom)

	client := api.Group("/client", authRequired, middleware.RequireRoles(models.RoleClient))
	client.Post("/reservations", reservationHandler.CreateReservation)
	client.Get("/reservations", reservationHandler.ListOwnReservations)
	client.Delete("/reservations/:id", reservationHandler.CancelOwnReservation)
	client.Post("/support-requests", supportHandler.CreateSupportRequest)
	client.Get("/support-requests", supportHandler.ListOwnSupportRequests)

	manager := api.Group("/manager", authRequired, employeesOnly)
	manager.Get("/reservations/:userId", reservationHandler.ListUserReservations)
	manager.Delete("/reservations/:id", reservationHandler.CancelReservation)
	manager.Get("/support-requests", supportHandler.ListSupportRequests)
	manager.Delete("/support-requests/:id", supportHandler.CloseSupportRequest)

	api.Use("/ws", supportHandler.WebSocketAuth)
	api.Get("/ws", websocket.New(supportHandler.HandleWebSocket))

	return nil
}
