package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/middleware"
	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/repository"
	"github.com/AnnaShafeeva/hotel-diplom/internal/services"
	chatws "github.com/AnnaShafeeva/hotel-diplom/internal/websocket"
	"github.com/AnnaShafeeva/hotel-diplom/pkg/utils"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type supportApplicationService interface {
	CreateSupportRequest(ctx context.Context, userID int64, text string) (*models.SupportRequestSummary, error)
	SendMessage(ctx context.Context, supportRequestID int64, authorID int64, text string) (*models.SupportMessage, error)
	GetMessages(ctx context.Context, supportRequestID int64) ([]models.SupportMessage, error)
	MarkMessagesAsRead(ctx context.Context, readerRole string, readerID int64, supportRequestID int64, createdBefore time.Time) (int64, error)
	GetUnreadCount(ctx context.Context, readerRole string, supportRequestID int64) (int, error)
	FindSupportRequests(ctx context.Context, readerRole string, filter repository.SupportRequestListFilter) ([]models.SupportRequestSummary, error)
	CloseRequest(ctx context.Context, supportRequestID int64) error
	CheckAccess(ctx context.Context, userID int64, role string, supportRequestID int64) (*models.SupportRequestDetail, error)
}

type SupportHandler struct {
	service   supportApplicationService
	relay     *chatws.Relay
	jwtSecret string
}

type createSupportRequestRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type markMessagesReadRequest struct {
	CreatedBefore string `json:"created_before" validate:"required"`
}

func NewSupportHandler(service supportApplicationService, relay *chatws.Relay, jwtSecret string) *SupportHandler {
	return &SupportHandler{
		service:   service,
		relay:     relay,
		jwtSecret: jwtSecret,
	}
}

func (h *SupportHandler) CreateSupportRequest(c *fiber.Ctx) error {
	userID, err := principalUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req createSupportRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	summary, err := h.service.CreateSupportRequest(c.Context(), userID, req.Text)
	if err != nil {
		return mapSupportError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"support_request": summary})
}

func (h *SupportHandler) ListOwnSupportRequests(c *fiber.Ctx) error {
	userID, err := principalUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	filter, err := parseSupportRequestFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter.UserID = &userID

	requests, err := h.service.FindSupportRequests(c.Context(), models.RoleClient, filter)
	if err != nil {
		return mapSupportError(c, err)
	}

	return c.JSON(fiber.Map{"support_requests": requests})
}

func (h *SupportHandler) ListSupportRequests(c *fiber.Ctx) error {
	filter, err := parseSupportRequestFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	requests, err := h.service.FindSupportRequests(c.Context(), principalRole(c), filter)
	if err != nil {
		return mapSupportError(c, err)
	}

	return c.JSON(fiber.Map{"support_requests": requests})
}

func (h *SupportHandler) CloseSupportRequest(c *fiber.Ctx) error {
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid support request id")
	}

	if err := h.service.CloseRequest(c.Context(), requestID); err != nil {
		return mapSupportError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SupportHandler) GetMessages(c *fiber.Ctx) error {
	requestID, _, ok := h.authorizeRequest(c)
	if !ok {
		return nil
	}

	messages, err := h.service.GetMessages(c.Context(), requestID)
	if err != nil {
		return mapSupportError(c, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}

func (h *SupportHandler) SendMessage(c *fiber.Ctx) error {
	requestID, userID, ok := h.authorizeRequest(c)
	if !ok {
		return nil
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	message, err := h.service.SendMessage(c.Context(), requestID, userID, req.Text)
	if err != nil {
		return mapSupportError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message})
}

func (h *SupportHandler) MarkMessagesRead(c *fiber.Ctx) error {
	requestID, userID, ok := h.authorizeRequest(c)
	if !ok {
		return nil
	}

	var req markMessagesReadRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	createdBefore, err := time.Parse(time.RFC3339, strings.TrimSpace(req.CreatedBefore))
	if err != nil {
		return badRequest(c, "created_before must be a valid RFC3339 timestamp")
	}

	updated, err := h.service.MarkMessagesAsRead(c.Context(), principalRole(c), userID, requestID, createdBefore)
	if err != nil {
		return mapSupportError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "updated": updated})
}

func (h *SupportHandler) GetUnreadCount(c *fiber.Ctx) error {
	requestID, _, ok := h.authorizeRequest(c)
	if !ok {
		return nil
	}

	count, err := h.service.GetUnreadCount(c.Context(), principalRole(c), requestID)
	if err != nil {
		return mapSupportError(c, err)
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

// WebSocketAuth rejects the upgrade with an empty 401 when no valid token is given.
func (h *SupportHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).Send(nil)
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *SupportHandler) HandleWebSocket(conn *websocket.Conn) {
	userIDStr, _ := conn.Locals("user_id").(string)
	role, _ := conn.Locals("role").(string)
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := chatws.NewClient(h.relay, conn, userID, role)

	h.relay.Register(client)
	go client.WritePump()
	client.ReadPump(h.service)
}

func (h *SupportHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		if bearer, ok := middleware.BearerToken(c.Get("Authorization")); ok {
			tokenString = bearer
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

// authorizeRequest parses :id and checks that the caller may use that support request.
// When it returns false the error response has already been written.
func (h *SupportHandler) authorizeRequest(c *fiber.Ctx) (int64, int64, bool) {
	userID, err := principalUserID(c)
	if err != nil {
		_ = unauthorized(c)
		return 0, 0, false
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		_ = badRequest(c, "Invalid support request id")
		return 0, 0, false
	}

	if _, err := h.service.CheckAccess(c.Context(), userID, principalRole(c), requestID); err != nil {
		_ = mapSupportError(c, err)
		return 0, 0, false
	}

	return requestID, userID, true
}

func parseSupportRequestFilter(c *fiber.Ctx) (repository.SupportRequestListFilter, error) {
	page, err := parsePageParams(c)
	if err != nil {
		return repository.SupportRequestListFilter{}, errors.New("limit and offset must be non-negative integers")
	}

	isActive, err := parseOptionalBool(c.Query("is_active"))
	if err != nil {
		return repository.SupportRequestListFilter{}, errors.New("is_active must be true or false")
	}

	return repository.SupportRequestListFilter{
		IsActive: isActive,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}, nil
}

func mapSupportError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrSupportRequestNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Support request not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process support request"})
	}
}
