package handlers

import (
	"context"
	"errors"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/services"
	"github.com/gofiber/fiber/v2"
)

type roomApplicationService interface {
	Search(ctx context.Context, params services.RoomSearchParams, callerRole string) ([]models.HotelRoom, error)
	GetRoom(ctx context.Context, roomID int64, callerRole string) (*models.HotelRoomDetail, error)
	CreateRoom(ctx context.Context, input services.CreateRoomInput) (*models.HotelRoom, error)
	UpdateRoom(ctx context.Context, roomID int64, input services.UpdateRoomInput) (*models.HotelRoom, error)
	CreateHotel(ctx context.Context, title, description string) (*models.Hotel, error)
	GetHotel(ctx context.Context, hotelID int64) (*models.Hotel, error)
	UpdateHotel(ctx context.Context, hotelID int64, title, description string) (*models.Hotel, error)
}

type RoomHandler struct {
	service roomApplicationService
}

func NewRoomHandler(service roomApplicationService) *RoomHandler {
	return &RoomHandler{service: service}
}

type createHotelRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type createRoomRequest struct {
	HotelID     int64    `json:"hotel_id" validate:"required,gt=0"`
	Description string   `json:"description" validate:"max=5000"`
	Images      []string `json:"images" validate:"max=20,dive,required,max=2048"`
	IsEnabled   *bool    `json:"is_enabled"`
}

type updateRoomRequest struct {
	HotelID     *int64   `json:"hotel_id" validate:"omitempty,gt=0"`
	Description string   `json:"description" validate:"max=5000"`
	Images      []string `json:"images" validate:"max=20,dive,required,max=2048"`
	IsEnabled   bool     `json:"is_enabled"`
}

// SearchRooms serves anonymous and authenticated callers; only managers and admins
// can see disabled rooms.
func (h *RoomHandler) SearchRooms(c *fiber.Ctx) error {
	page, err := parsePageParams(c)
	if err != nil {
		return badRequest(c, "limit and offset must be non-negative integers")
	}

	hotelID, err := parseOptionalID(c.Query("hotel"))
	if err != nil {
		return badRequest(c, "hotel must be a valid id")
	}
	isEnabled, err := parseOptionalBool(c.Query("is_enabled"))
	if err != nil {
		return badRequest(c, "is_enabled must be true or false")
	}
	startDate, err := parseOptionalDate(c.Query("start_date"))
	if err != nil {
		return badRequest(c, "start_date must be a date (YYYY-MM-DD)")
	}
	endDate, err := parseOptionalDate(c.Query("end_date"))
	if err != nil {
		return badRequest(c, "end_date must be a date (YYYY-MM-DD)")
	}

	rooms, err := h.service.Search(c.Context(), services.RoomSearchParams{
		HotelID:   hotelID,
		IsEnabled: isEnabled,
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     page.Limit,
		Offset:    page.Offset,
	}, principalRole(c))
	if err != nil {
		return mapRoomError(c, err)
	}

	return c.JSON(fiber.Map{"rooms": rooms})
}

func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid room id")
	}

	room, err := h.service.GetRoom(c.Context(), roomID, principalRole(c))
	if err != nil {
		return mapRoomError(c, err)
	}

	return c.JSON(fiber.Map{"room": room})
}

func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	room, err := h.service.CreateRoom(c.Context(), services.CreateRoomInput{
		HotelID:     req.HotelID,
		Description: req.Description,
		Images:      req.Images,
		IsEnabled:   isEnabled,
	})
	if err != nil {
		return mapRoomError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"room": room})
}

func (h *RoomHandler) UpdateRoom(c *fiber.Ctx) error {
	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid room id")
	}

	var req updateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	room, err := h.service.UpdateRoom(c.Context(), roomID, services.UpdateRoomInput{
		HotelID:     req.HotelID,
		Description: req.Description,
		Images:      req.Images,
		IsEnabled:   req.IsEnabled,
	})
	if err != nil {
		return mapRoomError(c, err)
	}

	return c.JSON(fiber.Map{"room": room})
}

func (h *RoomHandler) CreateHotel(c *fiber.Ctx) error {
	var req createHotelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	hotel, err := h.service.CreateHotel(c.Context(), req.Title, req.Description)
	if err != nil {
		return mapRoomError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"hotel": hotel})
}

// UpdateHotel takes the same body as CreateHotel.
func (h *RoomHandler) UpdateHotel(c *fiber.Ctx) error {
	hotelID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid hotel id")
	}

	var req createHotelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	hotel, err := h.service.UpdateHotel(c.Context(), hotelID, req.Title, req.Description)
	if err != nil {
		return mapRoomError(c, err)
	}

	return c.JSON(fiber.Map{"hotel": hotel})
}

func (h *RoomHandler) GetHotel(c *fiber.Ctx) error {
	hotelID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid hotel id")
	}

	hotel, err := h.service.GetHotel(c.Context(), hotelID)
	if err != nil {
		return mapRoomError(c, err)
	}

	return c.JSON(fiber.Map{"hotel": hotel})
}

func mapRoomError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrRoomNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Room not found"})
	case errors.Is(err, services.ErrHotelNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Hotel not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process room request"})
	}
}
