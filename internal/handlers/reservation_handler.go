package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/repository"
	"github.com/AnnaShafeeva/hotel-diplom/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReservationHandler struct {
	service reservationApplicationService
}

type reservationApplicationService interface {
	AddReservation(ctx context.Context, input services.AddReservationInput) (*models.ReservationDetail, error)
	RemoveReservation(ctx context.Context, reservationID int64) error
	GetReservation(ctx context.Context, reservationID int64) (*models.ReservationDetail, error)
	GetReservations(ctx context.Context, filter repository.ReservationListFilter) ([]models.ReservationDetail, error)
}

func NewReservationHandler(service reservationApplicationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

type createReservationRequest struct {
	HotelRoom int64  `json:"hotel_room" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

func (h *ReservationHandler) CreateReservation(c *fiber.Ctx) error {
	userID, err := principalUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req createReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return badRequest(c, "start_date must be a date (YYYY-MM-DD)")
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return badRequest(c, "end_date must be a date (YYYY-MM-DD)")
	}

	detail, err := h.service.AddReservation(c.Context(), services.AddReservationInput{
		UserID:    userID,
		RoomID:    req.HotelRoom,
		DateStart: startDate,
		DateEnd:   endDate,
	})
	if err != nil {
		return mapReservationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reservation": newReservationResponse(detail)})
}

func (h *ReservationHandler) ListOwnReservations(c *fiber.Ctx) error {
	userID, err := principalUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	reservations, err := h.service.GetReservations(c.Context(), repository.ReservationListFilter{UserID: &userID})
	if err != nil {
		return mapReservationError(c, err)
	}

	return c.JSON(fiber.Map{"reservations": newReservationResponses(reservations)})
}

// CancelOwnReservation only lets a client cancel reservations they made.
func (h *ReservationHandler) CancelOwnReservation(c *fiber.Ctx) error {
	userID, err := principalUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	reservationID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid reservation id")
	}

	reservation, err := h.service.GetReservation(c.Context(), reservationID)
	if err != nil {
		return mapReservationError(c, err)
	}
	if reservation.UserID != userID {
		return mapReservationError(c, services.ErrForbidden)
	}

	if err := h.service.RemoveReservation(c.Context(), reservationID); err != nil {
		return mapReservationError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReservationHandler) ListUserReservations(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	reservations, err := h.service.GetReservations(c.Context(), repository.ReservationListFilter{UserID: &userID})
	if err != nil {
		return mapReservationError(c, err)
	}

	return c.JSON(fiber.Map{"reservations": newReservationResponses(reservations)})
}

func (h *ReservationHandler) CancelReservation(c *fiber.Ctx) error {
	reservationID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid reservation id")
	}

	if err := h.service.RemoveReservation(c.Context(), reservationID); err != nil {
		return mapReservationError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type reservationResponse struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	CreatedAt time.Time        `json:"created_at"`
	Hotel     models.Hotel     `json:"hotel"`
	HotelRoom models.HotelRoom `json:"hotel_room"`
}

func newReservationResponse(detail *models.ReservationDetail) reservationResponse {
	return reservationResponse{
		ID:        detail.ID,
		UserID:    detail.UserID,
		StartDate: detail.DateStart.Format(dateLayout),
		EndDate:   detail.DateEnd.Format(dateLayout),
		CreatedAt: detail.CreatedAt,
		Hotel:     detail.Hotel,
		HotelRoom: detail.Room,
	}
}

func newReservationResponses(details []models.ReservationDetail) []reservationResponse {
	responses := make([]reservationResponse, 0, len(details))
	for i := range details {
		responses = append(responses, newReservationResponse(&details[i]))
	}
	return responses
}

func mapReservationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidDateRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must not be after end_date"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reservation request"})
	case errors.Is(err, services.ErrRoomDisabled):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Room is disabled", "code": "room_disabled"})
	case errors.Is(err, services.ErrRoomNotAvailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Room is not available for the selected dates",
			"code":  "room_not_available",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrRoomNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Room not found"})
	case errors.Is(err, services.ErrReservationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reservation not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process reservation request"})
	}
}
