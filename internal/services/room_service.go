package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const searchBatchSize = 50

type roomRepository interface {
	Create(ctx context.Context, input repository.RoomInput) (*models.HotelRoom, error)
	GetByID(ctx context.Context, roomID int64) (*models.HotelRoom, error)
	GetDetail(ctx context.Context, roomID int64) (*models.HotelRoomDetail, error)
	Update(ctx context.Context, roomID int64, input repository.RoomInput) (*models.HotelRoom, error)
	List(ctx context.Context, filter repository.RoomListFilter) ([]models.HotelRoom, error)
}

type hotelRepository interface {
	Create(ctx context.Context, title, description string) (*models.Hotel, error)
	GetByID(ctx context.Context, hotelID int64) (*models.Hotel, error)
	Update(ctx context.Context, hotelID int64, title, description string) (*models.Hotel, error)
}

type RoomSearchParams struct {
	HotelID   *int64
	IsEnabled *bool
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

type CreateRoomInput struct {
	HotelID     int64
	Description string
	Images      []string
	IsEnabled   bool
}

// UpdateRoomInput replaces the room's description, images and enabled flag.
// HotelID moves the room to another hotel when set.
type UpdateRoomInput struct {
	HotelID     *int64
	Description string
	Images      []string
	IsEnabled   bool
}

type RoomService struct {
	rooms        roomRepository
	hotels       hotelRepository
	availability *AvailabilityChecker
	logger       logrus.FieldLogger
}

func NewRoomService(
	rooms roomRepository,
	hotels hotelRepository,
	reservations overlapFinder,
	logger logrus.FieldLogger,
) *RoomService {
	return &RoomService{
		rooms:        rooms,
		hotels:       hotels,
		availability: NewAvailabilityChecker(reservations),
		logger:       logger,
	}
}

// canSeeDisabledRooms is true for managers and admins.
func canSeeDisabledRooms(role string) bool {
	return models.IsEmployee(role)
}

// Search lists rooms in id order. Anonymous callers and clients only see enabled rooms.
// With both dates set, rooms booked anywhere in the period are dropped before the page
// is cut, so Offset and Limit count available rooms.
func (s *RoomService) Search(
	ctx context.Context,
	params RoomSearchParams,
	callerRole string,
) ([]models.HotelRoom, error) {
	if params.Limit < 0 || params.Offset < 0 {
		return nil, ErrInvalidInput
	}

	filter := repository.RoomListFilter{HotelID: params.HotelID, IsEnabled: params.IsEnabled}
	if !canSeeDisabledRooms(callerRole) {
		enabled := true
		filter.IsEnabled = &enabled
	}

	if params.StartDate == nil || params.EndDate == nil {
		filter.Limit = params.Limit
		filter.Offset = params.Offset
		return s.rooms.List(ctx, filter)
	}

	period, err := NewDateRange(*params.StartDate, *params.EndDate)
	if err != nil {
		return nil, err
	}

	batchSize := searchBatchSize
	if params.Limit > batchSize {
		batchSize = params.Limit
	}
	filter.Limit = batchSize

	result := make([]models.HotelRoom, 0)
	skipped := 0
	for {
		batch, err := s.rooms.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		for _, room := range batch {
			available, err := s.availability.IsAvailable(ctx, room.ID, period)
			if err != nil {
				return nil, err
			}
			if !available {
				continue
			}
			if skipped < params.Offset {
				skipped++
				continue
			}
			result = append(result, room)
			if params.Limit > 0 && len(result) == params.Limit {
				return result, nil
			}
		}

		if len(batch) < batchSize {
			return result, nil
		}
		filter.AfterID = batch[len(batch)-1].ID
	}
}

func (s *RoomService) GetRoom(
	ctx context.Context,
	roomID int64,
	callerRole string,
) (*models.HotelRoomDetail, error) {
	room, err := s.rooms.GetDetail(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.IsEnabled && !canSeeDisabledRooms(callerRole) {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*models.HotelRoom, error) {
	if input.HotelID <= 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.GetHotel(ctx, input.HotelID); err != nil {
		return nil, err
	}

	room, err := s.rooms.Create(ctx, repository.RoomInput{
		HotelID:     input.HotelID,
		Description: strings.TrimSpace(input.Description),
		Images:      input.Images,
		IsEnabled:   input.IsEnabled,
	})
	if err != nil {
		if hasPgCode(err, pgCodeForeignKeyViolation) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"room_id": room.ID, "hotel_id": room.HotelID}).Info("room created")
	return room, nil
}

func (s *RoomService) UpdateRoom(
	ctx context.Context,
	roomID int64,
	input UpdateRoomInput,
) (*models.HotelRoom, error) {
	current, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	hotelID := current.HotelID
	if input.HotelID != nil && *input.HotelID != current.HotelID {
		if _, err := s.GetHotel(ctx, *input.HotelID); err != nil {
			return nil, err
		}
		hotelID = *input.HotelID
	}

	room, err := s.rooms.Update(ctx, roomID, repository.RoomInput{
		HotelID:     hotelID,
		Description: strings.TrimSpace(input.Description),
		Images:      input.Images,
		IsEnabled:   input.IsEnabled,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrRoomNotFound
		case hasPgCode(err, pgCodeForeignKeyViolation):
			return nil, ErrHotelNotFound
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"room_id": room.ID, "is_enabled": room.IsEnabled}).Info("room updated")
	return room, nil
}

func (s *RoomService) CreateHotel(ctx context.Context, title, description string) (*models.Hotel, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	hotel, err := s.hotels.Create(ctx, title, strings.TrimSpace(description))
	if err != nil {
		return nil, err
	}

	s.logger.WithField("hotel_id", hotel.ID).Info("hotel created")
	return hotel, nil
}

// UpdateHotel replaces the hotel's title and description. Reservations pick the new
// values up on their next read.
func (s *RoomService) UpdateHotel(ctx context.Context, hotelID int64, title, description string) (*models.Hotel, error) {
	title = strings.TrimSpace(title)
	if hotelID <= 0 || title == "" {
		return nil, ErrInvalidInput
	}

	hotel, err := s.hotels.Update(ctx, hotelID, title, strings.TrimSpace(description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}

	s.logger.WithField("hotel_id", hotel.ID).Info("hotel updated")
	return hotel, nil
}

func (s *RoomService) GetHotel(ctx context.Context, hotelID int64) (*models.Hotel, error) {
	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	return hotel, nil
}
