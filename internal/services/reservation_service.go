package services

import (
	"context"
	"errors"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const notificationTimeout = 30 * time.Second

type bookingRunner interface {
	WithRoomLock(ctx context.Context, roomID int64, fn func(store repository.BookingStore) error) error
}

type reservationRepository interface {
	HasOverlap(ctx context.Context, roomID int64, dateStart, dateEnd time.Time) (bool, error)
	Delete(ctx context.Context, reservationID int64) error
	GetDetail(ctx context.Context, reservationID int64) (*models.ReservationDetail, error)
	List(ctx context.Context, filter repository.ReservationListFilter) ([]models.ReservationDetail, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// ReservationNotifier is told about every committed booking.
type ReservationNotifier interface {
	ReservationCreated(ctx context.Context, user *models.User, detail *models.ReservationDetail) error
}

type ReservationService struct {
	runner       bookingRunner
	reservations reservationRepository
	availability *AvailabilityChecker
	userRepo     userReader
	notifier     ReservationNotifier
	logger       logrus.FieldLogger
}

func NewReservationService(
	runner bookingRunner,
	reservations reservationRepository,
	userRepo userReader,
	notifier ReservationNotifier,
	logger logrus.FieldLogger,
) *ReservationService {
	return &ReservationService{
		runner:       runner,
		reservations: reservations,
		availability: NewAvailabilityChecker(reservations),
		userRepo:     userRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

type AddReservationInput struct {
	UserID    int64
	RoomID    int64
	DateStart time.Time
	DateEnd   time.Time
}

// IsAvailable reports whether no reservation of the room touches [start, end].
func (s *ReservationService) IsAvailable(
	ctx context.Context,
	roomID int64,
	start time.Time,
	end time.Time,
) (bool, error) {
	period, err := NewDateRange(start, end)
	if err != nil {
		return false, err
	}
	return s.availability.IsAvailable(ctx, roomID, period)
}

// AddReservation books a room. The enabled check, the overlap check and the insert run
// under a per-room lock so two overlapping requests cannot both succeed.
func (s *ReservationService) AddReservation(
	ctx context.Context,
	input AddReservationInput,
) (*models.ReservationDetail, error) {
	if input.UserID <= 0 || input.RoomID <= 0 {
		return nil, ErrInvalidInput
	}
	period, err := NewDateRange(input.DateStart, input.DateEnd)
	if err != nil {
		return nil, err
	}

	var reservation *models.Reservation
	err = s.runner.WithRoomLock(ctx, input.RoomID, func(store repository.BookingStore) error {
		room, err := store.GetRoom(ctx, input.RoomID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoomNotFound
			}
			return err
		}
		if !room.IsEnabled {
			return ErrRoomDisabled
		}

		hasOverlap, err := store.HasOverlap(ctx, room.ID, period.Start, period.End)
		if err != nil {
			return err
		}
		if hasOverlap {
			return ErrRoomNotAvailable
		}

		reservation, err = store.CreateReservation(ctx, repository.CreateReservationInput{
			UserID:    input.UserID,
			HotelID:   room.HotelID,
			RoomID:    room.ID,
			DateStart: period.Start,
			DateEnd:   period.End,
		})
		return err
	})
	if err != nil {
		switch {
		case hasPgCode(err, pgCodeExclusionViolation):
			return nil, ErrRoomNotAvailable
		case hasPgCode(err, pgCodeForeignKeyViolation):
			return nil, ErrInvalidInput
		}
		return nil, err
	}

	detail, err := s.reservations.GetDetail(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": detail.ID,
		"room_id":        detail.RoomID,
		"user_id":        detail.UserID,
	}).Info("reservation created")

	if s.notifier != nil {
		go s.notify(detail)
	}

	return detail, nil
}

func (s *ReservationService) RemoveReservation(ctx context.Context, reservationID int64) error {
	if err := s.reservations.Delete(ctx, reservationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReservationNotFound
		}
		return err
	}

	s.logger.WithField("reservation_id", reservationID).Info("reservation removed")
	return nil
}

func (s *ReservationService) GetReservation(
	ctx context.Context,
	reservationID int64,
) (*models.ReservationDetail, error) {
	detail, err := s.reservations.GetDetail(ctx, reservationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return detail, nil
}

// GetReservations expands hotel and room from their current rows, so the result always
// reflects live hotel and room data.
func (s *ReservationService) GetReservations(
	ctx context.Context,
	filter repository.ReservationListFilter,
) ([]models.ReservationDetail, error) {
	return s.reservations.List(ctx, filter)
}

func (s *ReservationService) notify(detail *models.ReservationDetail) {
	ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
	defer cancel()

	entry := s.logger.WithField("reservation_id", detail.ID)

	user, err := s.userRepo.GetByID(ctx, detail.UserID)
	if err != nil {
		entry.WithError(err).Warn("reservation notification skipped: user lookup failed")
		return
	}
	if err := s.notifier.ReservationCreated(ctx, user, detail); err != nil {
		entry.WithError(err).Warn("reservation notification failed")
	}
}
