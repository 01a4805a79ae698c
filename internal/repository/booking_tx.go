package repository

import (
	"context"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/jackc/pgx/v5"
)

// BookingStore is the view of rooms and reservations available inside a room lock.
type BookingStore interface {
	GetRoom(ctx context.Context, roomID int64) (*models.HotelRoom, error)
	HasOverlap(ctx context.Context, roomID int64, dateStart, dateEnd time.Time) (bool, error)
	CreateReservation(ctx context.Context, input CreateReservationInput) (*models.Reservation, error)
}

type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BookingTxRunner serializes booking attempts per room with a transaction-scoped
// advisory lock keyed by the room id.
type BookingTxRunner struct {
	db txStarter
}

func NewBookingTxRunner(db txStarter) *BookingTxRunner {
	return &BookingTxRunner{db: db}
}

func (r *BookingTxRunner) WithRoomLock(
	ctx context.Context,
	roomID int64,
	fn func(store BookingStore) error,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", roomID); err != nil {
		return err
	}

	store := &bookingTxStore{
		rooms:        NewRoomRepository(tx),
		reservations: NewReservationRepository(tx),
	}
	if err := fn(store); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type bookingTxStore struct {
	rooms        *RoomRepository
	reservations *ReservationRepository
}

func (s *bookingTxStore) GetRoom(ctx context.Context, roomID int64) (*models.HotelRoom, error) {
	return s.rooms.GetByID(ctx, roomID)
}

func (s *bookingTxStore) HasOverlap(ctx context.Context, roomID int64, dateStart, dateEnd time.Time) (bool, error) {
	return s.reservations.HasOverlap(ctx, roomID, dateStart, dateEnd)
}

func (s *bookingTxStore) CreateReservation(ctx context.Context, input CreateReservationInput) (*models.Reservation, error) {
	return s.reservations.Create(ctx, input)
}
