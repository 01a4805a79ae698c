package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateReservationInput struct {
	UserID    int64
	HotelID   int64
	RoomID    int64
	DateStart time.Time
	DateEnd   time.Time
}

type ReservationListFilter struct {
	UserID *int64
}

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationDetailColumns = `
	r.id, r.user_id, r.hotel_id, r.room_id, r.date_start, r.date_end, r.created_at,
	h.id, h.title, h.description, h.created_at, h.updated_at,
	hr.id, hr.hotel_id, hr.description, hr.images, hr.is_enabled, hr.created_at, hr.updated_at
`

func (r *ReservationRepository) Create(
	ctx context.Context,
	input CreateReservationInput,
) (*models.Reservation, error) {
	query := `
		INSERT INTO reservations (user_id, hotel_id, room_id, date_start, date_end)
		VALUES ($1, $2, $3, $4::date, $5::date)
		RETURNING id, user_id, hotel_id, room_id, date_start, date_end, created_at
	`

	var reservation models.Reservation
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.HotelID,
		input.RoomID,
		input.DateStart,
		input.DateEnd,
	).Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.HotelID,
		&reservation.RoomID,
		&reservation.DateStart,
		&reservation.DateEnd,
		&reservation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// HasOverlap uses closed intervals: a reservation ending on dateStart overlaps.
func (r *ReservationRepository) HasOverlap(
	ctx context.Context,
	roomID int64,
	dateStart time.Time,
	dateEnd time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM reservations
			WHERE room_id = $1
			  AND date_start <= $3::date
			  AND date_end >= $2::date
		)
	`
	var hasOverlap bool
	if err := r.db.QueryRow(ctx, query, roomID, dateStart, dateEnd).Scan(&hasOverlap); err != nil {
		return false, err
	}
	return hasOverlap, nil
}

// Delete returns pgx.ErrNoRows when nothing was removed.
func (r *ReservationRepository) Delete(ctx context.Context, reservationID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, reservationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ReservationRepository) GetDetail(
	ctx context.Context,
	reservationID int64,
) (*models.ReservationDetail, error) {
	query := `
		SELECT ` + reservationDetailColumns + `
		FROM reservations r
		JOIN hotels h ON h.id = r.hotel_id
		JOIN hotel_rooms hr ON hr.id = r.room_id
		WHERE r.id = $1
	`
	return scanReservationDetail(r.db.QueryRow(ctx, query, reservationID))
}

func (r *ReservationRepository) List(
	ctx context.Context,
	filter ReservationListFilter,
) ([]models.ReservationDetail, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		whereParts = append(whereParts, fmt.Sprintf("r.user_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations r
		JOIN hotels h ON h.id = r.hotel_id
		JOIN hotel_rooms hr ON hr.id = r.room_id
		WHERE %s
		ORDER BY r.date_start ASC, r.id ASC
	`, reservationDetailColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]models.ReservationDetail, 0)
	for rows.Next() {
		detail, err := scanReservationDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func scanReservationDetail(row pgx.Row) (*models.ReservationDetail, error) {
	var detail models.ReservationDetail
	err := row.Scan(
		&detail.ID,
		&detail.UserID,
		&detail.HotelID,
		&detail.RoomID,
		&detail.DateStart,
		&detail.DateEnd,
		&detail.CreatedAt,
		&detail.Hotel.ID,
		&detail.Hotel.Title,
		&detail.Hotel.Description,
		&detail.Hotel.CreatedAt,
		&detail.Hotel.UpdatedAt,
		&detail.Room.ID,
		&detail.Room.HotelID,
		&detail.Room.Description,
		&detail.Room.Images,
		&detail.Room.IsEnabled,
		&detail.Room.CreatedAt,
		&detail.Room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if detail.Room.Images == nil {
		detail.Room.Images = []string{}
	}
	return &detail, nil
}
