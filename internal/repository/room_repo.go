package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/jackc/pgx/v5"
)

type RoomInput struct {
	HotelID     int64
	Description string
	Images      []string
	IsEnabled   bool
}

// RoomListFilter selects rooms in id order. Rooms with id <= AfterID are skipped so
// callers can walk the table in batches.
type RoomListFilter struct {
	HotelID   *int64
	IsEnabled *bool
	AfterID   int64
	Limit     int
	Offset    int
}

type RoomRepository struct {
	db DBTX
}

func NewRoomRepository(db DBTX) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, input RoomInput) (*models.HotelRoom, error) {
	query := `
		INSERT INTO hotel_rooms (hotel_id, description, images, is_enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, hotel_id, description, images, is_enabled, created_at, updated_at
	`
	return scanRoom(r.db.QueryRow(ctx, query, input.HotelID, input.Description, nonNilStrings(input.Images), input.IsEnabled))
}

func (r *RoomRepository) GetByID(ctx context.Context, roomID int64) (*models.HotelRoom, error) {
	query := `
		SELECT id, hotel_id, description, images, is_enabled, created_at, updated_at
		FROM hotel_rooms
		WHERE id = $1
	`
	return scanRoom(r.db.QueryRow(ctx, query, roomID))
}

func (r *RoomRepository) GetDetail(ctx context.Context, roomID int64) (*models.HotelRoomDetail, error) {
	query := `
		SELECT hr.id, hr.hotel_id, hr.description, hr.images, hr.is_enabled, hr.created_at, hr.updated_at,
			h.id, h.title, h.description, h.created_at, h.updated_at
		FROM hotel_rooms hr
		JOIN hotels h ON h.id = hr.hotel_id
		WHERE hr.id = $1
	`
	var detail models.HotelRoomDetail
	err := r.db.QueryRow(ctx, query, roomID).Scan(
		&detail.ID,
		&detail.HotelID,
		&detail.Description,
		&detail.Images,
		&detail.IsEnabled,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.Hotel.ID,
		&detail.Hotel.Title,
		&detail.Hotel.Description,
		&detail.Hotel.CreatedAt,
		&detail.Hotel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Update replaces every editable column of a room.
func (r *RoomRepository) Update(ctx context.Context, roomID int64, input RoomInput) (*models.HotelRoom, error) {
	query := `
		UPDATE hotel_rooms
		SET hotel_id = $2, description = $3, images = $4, is_enabled = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, hotel_id, description, images, is_enabled, created_at, updated_at
	`
	return scanRoom(r.db.QueryRow(ctx, query, roomID, input.HotelID, input.Description, nonNilStrings(input.Images), input.IsEnabled))
}

func (r *RoomRepository) List(ctx context.Context, filter RoomListFilter) ([]models.HotelRoom, error) {
	args := []any{filter.AfterID}
	whereParts := []string{"id > $1"}

	if filter.HotelID != nil {
		args = append(args, *filter.HotelID)
		whereParts = append(whereParts, fmt.Sprintf("hotel_id = $%d", len(args)))
	}
	if filter.IsEnabled != nil {
		args = append(args, *filter.IsEnabled)
		whereParts = append(whereParts, fmt.Sprintf("is_enabled = $%d", len(args)))
	}

	args, pageClause := appendPageClause(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, hotel_id, description, images, is_enabled, created_at, updated_at
		FROM hotel_rooms
		WHERE %s
		ORDER BY id ASC
		%s
	`, strings.Join(whereParts, " AND "), pageClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]models.HotelRoom, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

func scanRoom(row pgx.Row) (*models.HotelRoom, error) {
	var room models.HotelRoom
	err := row.Scan(
		&room.ID,
		&room.HotelID,
		&room.Description,
		&room.Images,
		&room.IsEnabled,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if room.Images == nil {
		room.Images = []string{}
	}
	return &room, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
