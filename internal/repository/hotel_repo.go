package repository

import (
	"context"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
)

type HotelRepository struct {
	db DBTX
}

func NewHotelRepository(db DBTX) *HotelRepository {
	return &HotelRepository{db: db}
}

func (r *HotelRepository) Create(ctx context.Context, title, description string) (*models.Hotel, error) {
	query := `
		INSERT INTO hotels (title, description)
		VALUES ($1, $2)
		RETURNING id, title, description, created_at, updated_at
	`
	var hotel models.Hotel
	err := r.db.QueryRow(ctx, query, title, description).Scan(
		&hotel.ID,
		&hotel.Title,
		&hotel.Description,
		&hotel.CreatedAt,
		&hotel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (r *HotelRepository) GetByID(ctx context.Context, hotelID int64) (*models.Hotel, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM hotels
		WHERE id = $1
	`
	var hotel models.Hotel
	err := r.db.QueryRow(ctx, query, hotelID).Scan(
		&hotel.ID,
		&hotel.Title,
		&hotel.Description,
		&hotel.CreatedAt,
		&hotel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (r *HotelRepository) Update(ctx context.Context, hotelID int64, title, description string) (*models.Hotel, error) {
	query := `
		UPDATE hotels
		SET title = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, description, created_at, updated_at
	`
	var hotel models.Hotel
	err := r.db.QueryRow(ctx, query, hotelID, title, description).Scan(
		&hotel.ID,
		&hotel.Title,
		&hotel.Description,
		&hotel.CreatedAt,
		&hotel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}
