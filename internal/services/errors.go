package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrHotelNotFound          = errors.New("hotel not found")
	ErrRoomNotFound           = errors.New("room not found")
	ErrRoomDisabled           = errors.New("room is disabled")
	ErrRoomNotAvailable       = errors.New("room is not available for the selected dates")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrSupportRequestNotFound = errors.New("support request not found")

	// ErrInvalidDateRange also matches ErrInvalidInput.
	ErrInvalidDateRange = fmt.Errorf("%w: start date is after end date", ErrInvalidInput)
)

const (
	pgCodeForeignKeyViolation = "23503"
	pgCodeExclusionViolation  = "23P01"
)

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
