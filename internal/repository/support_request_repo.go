package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
)

type SupportRequestListFilter struct {
	UserID   *int64
	IsActive *bool
	Limit    int
	Offset   int
}

type SupportRequestRepository struct {
	db DBTX
}

func NewSupportRequestRepository(db DBTX) *SupportRequestRepository {
	return &SupportRequestRepository{db: db}
}

// CreateWithMessage opens a ticket and stores its first message in a single statement.
func (r *SupportRequestRepository) CreateWithMessage(
	ctx context.Context,
	userID int64,
	text string,
) (*models.SupportRequest, error) {
	query := `
		WITH req AS (
			INSERT INTO support_requests (user_id, is_active)
			VALUES ($1, TRUE)
			RETURNING id, user_id, is_active, created_at
		), msg AS (
			INSERT INTO support_messages (support_request_id, author_id, text)
			SELECT id, user_id, $2 FROM req
		)
		SELECT id, user_id, is_active, created_at FROM req
	`

	var request models.SupportRequest
	err := r.db.QueryRow(ctx, query, userID, text).Scan(
		&request.ID,
		&request.UserID,
		&request.IsActive,
		&request.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *SupportRequestRepository) GetDetail(
	ctx context.Context,
	requestID int64,
) (*models.SupportRequestDetail, error) {
	query := `
		SELECT sr.id, sr.user_id, sr.is_active, sr.created_at,
			u.id, u.name, u.email, u.contact_phone
		FROM support_requests sr
		JOIN users u ON u.id = sr.user_id
		WHERE sr.id = $1
	`

	var detail models.SupportRequestDetail
	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&detail.ID,
		&detail.UserID,
		&detail.IsActive,
		&detail.CreatedAt,
		&detail.User.ID,
		&detail.User.Name,
		&detail.User.Email,
		&detail.User.ContactPhone,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *SupportRequestRepository) List(
	ctx context.Context,
	filter SupportRequestListFilter,
) ([]models.SupportRequestDetail, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		whereParts = append(whereParts, fmt.Sprintf("sr.user_id = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		whereParts = append(whereParts, fmt.Sprintf("sr.is_active = $%d", len(args)))
	}

	args, pageClause := appendPageClause(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT sr.id, sr.user_id, sr.is_active, sr.created_at,
			u.id, u.name, u.email, u.contact_phone
		FROM support_requests sr
		JOIN users u ON u.id = sr.user_id
		WHERE %s
		ORDER BY sr.created_at DESC, sr.id DESC
		%s
	`, strings.Join(whereParts, " AND "), pageClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.SupportRequestDetail, 0)
	for rows.Next() {
		var detail models.SupportRequestDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.UserID,
			&detail.IsActive,
			&detail.CreatedAt,
			&detail.User.ID,
			&detail.User.Name,
			&detail.User.Email,
			&detail.User.ContactPhone,
		); err != nil {
			return nil, err
		}
		requests = append(requests, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// Close deactivates a ticket. Its messages are kept.
func (r *SupportRequestRepository) Close(ctx context.Context, requestID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE support_requests
		SET is_active = FALSE
		WHERE id = $1
	`, requestID)
	return err
}
