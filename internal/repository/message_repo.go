package repository

import (
	"context"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(
	ctx context.Context,
	supportRequestID int64,
	authorID int64,
	text string,
) (*models.SupportMessage, error) {
	query := `
		WITH m AS (
			INSERT INTO support_messages (support_request_id, author_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, support_request_id, author_id, text, sent_at, read_at
		)
		SELECT m.id, m.support_request_id, m.author_id, u.name, m.text, m.sent_at, m.read_at
		FROM m
		JOIN users u ON u.id = m.author_id
	`

	var message models.SupportMessage
	err := r.db.QueryRow(ctx, query, supportRequestID, authorID, text).Scan(
		&message.ID,
		&message.SupportRequestID,
		&message.Author.ID,
		&message.Author.Name,
		&message.Text,
		&message.SentAt,
		&message.ReadAt,
	)
	if err != nil {
		return nil, err
	}

	return &message, nil
}

func (r *MessageRepository) ListByRequest(
	ctx context.Context,
	supportRequestID int64,
) ([]models.SupportMessage, error) {
	query := `
		SELECT m.id, m.support_request_id, m.author_id, u.name, m.text, m.sent_at, m.read_at
		FROM support_messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.support_request_id = $1
		ORDER BY m.sent_at ASC, m.id ASC
	`

	rows, err := r.db.Query(ctx, query, supportRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.SupportMessage, 0)
	for rows.Next() {
		var message models.SupportMessage
		if err := rows.Scan(
			&message.ID,
			&message.SupportRequestID,
			&message.Author.ID,
			&message.Author.Name,
			&message.Text,
			&message.SentAt,
			&message.ReadAt,
		); err != nil {
			return nil, err
		}

		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkReadByAuthor stamps read_at on unread messages written by authorID.
func (r *MessageRepository) MarkReadByAuthor(
	ctx context.Context,
	supportRequestID int64,
	authorID int64,
	createdBefore time.Time,
) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE support_messages
		SET read_at = NOW()
		WHERE support_request_id = $1
		  AND author_id = $2
		  AND sent_at <= $3
		  AND read_at IS NULL
	`, supportRequestID, authorID, createdBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkReadExceptAuthor stamps read_at on unread messages written by anyone but authorID.
func (r *MessageRepository) MarkReadExceptAuthor(
	ctx context.Context,
	supportRequestID int64,
	authorID int64,
	createdBefore time.Time,
) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE support_messages
		SET read_at = NOW()
		WHERE support_request_id = $1
		  AND author_id <> $2
		  AND sent_at <= $3
		  AND read_at IS NULL
	`, supportRequestID, authorID, createdBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *MessageRepository) CountUnreadByAuthor(
	ctx context.Context,
	supportRequestID int64,
	authorID int64,
) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM support_messages
		WHERE support_request_id = $1
		  AND author_id = $2
		  AND read_at IS NULL
	`, supportRequestID, authorID).Scan(&count)
	return count, err
}

func (r *MessageRepository) CountUnreadExceptAuthor(
	ctx context.Context,
	supportRequestID int64,
	authorID int64,
) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM support_messages
		WHERE support_request_id = $1
		  AND author_id <> $2
		  AND read_at IS NULL
	`, supportRequestID, authorID).Scan(&count)
	return count, err
}
