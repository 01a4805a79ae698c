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

type supportRequestRepository interface {
	CreateWithMessage(ctx context.Context, userID int64, text string) (*models.SupportRequest, error)
	GetDetail(ctx context.Context, requestID int64) (*models.SupportRequestDetail, error)
	List(ctx context.Context, filter repository.SupportRequestListFilter) ([]models.SupportRequestDetail, error)
	Close(ctx context.Context, requestID int64) error
}

type supportMessageRepository interface {
	Create(ctx context.Context, supportRequestID, authorID int64, text string) (*models.SupportMessage, error)
	ListByRequest(ctx context.Context, supportRequestID int64) ([]models.SupportMessage, error)
	MarkReadByAuthor(ctx context.Context, supportRequestID, authorID int64, createdBefore time.Time) (int64, error)
	MarkReadExceptAuthor(ctx context.Context, supportRequestID, authorID int64, createdBefore time.Time) (int64, error)
	CountUnreadByAuthor(ctx context.Context, supportRequestID, authorID int64) (int, error)
	CountUnreadExceptAuthor(ctx context.Context, supportRequestID, authorID int64) (int, error)
}

// MessagePublisher fans a stored message out to live chat connections.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, request *models.SupportRequestDetail, message *models.SupportMessage) error
}

type ChatService struct {
	requests  supportRequestRepository
	messages  supportMessageRepository
	publisher MessagePublisher
	logger    logrus.FieldLogger
}

func NewChatService(
	requests supportRequestRepository,
	messages supportMessageRepository,
	publisher MessagePublisher,
	logger logrus.FieldLogger,
) *ChatService {
	return &ChatService{
		requests:  requests,
		messages:  messages,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *ChatService) CreateSupportRequest(
	ctx context.Context,
	userID int64,
	text string,
) (*models.SupportRequestSummary, error) {
	trimmed := strings.TrimSpace(text)
	if userID <= 0 || trimmed == "" {
		return nil, ErrInvalidInput
	}

	request, err := s.requests.CreateWithMessage(ctx, userID, trimmed)
	if err != nil {
		if hasPgCode(err, pgCodeForeignKeyViolation) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"support_request_id": request.ID, "user_id": userID}).
		Info("support request created")

	return &models.SupportRequestSummary{
		ID:             request.ID,
		CreatedAt:      request.CreatedAt,
		IsActive:       request.IsActive,
		HasNewMessages: false,
	}, nil
}

// SendMessage stores the message and then hands it to the publisher. A publish failure
// is logged; the stored message is still returned.
func (s *ChatService) SendMessage(
	ctx context.Context,
	supportRequestID int64,
	authorID int64,
	text string,
) (*models.SupportMessage, error) {
	trimmed := strings.TrimSpace(text)
	if supportRequestID <= 0 || authorID <= 0 || trimmed == "" {
		return nil, ErrInvalidInput
	}

	request, err := s.getRequest(ctx, supportRequestID)
	if err != nil {
		return nil, err
	}

	message, err := s.messages.Create(ctx, supportRequestID, authorID, trimmed)
	if err != nil {
		if hasPgCode(err, pgCodeForeignKeyViolation) {
			return nil, ErrSupportRequestNotFound
		}
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMessage(ctx, request, message); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"support_request_id": supportRequestID,
				"message_id":         message.ID,
			}).Warn("publish chat message failed")
		}
	}

	return message, nil
}

func (s *ChatService) GetMessages(ctx context.Context, supportRequestID int64) ([]models.SupportMessage, error) {
	if _, err := s.getRequest(ctx, supportRequestID); err != nil {
		return nil, err
	}
	return s.messages.ListByRequest(ctx, supportRequestID)
}

// MarkMessagesAsRead marks the counterpart's messages sent up to createdBefore. A client
// reads what staff wrote, an employee reads what the ticket owner wrote.
func (s *ChatService) MarkMessagesAsRead(
	ctx context.Context,
	readerRole string,
	readerID int64,
	supportRequestID int64,
	createdBefore time.Time,
) (int64, error) {
	if createdBefore.IsZero() {
		return 0, ErrInvalidInput
	}

	request, err := s.getRequest(ctx, supportRequestID)
	if err != nil {
		return 0, err
	}

	var updated int64
	switch {
	case readerRole == models.RoleClient:
		if readerID != request.UserID {
			return 0, ErrForbidden
		}
		updated, err = s.messages.MarkReadExceptAuthor(ctx, supportRequestID, request.UserID, createdBefore)
	case models.IsEmployee(readerRole):
		updated, err = s.messages.MarkReadByAuthor(ctx, supportRequestID, request.UserID, createdBefore)
	default:
		return 0, ErrForbidden
	}
	if err != nil {
		return 0, err
	}

	return updated, nil
}

func (s *ChatService) GetUnreadCount(ctx context.Context, readerRole string, supportRequestID int64) (int, error) {
	request, err := s.getRequest(ctx, supportRequestID)
	if err != nil {
		return 0, err
	}
	return s.countUnread(ctx, readerRole, &request.SupportRequest)
}

// FindSupportRequests lists tickets newest first. Employees also get the owning client.
func (s *ChatService) FindSupportRequests(
	ctx context.Context,
	readerRole string,
	filter repository.SupportRequestListFilter,
) ([]models.SupportRequestSummary, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, ErrInvalidInput
	}

	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.SupportRequestSummary, 0, len(requests))
	for i := range requests {
		request := requests[i]
		unread, err := s.countUnread(ctx, readerRole, &request.SupportRequest)
		if err != nil {
			return nil, err
		}

		summary := models.SupportRequestSummary{
			ID:             request.ID,
			CreatedAt:      request.CreatedAt,
			IsActive:       request.IsActive,
			HasNewMessages: unread > 0,
		}
		if models.IsEmployee(readerRole) {
			client := request.User
			summary.Client = &client
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *ChatService) CloseRequest(ctx context.Context, supportRequestID int64) error {
	if _, err := s.getRequest(ctx, supportRequestID); err != nil {
		return err
	}
	if err := s.requests.Close(ctx, supportRequestID); err != nil {
		return err
	}

	s.logger.WithField("support_request_id", supportRequestID).Info("support request closed")
	return nil
}

// CheckAccess allows employees on every ticket and clients on their own.
func (s *ChatService) CheckAccess(
	ctx context.Context,
	userID int64,
	role string,
	supportRequestID int64,
) (*models.SupportRequestDetail, error) {
	request, err := s.getRequest(ctx, supportRequestID)
	if err != nil {
		return nil, err
	}

	switch {
	case models.IsEmployee(role):
		return request, nil
	case role == models.RoleClient && request.UserID == userID:
		return request, nil
	default:
		return nil, ErrForbidden
	}
}

func (s *ChatService) getRequest(ctx context.Context, supportRequestID int64) (*models.SupportRequestDetail, error) {
	if supportRequestID <= 0 {
		return nil, ErrSupportRequestNotFound
	}
	request, err := s.requests.GetDetail(ctx, supportRequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSupportRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

func (s *ChatService) countUnread(ctx context.Context, readerRole string, request *models.SupportRequest) (int, error) {
	switch {
	case readerRole == models.RoleClient:
		return s.messages.CountUnreadExceptAuthor(ctx, request.ID, request.UserID)
	case models.IsEmployee(readerRole):
		return s.messages.CountUnreadByAuthor(ctx, request.ID, request.UserID)
	default:
		return 0, ErrForbidden
	}
}

func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
