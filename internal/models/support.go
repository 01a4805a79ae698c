package models

import "time"

type SupportRequest struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type SupportRequestDetail struct {
	SupportRequest
	User UserSummary `json:"user"`
}

type SupportRequestSummary struct {
	ID             int64        `json:"id"`
	CreatedAt      time.Time    `json:"created_at"`
	IsActive       bool         `json:"is_active"`
	HasNewMessages bool         `json:"has_new_messages"`
	Client         *UserSummary `json:"client,omitempty"`
}

type MessageAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SupportMessage struct {
	ID               int64         `json:"id"`
	SupportRequestID int64         `json:"support_request_id"`
	Author           MessageAuthor `json:"author"`
	Text             string        `json:"text"`
	SentAt           time.Time     `json:"created_at"`
	ReadAt           *time.Time    `json:"read_at"`
}
