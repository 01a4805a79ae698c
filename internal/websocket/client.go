package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/services"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
	frameMessage     = "message"

	frameTimeout = 10 * time.Second
)

// Client is one websocket connection. Its identity is fixed at registration.
type Client struct {
	id     string
	relay  *Relay
	conn   *websocket.Conn
	userID int64
	role   string
	send   chan []byte
}

type chatSender interface {
	CheckAccess(ctx context.Context, userID int64, role string, supportRequestID int64) (*models.SupportRequestDetail, error)
	SendMessage(ctx context.Context, supportRequestID int64, authorID int64, text string) (*models.SupportMessage, error)
}

type incomingFrame struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func NewClient(relay *Relay, conn *websocket.Conn, userID int64, role string) *Client {
	return &Client{
		id:     uuid.NewString(),
		relay:  relay,
		conn:   conn,
		userID: userID,
		role:   role,
		send:   make(chan []byte, clientSendBuffer),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) ReadPump(service chatSender) {
	defer func() {
		c.relay.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming incomingFrame
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.replyError("invalid message payload")
			continue
		}

		c.handleFrame(service, incoming)
	}
}

func (c *Client) handleFrame(service chatSender, incoming incomingFrame) {
	chatID := strings.TrimSpace(incoming.ChatID)
	requestID, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || requestID <= 0 {
		c.replyError("invalid chat id")
		return
	}
	// Topics use the canonical id, the same key PublishMessage derives.
	chatID = strconv.FormatInt(requestID, 10)

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	switch incoming.Type {
	case frameSubscribe:
		if _, err := service.CheckAccess(ctx, c.userID, c.role, requestID); err != nil {
			c.replyError(accessErrorText(err))
			return
		}
		c.relay.Subscribe(chatID, c)
	case frameUnsubscribe:
		c.relay.Unsubscribe(chatID, c)
	case frameMessage:
		if _, err := service.CheckAccess(ctx, c.userID, c.role, requestID); err != nil {
			c.replyError(accessErrorText(err))
			return
		}
		if _, err := service.SendMessage(ctx, requestID, c.userID, incoming.Text); err != nil {
			if errors.Is(err, services.ErrInvalidInput) {
				c.replyError("message text is required")
				return
			}
			c.replyError("failed to send message")
		}
	default:
		c.replyError("unsupported message type")
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) replyError(message string) {
	c.relay.Reply(c, &Event{
		Type:      EventError,
		Content:   message,
		Timestamp: services.FormatChatTimestamp(time.Now()),
	})
}

func accessErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrSupportRequestNotFound):
		return "support request not found"
	case errors.Is(err, services.ErrForbidden):
		return "forbidden"
	default:
		return "failed to check access"
	}
}
