package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/services"
	"github.com/sirupsen/logrus"
)

const (
	EventNewMessage = "new_message"
	EventSubscribed = "subscribed"
	EventError      = "error"

	clientSendBuffer = 32
)

var ErrRelayStopped = errors.New("chat relay stopped")

// Event is a server-to-client frame.
type Event struct {
	Type      string          `json:"type"`
	ChatID    string          `json:"chat_id,omitempty"`
	Message   *MessagePayload `json:"message,omitempty"`
	Content   string          `json:"content,omitempty"`
	Timestamp string          `json:"timestamp"`
}

type MessagePayload struct {
	ID        string               `json:"id"`
	Text      string               `json:"text"`
	CreatedAt string               `json:"created_at"`
	ReadAt    *string              `json:"read_at"`
	Author    models.MessageAuthor `json:"author"`
}

type subscription struct {
	chatID string
	client *Client
}

type publication struct {
	chatID  string
	payload []byte
}

// Relay routes chat events to the connections subscribed to a support request.
// All state is owned by the Run goroutine; other goroutines talk to it over channels.
type Relay struct {
	clients map[*Client]map[string]struct{}
	topics  map[string]map[*Client]struct{}
	users   map[int64]map[*Client]struct{}

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan publication
	inspect     chan func()
	done        chan struct{}

	logger logrus.FieldLogger
}

func NewRelay(logger logrus.FieldLogger) *Relay {
	return &Relay{
		clients:     make(map[*Client]map[string]struct{}),
		topics:      make(map[string]map[*Client]struct{}),
		users:       make(map[int64]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan publication, 64),
		inspect:     make(chan func()),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run processes relay commands until ctx is cancelled. Every connection still
// registered at that point has its send buffer closed.
func (r *Relay) Run(ctx context.Context) {
	defer func() {
		for client := range r.clients {
			r.drop(client)
		}
		close(r.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-r.register:
			r.add(client)
		case client := <-r.unregister:
			r.drop(client)
		case sub := <-r.subscribe:
			r.addSubscription(sub)
		case sub := <-r.unsubscribe:
			r.removeSubscription(sub)
		case pub := <-r.publish:
			r.deliver(pub)
		case fn := <-r.inspect:
			fn()
		}
	}
}

func (r *Relay) Register(client *Client) {
	select {
	case r.register <- client:
	case <-r.done:
		close(client.send)
	}
}

func (r *Relay) Unregister(client *Client) {
	select {
	case r.unregister <- client:
	case <-r.done:
	}
}

func (r *Relay) Subscribe(chatID string, client *Client) {
	select {
	case r.subscribe <- subscription{chatID: chatID, client: client}:
	case <-r.done:
	}
}

func (r *Relay) Unsubscribe(chatID string, client *Client) {
	select {
	case r.unsubscribe <- subscription{chatID: chatID, client: client}:
	case <-r.done:
	}
}

// Publish queues an event for every connection subscribed to chatID. Delivery is
// best effort: nothing is replayed for connections that subscribe later.
func (r *Relay) Publish(ctx context.Context, chatID string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.publishPayload(ctx, chatID, payload)
}

func (r *Relay) publishPayload(ctx context.Context, chatID string, payload []byte) error {
	select {
	case <-r.done:
		return ErrRelayStopped
	default:
	}

	select {
	case r.publish <- publication{chatID: chatID, payload: payload}:
		return nil
	case <-r.done:
		return ErrRelayStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishMessage publishes a stored support message to its request's topic.
func (r *Relay) PublishMessage(
	ctx context.Context,
	request *models.SupportRequestDetail,
	message *models.SupportMessage,
) error {
	chatID, event := newMessageEvent(request, message)
	return r.Publish(ctx, chatID, event)
}

// Reply sends an event to a single registered connection.
func (r *Relay) Reply(client *Client, event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.query(func() {
		if _, exists := r.clients[client]; exists {
			r.sendTo(client, payload)
		}
	})
}

func (r *Relay) SubscriberCount(chatID string) int {
	count := 0
	r.query(func() {
		count = len(r.topics[chatID])
	})
	return count
}

func (r *Relay) UserConnections(userID int64) int {
	count := 0
	r.query(func() {
		count = len(r.users[userID])
	})
	return count
}

func (r *Relay) query(fn func()) {
	finished := make(chan struct{})
	select {
	case r.inspect <- func() {
		fn()
		close(finished)
	}:
		<-finished
	case <-r.done:
	}
}

func (r *Relay) add(client *Client) {
	if _, exists := r.clients[client]; exists {
		return
	}
	r.clients[client] = make(map[string]struct{})

	set, ok := r.users[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		r.users[client.userID] = set
	}
	set[client] = struct{}{}

	r.logger.WithFields(logrus.Fields{"connection_id": client.id, "user_id": client.userID}).
		Debug("chat connection registered")
}

func (r *Relay) drop(client *Client) {
	chats, exists := r.clients[client]
	if !exists {
		return
	}

	for chatID := range chats {
		r.removeFromTopic(chatID, client)
	}
	delete(r.clients, client)

	if set, ok := r.users[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(r.users, client.userID)
		}
	}

	close(client.send)

	r.logger.WithFields(logrus.Fields{"connection_id": client.id, "user_id": client.userID}).
		Debug("chat connection released")
}

func (r *Relay) addSubscription(sub subscription) {
	chats, exists := r.clients[sub.client]
	if !exists {
		return
	}
	chats[sub.chatID] = struct{}{}

	set, ok := r.topics[sub.chatID]
	if !ok {
		set = make(map[*Client]struct{})
		r.topics[sub.chatID] = set
	}
	set[sub.client] = struct{}{}

	payload, err := json.Marshal(Event{
		Type:      EventSubscribed,
		ChatID:    sub.chatID,
		Timestamp: services.FormatChatTimestamp(time.Now()),
	})
	if err != nil {
		return
	}
	r.sendTo(sub.client, payload)
}

func (r *Relay) removeSubscription(sub subscription) {
	chats, exists := r.clients[sub.client]
	if !exists {
		return
	}
	delete(chats, sub.chatID)
	r.removeFromTopic(sub.chatID, sub.client)
}

func (r *Relay) removeFromTopic(chatID string, client *Client) {
	set, ok := r.topics[chatID]
	if !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(r.topics, chatID)
	}
}

func (r *Relay) deliver(pub publication) {
	for client := range r.topics[pub.chatID] {
		r.sendTo(client, pub.payload)
	}
}

// sendTo never blocks; a connection that cannot keep up is dropped.
func (r *Relay) sendTo(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		r.logger.WithField("connection_id", client.id).Warn("chat connection send buffer full, dropping")
		r.drop(client)
	}
}

func newMessageEvent(request *models.SupportRequestDetail, message *models.SupportMessage) (string, *Event) {
	chatID := strconv.FormatInt(request.ID, 10)

	var readAt *string
	if message.ReadAt != nil {
		formatted := services.FormatChatTimestamp(*message.ReadAt)
		readAt = &formatted
	}

	return chatID, &Event{
		Type:   EventNewMessage,
		ChatID: chatID,
		Message: &MessagePayload{
			ID:        strconv.FormatInt(message.ID, 10),
			Text:      message.Text,
			CreatedAt: services.FormatChatTimestamp(message.SentAt),
			ReadAt:    readAt,
			Author:    message.Author,
		},
		Timestamp: services.FormatChatTimestamp(time.Now()),
	}
}
