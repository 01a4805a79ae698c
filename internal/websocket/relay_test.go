package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func startRelay(t *testing.T) (*Relay, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	relay := NewRelay(quietLogger())
	go relay.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-relay.done
	})
	return relay, cancel
}

func newTestClient(relay *Relay, userID int64) *Client {
	client := NewClient(relay, nil, userID, models.RoleClient)
	relay.Register(client)
	return client
}

func readEvent(t *testing.T, client *Client) Event {
	t.Helper()

	select {
	case payload, ok := <-client.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func expectNoEvent(t *testing.T, client *Client) {
	t.Helper()

	select {
	case payload := <-client.send:
		t.Fatalf("unexpected event %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func subscribe(t *testing.T, relay *Relay, chatID string, client *Client) {
	t.Helper()

	relay.Subscribe(chatID, client)
	if event := readEvent(t, client); event.Type != EventSubscribed || event.ChatID != chatID {
		t.Fatalf("expected subscribed frame for %s, got %+v", chatID, event)
	}
}

func testMessage(requestID, messageID int64, text string) (*models.SupportRequestDetail, *models.SupportMessage) {
	request := &models.SupportRequestDetail{SupportRequest: models.SupportRequest{ID: requestID, UserID: 1}}
	message := &models.SupportMessage{
		ID:               messageID,
		SupportRequestID: requestID,
		Author:           models.MessageAuthor{ID: 1, Name: "Guest"},
		Text:             text,
		SentAt:           time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	return request, message
}

func TestRelayDeliversOnlyToSubscribers(t *testing.T) {
	relay, _ := startRelay(t)
	ctx := context.Background()

	subscriber := newTestClient(relay, 1)
	other := newTestClient(relay, 2)
	subscribe(t, relay, "7", subscriber)
	subscribe(t, relay, "8", other)

	request, message := testMessage(7, 100, "hello")
	if err := relay.PublishMessage(ctx, request, message); err != nil {
		t.Fatalf("PublishMessage: %v", err)
	}

	event := readEvent(t, subscriber)
	if event.Type != EventNewMessage || event.ChatID != "7" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Message == nil || event.Message.ID != "100" || event.Message.Text != "hello" {
		t.Fatalf("unexpected payload %+v", event.Message)
	}
	if event.Message.CreatedAt != "2030-01-01T12:00:00Z" || event.Message.ReadAt != nil {
		t.Fatalf("unexpected timestamps %+v", event.Message)
	}
	expectNoEvent(t, other)
}

func TestRelayKeepsPublishOrderPerTopic(t *testing.T) {
	relay, _ := startRelay(t)
	ctx := context.Background()

	client := newTestClient(relay, 1)
	subscribe(t, relay, "7", client)

	for i := int64(1); i <= 10; i++ {
		request, message := testMessage(7, i, "msg")
		if err := relay.PublishMessage(ctx, request, message); err != nil {
			t.Fatalf("PublishMessage(%d): %v", i, err)
		}
	}

	for i := int64(1); i <= 10; i++ {
		event := readEvent(t, client)
		if event.Message == nil || event.Message.ID != strconv.FormatInt(i, 10) {
			t.Fatalf("event %d out of order: %+v", i, event.Message)
		}
	}
}

func TestRelayUnregisterRemovesEverySubscription(t *testing.T) {
	relay, _ := startRelay(t)

	first := newTestClient(relay, 1)
	second := newTestClient(relay, 1)
	subscribe(t, relay, "7", first)
	subscribe(t, relay, "8", first)
	subscribe(t, relay, "7", second)

	if got := relay.SubscriberCount("7"); got != 2 {
		t.Fatalf("expected 2 subscribers on 7, got %d", got)
	}
	if got := relay.UserConnections(1); got != 2 {
		t.Fatalf("expected 2 connections for user 1, got %d", got)
	}

	relay.Unregister(first)

	if got := relay.SubscriberCount("7"); got != 1 {
		t.Fatalf("expected 1 subscriber on 7, got %d", got)
	}
	if got := relay.SubscriberCount("8"); got != 0 {
		t.Fatalf("expected topic 8 to be empty, got %d", got)
	}
	if got := relay.UserConnections(1); got != 1 {
		t.Fatalf("expected 1 connection for user 1, got %d", got)
	}
	if _, ok := <-first.send; ok {
		t.Fatal("expected send channel of unregistered client to be closed")
	}

	relay.Unregister(first)
	relay.Unsubscribe("7", second)
	if got := relay.SubscriberCount("7"); got != 0 {
		t.Fatalf("expected topic 7 to be empty, got %d", got)
	}
}

func TestRelayDropsSlowClient(t *testing.T) {
	relay, _ := startRelay(t)
	ctx := context.Background()

	slow := newTestClient(relay, 1)
	relay.Subscribe("7", slow)

	for i := int64(1); i <= clientSendBuffer+5; i++ {
		request, message := testMessage(7, i, "flood")
		if err := relay.PublishMessage(ctx, request, message); err != nil {
			t.Fatalf("PublishMessage(%d): %v", i, err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for relay.UserConnections(1) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	received := 0
	for range slow.send {
		received++
	}
	if received != clientSendBuffer {
		t.Fatalf("expected %d buffered frames before the drop, got %d", clientSendBuffer, received)
	}
}

func TestRelayReplyReachesOneClient(t *testing.T) {
	relay, _ := startRelay(t)

	target := newTestClient(relay, 1)
	bystander := newTestClient(relay, 2)

	relay.Reply(target, &Event{Type: EventError, Content: "forbidden"})

	event := readEvent(t, target)
	if event.Type != EventError || event.Content != "forbidden" {
		t.Fatalf("unexpected reply %+v", event)
	}
	expectNoEvent(t, bystander)
}

func TestRelayStopsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	relay := NewRelay(quietLogger())
	go relay.Run(ctx)

	client := newTestClient(relay, 1)
	cancel()
	<-relay.done

	if _, ok := <-client.send; ok {
		t.Fatal("expected client send channel closed on shutdown")
	}

	request, message := testMessage(7, 1, "late")
	if err := relay.PublishMessage(context.Background(), request, message); !errors.Is(err, ErrRelayStopped) {
		t.Fatalf("expected ErrRelayStopped, got %v", err)
	}

	late := NewClient(relay, nil, 2, models.RoleClient)
	relay.Register(late)
	if _, ok := <-late.send; ok {
		t.Fatal("expected late registration to be closed immediately")
	}
	if got := relay.SubscriberCount("7"); got != 0 {
		t.Fatalf("expected zero after stop, got %d", got)
	}
}

func TestRedisBridgeForwardsEnvelopes(t *testing.T) {
	relay, _ := startRelay(t)
	bridge := NewRedisBridge(nil, "", relay, quietLogger())
	if bridge.channel != DefaultRedisChannel {
		t.Fatalf("expected default channel, got %q", bridge.channel)
	}

	client := newTestClient(relay, 1)
	subscribe(t, relay, "7", client)

	bridge.forward(context.Background(), "not json")
	bridge.forward(context.Background(), `{"chat_id":"7"}`)
	expectNoEvent(t, client)

	request, message := testMessage(7, 5, "via redis")
	chatID, event := newMessageEvent(request, message)
	payload, err := json.Marshal(redisEnvelope{ChatID: chatID, Event: event})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	bridge.forward(context.Background(), string(payload))

	got := readEvent(t, client)
	if got.Message == nil || got.Message.Text != "via redis" {
		t.Fatalf("unexpected forwarded event %+v", got)
	}
}
