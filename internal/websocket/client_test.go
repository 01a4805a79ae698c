package chatws

import (
	"context"
	"testing"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
)

type allowAllChats struct{}

func (allowAllChats) CheckAccess(_ context.Context, _ int64, _ string, requestID int64) (*models.SupportRequestDetail, error) {
	return &models.SupportRequestDetail{SupportRequest: models.SupportRequest{ID: requestID}}, nil
}

func (allowAllChats) SendMessage(_ context.Context, requestID, _ int64, text string) (*models.SupportMessage, error) {
	return &models.SupportMessage{ID: 1, SupportRequestID: requestID, Text: text}, nil
}

func TestClientSubscribeNormalizesChatID(t *testing.T) {
	relay, _ := startRelay(t)
	client := newTestClient(relay, 1)

	client.handleFrame(allowAllChats{}, incomingFrame{Type: frameSubscribe, ChatID: " 012 "})
	if event := readEvent(t, client); event.Type != EventSubscribed || event.ChatID != "12" {
		t.Fatalf("expected subscribed frame for 12, got %+v", event)
	}
	if count := relay.SubscriberCount("12"); count != 1 {
		t.Fatalf("expected 1 subscriber on 12, got %d", count)
	}

	request, message := testMessage(12, 5, "hello")
	if err := relay.PublishMessage(context.Background(), request, message); err != nil {
		t.Fatalf("PublishMessage: %v", err)
	}
	if event := readEvent(t, client); event.Type != EventNewMessage || event.ChatID != "12" {
		t.Fatalf("expected message on 12, got %+v", event)
	}

	client.handleFrame(allowAllChats{}, incomingFrame{Type: frameUnsubscribe, ChatID: "0012"})
	if count := relay.SubscriberCount("12"); count != 0 {
		t.Fatalf("expected unsubscribe by padded id to remove client, got %d", count)
	}
}
