package chatws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultRedisChannel = "hotel:chat:events"

type redisEnvelope struct {
	ChatID string `json:"chat_id"`
	Event  *Event `json:"event"`
}

// RedisBridge shares chat events between server instances. Publishing goes to a Redis
// channel; Run forwards everything on that channel into the local Relay, including the
// events this instance published.
type RedisBridge struct {
	client  *redis.Client
	channel string
	relay   *Relay
	logger  logrus.FieldLogger
}

func NewRedisBridge(client *redis.Client, channel string, relay *Relay, logger logrus.FieldLogger) *RedisBridge {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBridge{
		client:  client,
		channel: channel,
		relay:   relay,
		logger:  logger,
	}
}

func (b *RedisBridge) PublishMessage(
	ctx context.Context,
	request *models.SupportRequestDetail,
	message *models.SupportMessage,
) error {
	chatID, event := newMessageEvent(request, message)
	payload, err := json.Marshal(redisEnvelope{ChatID: chatID, Event: event})
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run blocks until ctx is cancelled or the subscription fails.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.logger.WithField("channel", b.channel).Info("chat redis bridge subscribed")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.forward(ctx, msg.Payload)
		}
	}
}

func (b *RedisBridge) forward(ctx context.Context, payload string) {
	var envelope redisEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil || envelope.Event == nil || envelope.ChatID == "" {
		b.logger.WithField("payload", payload).Warn("chat redis bridge: malformed event")
		return
	}
	if err := b.relay.Publish(ctx, envelope.ChatID, envelope.Event); err != nil {
		b.logger.WithError(err).Warn("chat redis bridge: relay publish failed")
	}
}
