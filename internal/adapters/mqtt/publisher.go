package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/salam-labs/adzan/internal/domain"
)

type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// client est le sous-ensemble de pahomqtt.Client utilisé ici.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// Publisher implémente ports.Notifier et ports.StatePublisher.
type Publisher struct {
	logger      zerolog.Logger
	client      client
	topicPrefix string
	timeout     time.Duration
}

func Connect(logger zerolog.Logger, cfg Config) (*Publisher, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c pahomqtt.Client, err error) {
			logger.Warn().Err(err).Msg("mqtt connection lost")
		}).
		SetOnConnectHandler(func(c pahomqtt.Client) {
			logger.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	c := pahomqtt.NewClient(opts)
	token := c.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return newPublisher(logger, c, cfg.TopicPrefix), nil
}

func newPublisher(logger zerolog.Logger, c client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "adzan"
	}
	return &Publisher{logger: logger, client: c, topicPrefix: prefix, timeout: 5 * time.Second}
}

func (p *Publisher) topic(name string) string {
	return p.topicPrefix + "/" + name
}

func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return p.publish(ctx, p.topic("notification/"+string(n.Kind)), 1, false, b)
}

type statePayload struct {
	Active     domain.PrayerKey           `json:"active"`
	ActiveName string                     `json:"activeName"`
	Next       domain.NextPrayerCountdown `json:"next"`
	At         time.Time                  `json:"at"`
}

// PublishState publie l'état en retained, pour qu'un nouvel abonné (écran, HA) l'ait tout de suite.
func (p *Publisher) PublishState(ctx context.Context, tick domain.Tick) error {
	b, err := json.Marshal(statePayload{
		Active:     tick.Active,
		ActiveName: tick.Active.Label(),
		Next:       tick.Next,
		At:         tick.At,
	})
	if err != nil {
		return err
	}
	if err := p.publish(ctx, p.topic("state"), 0, true, b); err != nil {
		return err
	}
	return p.publish(ctx, p.topic("active"), 0, true, []byte(tick.Active))
}

func (p *Publisher) publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Msg("mqtt publish failed")
		return err
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
