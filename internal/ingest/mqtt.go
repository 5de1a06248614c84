// Package ingest subscribes to device telemetry published over MQTT.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"go.uber.org/zap"

	"github.com/sebasr/device-timeseries/internal/config"
	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

var (
	// ErrInvalidTopic is returned for a topic outside <prefix>/<device>/data
	ErrInvalidTopic = errors.New("invalid telemetry topic")

	// ErrInvalidPayload is returned for a payload that is not a telemetry message
	ErrInvalidPayload = errors.New("invalid telemetry payload")
)

const disconnectTimeout = 5 * time.Second

// TelemetryIngestor stores one telemetry message of a device
type TelemetryIngestor interface {
	Ingest(ctx context.Context, device *models.Device, msg models.TelemetryMessage) (*models.IngestResult, error)
}

// Subscriber feeds messages published on <prefix>/<device name>/data into
// the ingestor
type Subscriber struct {
	cfg      config.MQTTConfig
	devices  repository.DeviceRepository
	ingestor TelemetryIngestor
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSubscriber creates a new MQTT subscriber. A positive timeout bounds
// the storage work of each message.
func NewSubscriber(
	cfg config.MQTTConfig,
	devices repository.DeviceRepository,
	ingestor TelemetryIngestor,
	timeout time.Duration,
	logger *zap.Logger,
) *Subscriber {
	return &Subscriber{
		cfg:      cfg,
		devices:  devices,
		ingestor: ingestor,
		timeout:  timeout,
		logger:   logger.With(zap.String("component", "mqtt")),
	}
}

// Topic returns the wildcard subscription topic
func (s *Subscriber) Topic() string {
	return s.cfg.TopicPrefix + "/+/data"
}

// Run connects to the broker and processes messages until ctx is cancelled.
// Connection loss is retried by the connection manager.
func (s *Subscriber) Run(ctx context.Context) error {
	u, err := url.Parse(s.cfg.BrokerURL)
	if err != nil {
		return fmt.Errorf("invalid MQTT broker URL: %w", err)
	}

	topic := s.Topic()
	cliCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{u},
		KeepAlive:                     s.cfg.KeepAlive,
		CleanStartOnInitialConnection: false,
		SessionExpiryInterval:         60,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			s.logger.Info("connected to broker", zap.String("broker", u.Host))
			if _, err := cm.Subscribe(ctx, &paho.Subscribe{
				Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: 1}},
			}); err != nil {
				s.logger.Error("failed to subscribe", zap.String("topic", topic), zap.Error(err))
				return
			}
			s.logger.Info("subscribed", zap.String("topic", topic))
		},
		OnConnectError: func(err error) {
			s.logger.Warn("broker connection attempt failed", zap.Error(err))
		},
		ClientConfig: paho.ClientConfig{
			ClientID: s.cfg.ClientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){
				func(pr paho.PublishReceived) (bool, error) {
					s.receive(ctx, pr.Packet.Topic, pr.Packet.Payload)
					return true, nil
				},
			},
			OnClientError: func(err error) {
				s.logger.Warn("client error", zap.Error(err))
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				s.logger.Warn("server requested disconnect", zap.Uint8("reason_code", d.ReasonCode))
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, cliCfg)
	if err != nil {
		return fmt.Errorf("failed to start MQTT connection: %w", err)
	}

	<-ctx.Done()

	disconnectCtx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := cm.Disconnect(disconnectCtx); err != nil {
		s.logger.Warn("failed to disconnect cleanly", zap.Error(err))
	}
	<-cm.Done()
	return nil
}

func (s *Subscriber) receive(ctx context.Context, topic string, payload []byte) {
	result, err := s.Handle(ctx, topic, payload)
	switch {
	case err == nil:
		s.logger.Debug("stored telemetry",
			zap.String("topic", topic),
			zap.Strings("accepted", result.Accepted))
	case errors.Is(err, repository.ErrDuplicateSample):
		s.logger.Warn("dropped duplicate readings",
			zap.String("topic", topic),
			zap.Strings("keys", result.Duplicates))
	case errors.Is(err, ErrInvalidTopic), errors.Is(err, ErrInvalidPayload), errors.Is(err, repository.ErrDeviceNotFound):
		s.logger.Warn("rejected telemetry", zap.String("topic", topic), zap.Error(err))
	default:
		s.logger.Error("failed to store telemetry", zap.String("topic", topic), zap.Error(err))
	}
}

// Handle stores one published message. Duplicate readings are reported in
// the result and returned as an error wrapping repository.ErrDuplicateSample.
func (s *Subscriber) Handle(ctx context.Context, topic string, payload []byte) (*models.IngestResult, error) {
	name, err := s.deviceName(topic)
	if err != nil {
		return nil, err
	}

	var msg models.TelemetryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if msg.Data == nil {
		return nil, fmt.Errorf("%w: data is required", ErrInvalidPayload)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	device, err := s.devices.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", name, err)
	}

	return s.ingestor.Ingest(ctx, device, msg)
}

func (s *Subscriber) deviceName(topic string) (string, error) {
	rest, ok := strings.CutPrefix(topic, s.cfg.TopicPrefix+"/")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	name, ok := strings.CutSuffix(rest, "/data")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	return name, nil
}
