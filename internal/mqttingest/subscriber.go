package mqttingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/config"
)

// Ingester is the subset of airquality.Service the subscriber feeds.
type Ingester interface {
	Ingest(ctx context.Context, payload map[string]any) (airquality.Reading, error)
	IngestRealtime(payload map[string]any) airquality.Snapshot
}

// Subscriber receives device payloads over MQTT. Messages on the sensor topic
// go to the durable store, messages on the realtime topic to the realtime cache.
type Subscriber struct {
	cfg    config.MQTTConfig
	svc    Ingester
	log    *slog.Logger
	client mqtt.Client
}

func New(cfg config.MQTTConfig, svc Ingester, log *slog.Logger) *Subscriber {
	if log == nil {
		log = slog.Default()
	}
	s := &Subscriber{cfg: cfg, svc: svc, log: log}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.log.Warn("mqtt connection lost", "broker", cfg.BrokerURL, "error", err)
		})
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker. Subscriptions are (re)established on every connect.
func (s *Subscriber) Start() error {
	token := s.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", s.cfg.BrokerURL, token.Error())
	}
	return nil
}

// Stop disconnects, waiting up to 250ms for in-flight work.
func (s *Subscriber) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

func (s *Subscriber) onConnect(c mqtt.Client) {
	filters := map[string]byte{
		s.cfg.SensorTopic:   s.cfg.QoS,
		s.cfg.RealtimeTopic: s.cfg.QoS,
	}
	token := c.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		s.handle(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		s.log.Error("mqtt subscribe failed", "error", token.Error())
		return
	}
	s.log.Info("mqtt subscribed", "sensorTopic", s.cfg.SensorTopic, "realtimeTopic", s.cfg.RealtimeTopic)
}

// handle routes one message to the matching sink. Bad payloads are logged and dropped.
func (s *Subscriber) handle(topic string, payload []byte) {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		s.log.Warn("mqtt: invalid json payload", "topic", topic, "error", err)
		return
	}

	switch topic {
	case s.cfg.SensorTopic:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r, err := s.svc.Ingest(ctx, body)
		if err != nil {
			if errors.Is(err, airquality.ErrMissingField) {
				s.log.Warn("mqtt: rejected sensor payload", "topic", topic, "error", err)
				return
			}
			s.log.Error("mqtt: failed to store reading", "topic", topic, "error", err)
			return
		}
		s.log.Debug("mqtt: reading stored", "id", r.ID, "ppm", r.PPM)
	case s.cfg.RealtimeTopic:
		s.svc.IngestRealtime(body)
	default:
		s.log.Warn("mqtt: message on unexpected topic", "topic", topic)
	}
}
