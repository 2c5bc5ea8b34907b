package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremqtt "github.com/kilianp07/velomagg/core/mqtt"
	"github.com/kilianp07/velomagg/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes alerts with Eclipse Paho and optionally listens for
// run triggers.
type PahoClient struct {
	cli        pahoClient
	alertTopic string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
	onTrigger  func()
}

var _ coremqtt.Publisher = (*PahoClient)(nil)

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker. When cfg.TriggerTopic is set,
// every message received on it calls onTrigger; onTrigger may be nil.
func NewPahoClient(cfg Config, onTrigger func()) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_client")
	pc := &PahoClient{
		alertTopic: strings.TrimSuffix(cfg.AlertTopic, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     logger,
		onTrigger:  onTrigger,
	}

	opts.OnConnect = func(c paho.Client) {
		logger.Infof("MQTT connected")
		if cfg.TriggerTopic == "" || pc.onTrigger == nil {
			return
		}
		if token := c.Subscribe(cfg.TriggerTopic, cfg.QoS, pc.onTriggerMessage); token.Wait() && token.Error() != nil {
			logger.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

func (p *PahoClient) onTriggerMessage(_ paho.Client, msg paho.Message) {
	p.logger.Infof("run triggered from %s", msg.Topic())
	p.onTrigger()
}

// Topic returns the topic alerts about problem are published on.
func (p *PahoClient) Topic(problem string) string {
	return fmt.Sprintf("%s/%s", p.alertTopic, problem)
}

// PublishAlert publishes the alert as JSON, retrying with exponential
// backoff. A missing AlertID is generated.
func (p *PahoClient) PublishAlert(alert coremqtt.Alert) (string, error) {
	if alert.AlertID == "" {
		alert.AlertID = uuid.NewString()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return "", err
	}

	topic := p.Topic(alert.Problem)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("sent alert %s to %s", alert.AlertID, topic)
			return alert.AlertID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return "", fmt.Errorf("%w: %s: %v", coremqtt.ErrPublish, topic, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
