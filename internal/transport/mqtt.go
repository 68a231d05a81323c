package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"rover_control/internal/logger"
	"rover_control/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	defaultTopic        = "rover"
	publishTimeout      = 5 * time.Second
	disconnectQuiesceMs = 250
)

// Publisher is the subset of mqtt.Client the transport needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// commandMessage is published on <topic>/command.
type commandMessage struct {
	ID        string           `json:"id"`
	Command   string           `json:"command"` // start | stop
	Direction models.Direction `json:"direction,omitempty"`
	SentAt    time.Time        `json:"sent_at"`
}

// actionMessage is published on <topic>/action.
type actionMessage struct {
	ID     string    `json:"id"`
	Action string    `json:"action"`
	SentAt time.Time `json:"sent_at"`
}

// MQTT publishes commands to a broker. Publishing never blocks the caller;
// delivery errors are only logged.
type MQTT struct {
	client Publisher
	topic  string
	qos    byte
	log    *logger.Logger
	now    func() time.Time
}

// NewMQTT returns a transport publishing under topic with the given QoS.
func NewMQTT(client Publisher, topic string, qos byte, log *logger.Logger) *MQTT {
	if topic == "" {
		topic = defaultTopic
	}
	if qos > 2 {
		qos = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MQTT{client: client, topic: topic, qos: qos, log: log, now: time.Now}
}

// CommandTopic returns the topic motion commands are published on.
func (t *MQTT) CommandTopic() string { return t.topic + "/command" }

// ActionTopic returns the topic auxiliary actions are published on.
func (t *MQTT) ActionTopic() string { return t.topic + "/action" }

// Start publishes a start command for direction.
func (t *MQTT) Start(direction models.Direction) {
	t.publish(t.CommandTopic(), commandMessage{
		ID:        uuid.NewString(),
		Command:   "start",
		Direction: direction,
		SentAt:    t.now().UTC(),
	})
}

// Stop publishes a stop command.
func (t *MQTT) Stop() {
	t.publish(t.CommandTopic(), commandMessage{
		ID:      uuid.NewString(),
		Command: "stop",
		SentAt:  t.now().UTC(),
	})
}

// SendAction publishes an auxiliary action.
func (t *MQTT) SendAction(action string) {
	t.publish(t.ActionTopic(), actionMessage{
		ID:     uuid.NewString(),
		Action: action,
		SentAt: t.now().UTC(),
	})
}

func (t *MQTT) publish(topic string, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		t.log.Errorw("mqtt_marshal_failed", "topic", topic, "err", err)
		return
	}
	token := t.client.Publish(topic, t.qos, false, payload)
	go t.await(topic, token)
}

func (t *MQTT) await(topic string, token mqtt.Token) {
	if !token.WaitTimeout(publishTimeout) {
		t.log.Warnw("mqtt_publish_timeout", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		t.log.Errorw("mqtt_publish_failed", "topic", topic, "err", err)
		return
	}
	t.log.Debugw("mqtt_published", "topic", topic)
}

// ClientConfig holds MQTT broker connection settings.
type ClientConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Connect opens a broker connection with auto-reconnect.
func Connect(cfg ClientConfig, log *logger.Logger) (mqtt.Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "rover-control-" + uuid.NewString()[:8]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Infow("mqtt_connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnw("mqtt_connection_lost", "err", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// Disconnect closes the broker connection, letting in-flight work finish.
func Disconnect(client mqtt.Client) {
	client.Disconnect(disconnectQuiesceMs)
}
