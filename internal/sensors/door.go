package sensors

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/config"
	"github.com/chandlerburket/security-camera/internal/models"
)

// DoorHandler receives parsed door events, the same path webhook posts take.
type DoorHandler func(models.DoorEvent)

// DoorListener subscribes to an MQTT topic where ESP32-style door sensors
// publish their state changes.
type DoorListener struct {
	client  mqtt.Client
	topic   string
	handler DoorHandler
}

// NewDoorListener connects to the broker and subscribes. The subscription is
// re-established from the connect handler so broker restarts do not silently
// drop it.
func NewDoorListener(cfg *config.Server, handler DoorHandler) (*DoorListener, error) {
	l := &DoorListener{
		topic:   cfg.MQTTTopic,
		handler: handler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetOnConnectHandler(l.subscribe)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if ok := token.WaitTimeout(10 * time.Second); !ok {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	l.client = client
	return l, nil
}

func (l *DoorListener) subscribe(client mqtt.Client) {
	token := client.Subscribe(l.topic, 1, l.onMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Error().Err(err).Str("topic", l.topic).Msg("MQTT subscribe failed")
		return
	}
	log.Info().Str("topic", l.topic).Msg("Listening for door sensor events")
}

func (l *DoorListener) onMessage(_ mqtt.Client, msg mqtt.Message) {
	var event models.DoorEvent
	if err := json.Unmarshal(msg.Payload(), &event); err != nil {
		log.Warn().
			Err(err).
			Str("topic", msg.Topic()).
			Msg("Dropping undecodable door message")
		return
	}
	if event.DoorState == "" {
		log.Warn().
			Str("topic", msg.Topic()).
			Msg("Dropping door message without door_state")
		return
	}

	if event.Device == "" {
		event.Device = deviceFromTopic(msg.Topic())
	}
	if event.Timestamp == 0 {
		event.Timestamp = models.UnixSeconds(time.Now())
	}

	l.handler(event)
}

// deviceFromTopic falls back to the last topic segment when the payload
// does not name its device, matching the sensors/door/<device> layout.
func deviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	last := parts[len(parts)-1]
	if last == "" || last == "#" || last == "+" {
		return "unknown"
	}
	return last
}

// Close disconnects from the broker.
func (l *DoorListener) Close() {
	if l.client != nil && l.client.IsConnected() {
		l.client.Disconnect(250)
	}
}
