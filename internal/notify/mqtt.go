package notify

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTT message handler for stray inbound messages
var messagePubHandler mqtt.MessageHandler = func(client mqtt.Client, msg mqtt.Message) {
	log.Debug().Str("topic", msg.Topic()).Msg("received unexpected message")
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

// MQTTNotifier publishes reminders to a per-user topic. Companion apps
// subscribe to their own topic after registering a device token.
type MQTTNotifier struct {
	client mqtt.Client
	tokens TokenStore
}

type pushPayload struct {
	DeviceToken string `json:"device_token"`
	Title       string `json:"title"`
	Message     string `json:"message"`
}

func NewMQTTNotifier(brokerURL, clientID string, tokens TokenStore) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(messagePubHandler)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTNotifier{client: client, tokens: tokens}, nil
}

// SendPush looks up the user's registered device and publishes the reminder
// with QoS 1. A user without a registered device is a delivery failure.
func (n *MQTTNotifier) SendPush(ownerID int, title, message string) error {
	deviceToken, err := n.tokens.DeviceToken(context.Background(), ownerID)
	if err != nil {
		return fmt.Errorf("no registered device for user %d: %w", ownerID, err)
	}

	payload, err := json.Marshal(pushPayload{DeviceToken: deviceToken, Title: title, Message: message})
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("users/%d/reminders", ownerID)
	token := n.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish reminder for user %d: %w", ownerID, token.Error())
	}

	log.Info().Int("user_id", ownerID).Str("topic", topic).Msg("reminder push sent")
	return nil
}

func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
