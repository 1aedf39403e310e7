// Package bus wraps the MQTT connection the door hardware speaks over:
// credential events in, grant/deny notifications out.
package bus

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/doorro/gatekeeper/internal/config"
)

type Client struct {
	c mqtt.Client
}

// Connect establishes the broker session. onConnect runs on every successful
// (re)connection; subscriptions live there so they survive a broker restart.
func Connect(cfg config.MQTTConfig, onConnect func(*Client)) (*Client, error) {
	client := &Client{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(2 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			slog.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			slog.Info("mqtt connected", "url", cfg.URL)
			if onConnect != nil {
				onConnect(client)
			}
		})

	client.c = mqtt.NewClient(opts)

	token := client.c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.URL, token.Error())
	}

	return client, nil
}

// Publish sends a QoS 1 message.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.c.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, token.Error())
	}
	return nil
}

func (c *Client) SubscribeMultiple(topics map[string]byte, handler func(topic string, payload []byte)) error {
	token := c.c.SubscribeMultiple(topics, func(_ mqtt.Client, m mqtt.Message) {
		handler(m.Topic(), m.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe: %w", token.Error())
	}
	return nil
}

func (c *Client) Disconnect() {
	c.c.Disconnect(250)
}
