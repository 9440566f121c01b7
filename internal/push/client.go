// Package push доставляет уведомления об изменениях на сервере через MQTT.
package push

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultQoS уровень доставки уведомлений: хотя бы один раз
const DefaultQoS byte = 1

// topicPrefix корень топиков уведомлений
const topicPrefix = "carekeeper/"

// ChangesTopic возвращает топик уведомлений пользователя
func ChangesTopic(userID string) string {
	return topicPrefix + userID + "/changes"
}

// UserFromTopic извлекает идентификатор пользователя из топика уведомлений
func UserFromTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, topicPrefix)
	if !ok {
		return "", false
	}
	user, ok := strings.CutSuffix(rest, "/changes")
	if !ok || user == "" || strings.Contains(user, "/") {
		return "", false
	}
	return user, true
}

// MessageHandler обработчик входящего сообщения
type MessageHandler func(topic string, payload []byte)

//go:generate moq -out broker_mock.go . Broker

// Broker минимальный интерфейс MQTT брокера. Реализуется Client.
type Broker interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Unsubscribe(topics ...string) error
}

// Config параметры подключения к брокеру
type Config struct {
	Broker         string        `mapstructure:"broker"`
	ClientID       string        `mapstructure:"client_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// Client MQTT клиент поверх paho
type Client struct {
	client  mqtt.Client
	logger  *slog.Logger
	timeout time.Duration
}

// Dial подключается к брокеру. Переподключение выполняется автоматически.
func Dial(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker address is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "broker", cfg.Broker, "error", err)
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("MQTT connected", "broker", cfg.Broker, "client_id", cfg.ClientID)
	})

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), cfg.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return &Client{client: client, logger: logger, timeout: cfg.ConnectTimeout}, nil
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timed out after %s", timeout)
	}
	return token.Error()
}

// Publish implements Broker.
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if err := wait(c.client.Publish(topic, qos, retained, payload), c.timeout); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// Subscribe implements Broker.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if err := wait(token, c.timeout); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return nil
}

// Unsubscribe implements Broker.
func (c *Client) Unsubscribe(topics ...string) error {
	if err := wait(c.client.Unsubscribe(topics...), c.timeout); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

// Close отключается от брокера, ожидая отправки до 250ms
func (c *Client) Close() {
	c.client.Disconnect(250)
}

// IsConnected reports whether the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
