package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client wraps a paho client with connection retry and JSON publishing
type Client struct {
	client mqtt.Client
}

// Config holds MQTT client configuration
type Config struct {
	ServerURL         string
	ClientID          string
	MaxRetries        int           // Maximum number of connection retries (0 = infinite)
	InitialRetryDelay time.Duration // Initial delay between retries
	MaxRetryDelay     time.Duration // Maximum delay between retries
	OnConnect         func(*Client) // Callback to execute when connected
}

// NewClient creates a new MQTT client with the given configuration
// The client will attempt to connect asynchronously and retry if the initial connection fails
func NewClient(config Config) (*Client, error) {
	parsedURL, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}

	if parsedURL.Scheme != "mqtt" {
		return nil, ErrInvalidScheme
	}

	// Set default retry values if not specified
	initialDelay := config.InitialRetryDelay
	if initialDelay == 0 {
		initialDelay = time.Second
	}
	maxDelay := config.MaxRetryDelay
	if maxDelay == 0 {
		maxDelay = 30 * time.Second
	}

	// paho expects tcp:// for plain connections
	broker := *parsedURL
	broker.Scheme = "tcp"

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker.String())
	opts.SetClientID(config.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxDelay)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("connected to mqtt broker at %s", config.ServerURL)

		if config.OnConnect != nil {
			config.OnConnect(&Client{client: client})
		}
	})

	client := mqtt.NewClient(opts)

	// Start async connection with retry logic
	go func() {
		delay := initialDelay
		attempt := 0
		for {
			if token := client.Connect(); token.Wait() && token.Error() != nil {
				attempt++
				if config.MaxRetries > 0 && attempt >= config.MaxRetries {
					log.Printf("failed to connect to mqtt broker after %d attempts, giving up: %v", attempt, token.Error())
					return
				}

				log.Printf("failed to connect to mqtt broker (attempt %d): %v, retrying in %v", attempt, token.Error(), delay)
				time.Sleep(delay)

				// Exponential backoff
				delay = delay * 2
				if delay > maxDelay {
					delay = maxDelay
				}
				continue
			}
			return
		}
	}()

	return &Client{client: client}, nil
}

// Publish publishes a message to the specified topic
func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if token := c.client.Publish(topic, qos, retained, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, token.Error())
	}

	return nil
}

// PublishJSON marshals v and publishes it to topic
func (c *Client) PublishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}
	return c.Publish(topic, 0, false, payload)
}

// IsConnected returns true if the client is connected to the MQTT broker
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Disconnect disconnects from the MQTT broker
func (c *Client) Disconnect(quiesce uint) {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(quiesce)
		log.Printf("disconnected from mqtt broker")
	}
}
