package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Reminder is the maintenance reminder payload handed to the delivery workers
// (email/WhatsApp senders run out of process and consume the queue).
type Reminder struct {
	ResourceID      string    `json:"resource_id"`
	ResourceName    string    `json:"resource_name"`
	ResourceKind    string    `json:"resource_kind"`
	MaintenanceType string    `json:"maintenance_type"`
	Date            time.Time `json:"date"`
	DaysRemaining   int       `json:"days_remaining"`
}

// Dispatcher enqueues reminders for asynchronous delivery.
type Dispatcher interface {
	DispatchReminder(ctx context.Context, reminder Reminder) error
}

// MQTTDispatcher publishes reminders as JSON to an MQTT topic.
type MQTTDispatcher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTDispatcher connects to the broker and returns a ready dispatcher.
func NewMQTTDispatcher(brokerURL, clientID, topic string) (*MQTTDispatcher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout to %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTDispatcher{client: client, topic: topic}, nil
}

// DispatchReminder publishes the reminder with QoS 1.
func (d *MQTTDispatcher) DispatchReminder(_ context.Context, reminder Reminder) error {
	payload, err := json.Marshal(reminder)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}

	token := d.client.Publish(d.topic, 1, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt publish timeout on %s", d.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (d *MQTTDispatcher) Close() {
	d.client.Disconnect(250)
}

// LogDispatcher logs reminders instead of publishing them. Used when no
// broker is configured and in tests.
type LogDispatcher struct{}

// DispatchReminder logs the reminder at info level.
func (LogDispatcher) DispatchReminder(_ context.Context, reminder Reminder) error {
	log.WithFields(log.Fields{
		"resource_id":      reminder.ResourceID,
		"resource_name":    reminder.ResourceName,
		"maintenance_type": reminder.MaintenanceType,
		"date":             reminder.Date.Format("2006-01-02"),
		"days_remaining":   reminder.DaysRemaining,
	}).Info("Maintenance reminder")
	return nil
}
