package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"options-trading-bot/internal/agents"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotifyIntent NotificationType = "intent"
	NotifyError  NotificationType = "error"
	NotifyInfo   NotificationType = "info"
)

// Notification is one outbound message
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Symbol    string
	Timestamp time.Time
	Extra     map[string]interface{}
}

// Notifier is implemented by each delivery provider
type Notifier interface {
	Send(n *Notification) error
	Name() string
	IsEnabled() bool
}

// Manager fans notifications out to every enabled provider
type Manager struct {
	notifiers []Notifier
	enabled   bool
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{enabled: true}
}

// AddNotifier registers a delivery provider
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Send delivers to all enabled providers, returning the last error seen
func (m *Manager) Send(n *Notification) error {
	if !m.enabled {
		return nil
	}
	var lastErr error
	for _, notifier := range m.notifiers {
		if notifier.IsEnabled() {
			if err := notifier.Send(n); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

// SendIntent announces a final trade intent
func (m *Manager) SendIntent(intent *agents.TradeIntent) error {
	msg := fmt.Sprintf("%s %s @ %.4f\nConfidence: %.2f | Size: %.2f\n%s",
		intent.Direction, intent.Symbol, intent.EntryPrice, intent.Confidence, intent.PositionSize, intent.Reasoning)
	if intent.StopLoss != nil && intent.TakeProfit != nil {
		msg += fmt.Sprintf("\nSL: %.4f | TP: %.4f", *intent.StopLoss, *intent.TakeProfit)
	}

	return m.Send(&Notification{
		Type:      NotifyIntent,
		Title:     fmt.Sprintf("Trade Intent: %s (%s)", intent.Symbol, intent.AgentName),
		Message:   msg,
		Symbol:    intent.Symbol,
		Timestamp: time.Now(),
		Extra: map[string]interface{}{
			"agent":      intent.AgentName,
			"direction":  string(intent.Direction),
			"confidence": intent.Confidence,
		},
	})
}

// SendError announces an engine-level failure
func (m *Manager) SendError(title, message string) error {
	return m.Send(&Notification{
		Type:      NotifyError,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// WebhookConfig holds generic webhook settings
type WebhookConfig struct {
	URL     string
	Enabled bool
}

// WebhookNotifier POSTs notifications as JSON to a configured endpoint
// (Discord-compatible payload shape).
type WebhookNotifier struct {
	url     string
	enabled bool
	client  *http.Client
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) IsEnabled() bool { return w.enabled }

func (w *WebhookNotifier) Send(n *Notification) error {
	if !w.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"content": fmt.Sprintf("**%s**\n%s", n.Title, n.Message),
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
