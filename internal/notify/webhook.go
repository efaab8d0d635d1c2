// Package notify delivers domain events to subscribed webhook endpoints.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docvision/internal/config"
	"docvision/internal/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Webhook-Signature"

const (
	maxResponseBody   = 1000
	defaultMaxLog     = 1000
	defaultRetryCount = 3
)

// DeliveryStatus is the state of one webhook delivery.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Webhook is a subscription to a set of event types.
type Webhook struct {
	ID      string             `json:"webhook_id"`
	URL     string             `json:"url"`
	Events  []domain.EventType `json:"events"`
	Secret  string             `json:"-"`
	Active  bool               `json:"active"`
	Headers map[string]string  `json:"headers,omitempty"`
}

func (w *Webhook) subscribes(t domain.EventType) bool {
	if !w.Active {
		return false
	}
	for _, e := range w.Events {
		if e == t {
			return true
		}
	}
	return false
}

// Delivery records the attempts made to deliver one event to one webhook.
type Delivery struct {
	ID           string           `json:"delivery_id"`
	WebhookID    string           `json:"webhook_id"`
	EventType    domain.EventType `json:"event_type"`
	Status       DeliveryStatus   `json:"status"`
	Attempts     int              `json:"attempts"`
	LastAttempt  *time.Time       `json:"last_attempt,omitempty"`
	ResponseCode int              `json:"response_code,omitempty"`
	ResponseBody string           `json:"response_body,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Config holds delivery settings shared by every webhook.
type Config struct {
	RetryCount int
	RetryDelay time.Duration
	Timeout    time.Duration
	// MaxLog bounds the in-memory delivery log; oldest entries are dropped first.
	MaxLog int
}

// Notifier fans events out to webhooks. It implements port.EventPublisher.
type Notifier struct {
	client *http.Client
	cfg    Config

	mu         sync.RWMutex
	hooks      map[string]*Webhook
	deliveries []Delivery

	wg sync.WaitGroup
}

// NewNotifier creates a Notifier with no subscriptions.
func NewNotifier(cfg Config) *Notifier {
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = defaultRetryCount
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxLog <= 0 {
		cfg.MaxLog = defaultMaxLog
	}
	return &Notifier{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		hooks:  make(map[string]*Webhook),
	}
}

// NewFromConfig builds a Notifier with one webhook per configured URL. An
// empty event list subscribes to every event.
func NewFromConfig(cfg config.WebhookConfig) (*Notifier, error) {
	n := NewNotifier(Config{
		RetryCount: cfg.RetryCount,
		RetryDelay: time.Duration(cfg.RetryDelaySecs) * time.Second,
		Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
	})
	events, err := ParseEvents(cfg.Events)
	if err != nil {
		return nil, err
	}
	for i, u := range cfg.URLs {
		if _, err := n.Register(Webhook{
			ID:     fmt.Sprintf("webhook-%d", i+1),
			URL:    u,
			Events: events,
			Secret: cfg.Secret,
			Active: true,
		}); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// ParseEvents validates event names. Empty input selects every event type.
func ParseEvents(names []string) ([]domain.EventType, error) {
	if len(names) == 0 {
		return append([]domain.EventType(nil), domain.AllEventTypes...), nil
	}
	known := make(map[domain.EventType]bool, len(domain.AllEventTypes))
	for _, t := range domain.AllEventTypes {
		known[t] = true
	}
	out := make([]domain.EventType, 0, len(names))
	for _, name := range names {
		t := domain.EventType(name)
		if !known[t] {
			return nil, fmt.Errorf("unknown webhook event %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}

// Register adds or replaces a webhook.
func (n *Notifier) Register(w Webhook) (*Webhook, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	u, err := url.Parse(w.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid webhook url %q", w.URL)
	}
	if len(w.Events) == 0 {
		return nil, errors.New("webhook must subscribe to at least one event")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	hook := w
	n.hooks[w.ID] = &hook
	cp := hook
	return &cp, nil
}

// Unregister removes a webhook and reports whether it existed.
func (n *Notifier) Unregister(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.hooks[id]; !ok {
		return false
	}
	delete(n.hooks, id)
	return true
}

// List returns the registered webhooks sorted by id.
func (n *Notifier) List() []Webhook {
	n.mu.RLock()
	out := make([]Webhook, 0, len(n.hooks))
	for _, h := range n.hooks {
		out = append(out, *h)
	}
	n.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (n *Notifier) subscribers(t domain.EventType) []Webhook {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []Webhook
	for _, h := range n.hooks {
		if h.subscribes(t) {
			out = append(out, *h)
		}
	}
	return out
}

// Publish delivers event in the background. Call Close to wait for pending deliveries.
func (n *Notifier) Publish(ctx context.Context, event domain.Event) {
	hooks := n.subscribers(event.Type)
	if len(hooks) == 0 {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", string(event.Type)).Msg("notifier.Publish: encoding event")
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, h := range hooks {
		n.wg.Add(1)
		go func(h Webhook) {
			defer n.wg.Done()
			n.record(n.deliver(ctx, h, event.Type, body))
		}(h)
	}
}

// Trigger delivers event to every subscriber and waits for the outcomes.
func (n *Notifier) Trigger(ctx context.Context, event domain.Event) ([]Delivery, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}
	hooks := n.subscribers(event.Type)
	out := make([]Delivery, 0, len(hooks))
	for _, h := range hooks {
		d := n.deliver(ctx, h, event.Type, body)
		n.record(d)
		out = append(out, d)
	}
	return out, nil
}

func (n *Notifier) deliver(ctx context.Context, h Webhook, t domain.EventType, body []byte) Delivery {
	d := Delivery{
		ID:        uuid.NewString(),
		WebhookID: h.ID,
		EventType: t,
		Status:    DeliveryPending,
	}

	for attempt := 1; attempt <= n.cfg.RetryCount; attempt++ {
		now := time.Now().UTC()
		d.Attempts = attempt
		d.LastAttempt = &now

		code, respBody, err := n.post(ctx, h, body)
		d.ResponseCode = code
		d.ResponseBody = respBody
		if err != nil {
			d.Error = err.Error()
		} else if code >= 200 && code < 300 {
			d.Status = DeliverySuccess
			d.Error = ""
			return d
		}

		if attempt < n.cfg.RetryCount {
			select {
			case <-ctx.Done():
				d.Status = DeliveryFailed
				d.Error = ctx.Err().Error()
				return d
			case <-time.After(n.cfg.RetryDelay * time.Duration(attempt)):
			}
		}
	}

	d.Status = DeliveryFailed
	log.Warn().Str("webhook_id", h.ID).Str("event", string(t)).Int("attempts", d.Attempts).
		Int("status", d.ResponseCode).Str("error", d.Error).Msg("notifier: delivery failed")
	return d
}

func (n *Notifier) post(ctx context.Context, h Webhook, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	if h.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, h.Secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, string(snippet), nil
}

func (n *Notifier) record(d Delivery) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deliveries = append(n.deliveries, d)
	if over := len(n.deliveries) - n.cfg.MaxLog; over > 0 {
		n.deliveries = append([]Delivery(nil), n.deliveries[over:]...)
	}
}

// Deliveries returns the most recent deliveries, oldest first, optionally
// filtered by webhook id and status.
func (n *Notifier) Deliveries(webhookID string, status DeliveryStatus, limit int) []Delivery {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []Delivery
	for _, d := range n.deliveries {
		if webhookID != "" && d.WebhookID != webhookID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, d)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Close waits for background deliveries to finish.
func (n *Notifier) Close() {
	n.wg.Wait()
}

// Sign returns the hex HMAC-SHA256 of body keyed by secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
