package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"

	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

// EventKind tags the account activity being announced.
type EventKind string

const (
	EventRegister EventKind = "register"
	EventLogin    EventKind = "login"
)

// Event is one account activity announcement. It intentionally carries no
// credential material; only name and phone ever reach the webhook.
type Event struct {
	Kind  EventKind
	Name  string
	Phone string
	At    time.Time
}

type DiscordNotifierConfig struct {
	WebhookURL string
	Workers    int
	Timeout    time.Duration
	Logger     *logging.Logger
}

// DiscordNotifier posts account activity embeds to a Discord webhook.
// Delivery is fire-and-forget: failures are logged and dropped, and the
// submitting caller never blocks on the network.
type DiscordNotifier struct {
	httpClient *http.Client
	webhookURL string
	pool       *ants.Pool
	logger     *logging.Logger
	timezone   *time.Location
}

func NewDiscordNotifier(cfg DiscordNotifierConfig) (*DiscordNotifier, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create notifier pool: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	timezone, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		timezone = time.UTC
	}

	return &DiscordNotifier{
		httpClient: &http.Client{Timeout: timeout},
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		pool:       pool,
		logger:     logger,
		timezone:   timezone,
	}, nil
}

// Notify schedules one event delivery. Returns immediately; a full pool or
// missing webhook URL drops the event with a log line.
func (n *DiscordNotifier) Notify(event Event) {
	if n.webhookURL == "" {
		n.logger.Debug("discord webhook not configured, dropping event", "kind", event.Kind)
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	if err := n.pool.Submit(func() {
		n.deliver(event)
	}); err != nil {
		n.logger.Warn("discord notifier pool rejected event", "kind", event.Kind, "error", err)
	}
}

func (n *DiscordNotifier) Close() {
	n.pool.Release()
}

func (n *DiscordNotifier) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), n.httpClient.Timeout)
	defer cancel()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(BuildEmbedPayload(event, n.timezone)); err != nil {
		n.logger.Warn("encode discord payload failed", "kind", event.Kind, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(buf.B))
	if err != nil {
		n.logger.Warn("build discord request failed", "kind", event.Kind, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("discord webhook delivery failed", "kind", event.Kind, "error", err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		n.logger.Warn(
			"discord webhook rejected event",
			"kind", event.Kind,
			"status", resp.StatusCode,
			"error", crerr.Newf("discord status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw))),
		)
	}
}

// EmbedPayload matches Discord's webhook execute body.
type EmbedPayload struct {
	Embeds []Embed `json:"embeds"`
}

type Embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []EmbedField `json:"fields"`
	Footer    EmbedFooter  `json:"footer"`
	Timestamp string       `json:"timestamp"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// BuildEmbedPayload renders the announcement embed. Registrations are green,
// logins blue, matching the product's Discord channel conventions.
func BuildEmbedPayload(event Event, timezone *time.Location) EmbedPayload {
	emoji := "🔐"
	title := "Novo Login"
	color := 0x0099FF
	if event.Kind == EventRegister {
		emoji = "🆕"
		title = "Novo Cadastro"
		color = 0x00FF00
	}

	if timezone == nil {
		timezone = time.UTC
	}
	local := event.At.In(timezone)

	return EmbedPayload{
		Embeds: []Embed{{
			Title: emoji + " " + title + " - BolaCup",
			Color: color,
			Fields: []EmbedField{
				{Name: "👤 Nome", Value: "`" + event.Name + "`", Inline: true},
				{Name: "📱 Telefone", Value: "`" + event.Phone + "`", Inline: true},
			},
			Footer:    EmbedFooter{Text: "BolaCup • " + local.Format("02/01/2006 15:04:05")},
			Timestamp: event.At.UTC().Format(time.RFC3339),
		}},
	}
}
