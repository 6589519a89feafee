package ddns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// UpdatedMessage is sent after the record was changed.
func UpdatedMessage(site, record, ip string) string {
	return strings.TrimSpace(fmt.Sprintf("%s Updated: %s's new IP Address is %s", site, record, ip))
}

// FailedMessage is sent when the update could not be confirmed.
func FailedMessage(site, record, recordID, ip string) string {
	return strings.TrimSpace(fmt.Sprintf("%s DDNS Update Failed: %s: %s (%s).", site, record, recordID, ip))
}

// SlackNotifier posts messages to a Slack incoming webhook.
// channel may be empty, in which case the webhook's default channel is used.
func SlackNotifier(webhookURL, channel string) Notifier {
	return &slackNotifier{
		webhook: webhook{url: webhookURL, logger: discard},
		channel: channel,
	}
}

// DiscordNotifier posts messages to a Discord webhook.
func DiscordNotifier(webhookURL string) Notifier {
	return &discordNotifier{webhook: webhook{url: webhookURL, logger: discard}}
}

// notifiersFor returns one notifier per configured endpoint.
// They share a client bounded by s.HTTPTimeout.
func notifiersFor(s Settings) []Notifier {
	timeout := s.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	hc := NewHTTPClient(timeout)
	var ns []Notifier
	if s.SlackURL != "" {
		ns = append(ns, &slackNotifier{
			webhook: webhook{url: s.SlackURL, httpClient: hc, logger: discard},
			channel: s.SlackChannel,
		})
	}
	if s.DiscordURL != "" {
		ns = append(ns, &discordNotifier{webhook: webhook{url: s.DiscordURL, httpClient: hc, logger: discard}})
	}
	return ns
}

type slackPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

type discordPayload struct {
	Content string `json:"content"`
}

type slackNotifier struct {
	webhook
	channel string
}

func (n *slackNotifier) Notify(ctx context.Context, message string) {
	n.post(ctx, "slack", slackPayload{Channel: n.channel, Text: message})
}

type discordNotifier struct {
	webhook
}

func (n *discordNotifier) Notify(ctx context.Context, message string) {
	n.post(ctx, "discord", discordPayload{Content: message})
}

type webhook struct {
	url        string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

func (w *webhook) SetLogger(l logrus.FieldLogger) { w.logger = l }
func (w *webhook) SetHTTPClient(hc *http.Client)  { w.httpClient = hc }

// post delivers payload and logs, but otherwise ignores, any failure.
func (w *webhook) post(ctx context.Context, name string, payload any) {
	log := w.logger.WithField("notifier", name)
	if err := w.send(ctx, payload); err != nil {
		log.Debugf("notification not delivered: %s", err)
		return
	}
	log.Debug("notification delivered")
}

func (w *webhook) send(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if w.httpClient == nil {
		w.httpClient = NewHTTPClient(DefaultHTTPTimeout)
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("http request returned %s", resp.Status)
	}
	return nil
}
