package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a receipt text to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// SendError is a non-2xx answer from the messaging API.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("evolution api returned %d: %s", e.Status, e.Body)
}

// Permanent reports whether retrying cannot help. Rate limiting and server
// errors are worth another attempt; other client errors are not.
func (e *SendError) Permanent() bool {
	return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusTooManyRequests
}

// EvolutionSender posts text messages through an Evolution API instance.
type EvolutionSender struct {
	baseURL  string
	instance string
	apiKey   string
	client   *http.Client
}

func NewEvolutionSender(baseURL, instance, apiKey string) *EvolutionSender {
	return &EvolutionSender{
		baseURL:  strings.TrimRight(baseURL, "/"),
		instance: instance,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type sendTextRequest struct {
	Number  string `json:"number"`
	Options struct {
		Delay    int    `json:"delay"`
		Presence string `json:"presence"`
	} `json:"options"`
	TextMessage struct {
		Text string `json:"text"`
	} `json:"textMessage"`
}

func (s *EvolutionSender) Send(ctx context.Context, phone, text string) error {
	var payload sendTextRequest
	payload.Number = phone
	payload.Options.Delay = 1200
	payload.Options.Presence = "composing"
	payload.TextMessage.Text = text

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := s.baseURL + "/message/sendText/" + url.PathEscape(s.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &SendError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogSender only logs the message. It stands in when no messaging API is
// configured.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(_ context.Context, phone, text string) error {
	s.Logger.Info("order message (dry run)", zap.String("phone", phone), zap.Int("bytes", len(text)))
	return nil
}
