package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/reservaid/reservaid/internal/common/config"
)

// PushSender posts notifications to the push gateway as {title, body, url}.
type PushSender struct {
	cfg  config.PushConfig
	http *http.Client
}

func NewPushSender(cfg config.PushConfig) *PushSender {
	return &PushSender{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one push message. A sender without a gateway URL is a no-op.
func (p *PushSender) Send(ctx context.Context, msg Message) error {
	if p == nil || strings.TrimSpace(p.cfg.GatewayURL) == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"title": msg.Title,
		"body":  msg.Body,
		"url":   p.cfg.DefaultURL,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("push gateway returned status %d", res.StatusCode)
	}
	return nil
}
