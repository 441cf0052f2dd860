package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Slack posts anomaly alerts to an incoming-webhook URL. Disabled
// instances are no-ops so callers never need to branch.
type Slack struct {
	enabled bool
	webhook string
	client  *http.Client
}

func NewSlack(enabled bool, webhook string) *Slack {
	return &Slack{enabled: enabled, webhook: webhook, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *Slack) Send(text string) error {
	if !s.enabled || s.webhook == "" {
		return nil
	}
	body, _ := json.Marshal(map[string]string{"text": text})
	resp, err := s.client.Post(s.webhook, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook status %d", resp.StatusCode)
	}
	return nil
}

// FormatAnomaly renders the standard alert line.
func FormatAnomaly(when time.Time, value, mean, threshold float64) string {
	return fmt.Sprintf(":rotating_light: *Stream anomaly* at %s — value=%.3f mean=%.3f threshold=%.3f",
		when.Format(time.RFC3339), value, mean, threshold)
}
