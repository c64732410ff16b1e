package publisher

import (
	"context"
	"encoding/json"
	"time"
)

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish publishes a message to the stream for key
	Publish(ctx context.Context, key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// ResultMessage is the payload published for every successful scrape
type ResultMessage struct {
	JobID     string            `json:"job_id,omitempty"`
	Site      string            `json:"site"`
	URL       string            `json:"url"`
	Result    map[string]string `json:"result"`
	ScrapedAt time.Time         `json:"scraped_at"`
}

// PublishResult encodes msg and publishes it under its site
func PublishResult(ctx context.Context, p Publisher, msg ResultMessage) error {
	if msg.Result == nil {
		msg.Result = map[string]string{}
	}
	if msg.ScrapedAt.IsZero() {
		msg.ScrapedAt = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.Publish(ctx, msg.Site, data)
}
