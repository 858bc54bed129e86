package search

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/nexus_market/pkg/logging"
)

type Config struct {
	URL       string
	Username  string
	Password  string
	Transport http.RoundTripper
}

// NewClient connects and checks the cluster answers Info. An empty URL means
// search is disabled; callers get (nil, nil).
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	l := logging.FromContext(ctx).With("component", "search", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("elasticsearch_info_error", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	l.Info("elasticsearch_connected")
	return client, nil
}
