package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/quartz"
)

// healthPollInterval is how often WaitForHealthy retries
const healthPollInterval = 50 * time.Millisecond

// WaitForHealthy polls the room server's /health endpoint on the given clock
// until it answers 200 OK or ctx ends. baseURL is the server root, such as
// "http://localhost:8080".
func WaitForHealthy(ctx context.Context, clock quartz.Clock, baseURL string) error {
	client := &http.Client{Timeout: time.Second}
	ticker := clock.NewTicker(healthPollInterval, "server", "health")
	defer ticker.Stop()

	for {
		if healthy(ctx, client, baseURL+"/health") {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("room server at %s not healthy: %w", baseURL, ctx.Err())
		case <-ticker.C:
		}
	}
}

func healthy(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
