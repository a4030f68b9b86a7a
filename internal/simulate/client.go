package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/pkg/logger"
)

// HTTPClient wraps http.Client with a base URL and timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends body as JSON and decodes a 2xx response into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func userPath(username, suffix string) string {
	return "/users/" + url.PathEscape(username) + "/" + suffix
}

// submitPlans logs every plan's values using a worker pool.
func submitPlans(ctx context.Context, cfg *Config, client *HTTPClient, plans []Plan, stats *Stats) {
	logger.Get().Info(ctx, "submitting metric logs",
		logger.Int("users", len(plans)),
		logger.Int("workers", cfg.Workers),
	)

	var submitted, successful, failed int64

	planChan := make(chan Plan, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plan := range planChan {
				for _, id := range model.MetricIDs() {
					if ctx.Err() != nil {
						return
					}
					atomic.AddInt64(&submitted, 1)
					err := client.do(ctx, http.MethodPost,
						userPath(plan.Username, "metrics/"+string(id)),
						map[string]float64{"value": plan.Values[id]}, nil)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if cfg.Verbose {
							logger.Get().Warn(ctx, "metric log failed",
								logger.String("username", plan.Username),
								logger.String("metric", string(id)),
								logger.Error(err),
							)
						}
						continue
					}
					atomic.AddInt64(&successful, 1)
				}
			}
		}()
	}

	go func() {
		defer close(planChan)
		for _, plan := range plans {
			select {
			case <-ctx.Done():
				return
			case planChan <- plan:
			}
		}
	}()

	wg.Wait()

	stats.LogsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.LogsSuccessful = int(atomic.LoadInt64(&successful))
	stats.LogsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "metric logs submitted",
		logger.Int("successful", stats.LogsSuccessful),
		logger.Int("failed", stats.LogsFailed),
	)
}
