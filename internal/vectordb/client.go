// Package vectordb wraps the Qdrant collection holding one vector record per
// indexed issue. All mutation goes through the consistency manager; this
// package only exposes the raw index operations.
package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"github.com/similigh/gh-dedupe/internal/config"
	"github.com/similigh/gh-dedupe/internal/retry"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client wraps Qdrant operations
type Client struct {
	qdrant  *qdrant.Client
	limiter *rate.Limiter
}

// NewClient creates a new Qdrant client
func NewClient(cfg *config.QdrantConfig, rps int) (*Client, error) {
	host, port := parseHostPort(cfg.URL)

	// cloud.qdrant.io requires TLS
	useTLS := strings.Contains(host, "qdrant.io") || strings.Contains(host, "qdrant.cloud")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}

	return &Client{qdrant: client, limiter: limiter}, nil
}

// parseHostPort extracts host and port from URL string
func parseHostPort(url string) (string, int) {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	if idx := strings.LastIndex(url, ":"); idx != -1 {
		host := url[:idx]
		var port int
		_, _ = fmt.Sscanf(url[idx+1:], "%d", &port)
		if port == 0 {
			port = 6334
		}
		return host, port
	}

	return url, 6334
}

// wait blocks until the rate limiter admits the next call
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// wrapErr translates gRPC status codes into retry.StatusError so the retry
// predicate can classify index faults without importing grpc.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}

	var httpCode int
	switch st.Code() {
	case codes.ResourceExhausted:
		httpCode = 429
	case codes.Unavailable:
		httpCode = 503
	case codes.DeadlineExceeded:
		httpCode = 504
	case codes.Internal, codes.Unknown:
		httpCode = 500
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, retry.NewStatusError(httpCode, err))
}

// Close closes the connection
func (c *Client) Close() error {
	if c.qdrant != nil {
		return c.qdrant.Close()
	}
	return nil
}
