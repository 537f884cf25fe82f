package webhook

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Endpoint is a named webhook destination.
type Endpoint struct {
	Name    string
	URL     string
	Token   string
	Timeout time.Duration
}

// Forwarder posts every payload to a fixed set of endpoints concurrently.
type Forwarder struct {
	client    *Client
	endpoints []Endpoint
	logger    *zap.SugaredLogger
	failures  atomic.Int64
}

// NewForwarder creates a Forwarder. A nil logger discards failure logs.
func NewForwarder(client *Client, endpoints []Endpoint, logger *zap.SugaredLogger) *Forwarder {
	if client == nil {
		client = NewClient()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Forwarder{client: client, endpoints: endpoints, logger: logger}
}

// Len returns the number of endpoints.
func (f *Forwarder) Len() int {
	return len(f.endpoints)
}

// Forward sends payload to all endpoints and waits for them. It returns how many failed.
func (f *Forwarder) Forward(ctx context.Context, payload any) int {
	if len(f.endpoints) == 0 {
		return 0
	}

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, ep := range f.endpoints {
		wg.Add(1)
		go func(ep Endpoint) {
			defer wg.Done()
			resp := f.client.Send(ctx, payload, SendOptions{URL: ep.URL, Token: ep.Token, Timeout: ep.Timeout})
			if resp.Success() {
				return
			}
			failed.Add(1)
			name := ep.Name
			if name == "" {
				name = ep.URL
			}
			f.logger.Warnw("webhook delivery failed", "webhook", name, "status", resp.StatusCode, "error", resp.Error)
		}(ep)
	}
	wg.Wait()

	n := failed.Load()
	f.failures.Add(n)
	return int(n)
}

// Failures returns the total number of failed deliveries so far.
func (f *Forwarder) Failures() int {
	return int(f.failures.Load())
}
