// Package client provides the authenticated Costlocker GraphQL client used
// by the report fetcher. It wraps the genqlient runtime client with static
// token authentication, error classification, and request metrics.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Khan/genqlient/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/costlocker/report-export/pkg/logging"
)

// Prometheus metrics for GraphQL client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "costlocker_graphql_requests_total",
		Help: "Total GraphQL requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "costlocker_graphql_request_duration_seconds",
		Help:    "GraphQL request duration in seconds by operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "costlocker_graphql_errors_total",
		Help: "Total GraphQL client errors by class",
	}, []string{"class"})
)

const defaultTimeout = 30 * time.Second

// Client is the authenticated GraphQL client.
type Client struct {
	gql    graphql.Client
	config Config
	logger zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the GraphQL endpoint URL (REQUIRED).
	Endpoint string

	// Token is the static API credential, sent as
	// "Authorization: Static <token>" on every request (REQUIRED).
	Token string

	// Timeout bounds each request round trip (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the underlying HTTP client. The auth transport
	// is layered on top of its Transport. Mainly for testing.
	HTTPClient *http.Client
}

// New creates a new GraphQL client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("endpoint must be an absolute http(s) URL (got %q)", cfg.Endpoint)
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("api token is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	authed := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &authTransport{
			token:   cfg.Token,
			wrapped: base,
		},
	}

	return &Client{
		gql:    graphql.NewClient(cfg.Endpoint, authed),
		config: cfg,
		logger: logging.NewLogger("graphql-client"),
	}, nil
}

// authTransport injects the static Authorization header before delegating
// to the wrapped transport.
type authTransport struct {
	token   string
	wrapped http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per RoundTripper contract the request must not be mutated in place.
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", fmt.Sprintf("Static %s", t.token))
	return t.wrapped.RoundTrip(r)
}

// Query executes a single GraphQL query and decodes the data payload into
// out. Every call is a fresh network round trip: no caching, no retry.
// Transport failures and GraphQL error responses propagate unmodified.
func (c *Client) Query(ctx context.Context, opName, query string, variables, out any) error {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(opName).Observe(time.Since(start).Seconds())
	}()

	c.logger.Debug().
		Str("operation", opName).
		Msg("Executing GraphQL request")

	req := &graphql.Request{
		OpName:    opName,
		Query:     query,
		Variables: variables,
	}
	resp := &graphql.Response{Data: out}

	if err := c.gql.MakeRequest(ctx, req, resp); err != nil {
		class := ClassifyError(err)
		errorsTotal.WithLabelValues(string(class)).Inc()
		requestsTotal.WithLabelValues(opName, string(class)).Inc()

		c.logger.Error().
			Err(err).
			Str("operation", opName).
			Str("error_class", string(class)).
			Msg("GraphQL request failed")

		return &QueryError{Operation: opName, Class: class, Err: err}
	}

	requestsTotal.WithLabelValues(opName, "ok").Inc()
	return nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}
