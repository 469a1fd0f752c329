package api

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/credotech/inventory-console/pkg/logger"
)

// Options configures the remote resource client
type Options struct {
	BaseURL string
	Timeout time.Duration

	// Token supplies the current bearer credential; empty means
	// unauthenticated and no Authorization header is attached.
	Token func() string

	// OnUnauthorized is invoked once per 401 response, before the
	// AuthError is returned to the caller.
	OnUnauthorized func()
}

// Client is the typed remote resource client. Every method is a single
// request/response round trip; no retries happen at this layer.
type Client struct {
	http           *resty.Client
	onUnauthorized func()
}

// New creates a new remote resource client
func New(opts Options) *Client {
	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTransport(otelhttp.NewTransport(http.DefaultTransport))

	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.Token != nil {
		httpClient.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if token := opts.Token(); token != "" {
				r.SetHeader("Authorization", "Bearer "+token)
			}
			return nil
		})
	}

	logger.Logger.Info().
		Str("base_url", opts.BaseURL).
		Msg("Remote resource client initialized")

	return &Client{
		http:           httpClient,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// check maps a resty outcome onto the client error taxonomy
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if !resp.IsError() {
		return nil
	}
	if isUnauthorized(resp.StatusCode()) {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &AuthError{Op: op}
	}
	return &ValidationError{
		Op:      op,
		Status:  resp.StatusCode(),
		Message: serverMessage(resp.Body()),
	}
}
