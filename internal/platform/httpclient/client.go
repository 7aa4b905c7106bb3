package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/cinema_client/internal/platform/logger"
	"github.com/srgjo27/cinema_client/internal/platform/metrics"
)

const RequestIDHeader = "X-Request-ID"

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

type RequestOptions struct {
	Method  string
	Body    interface{}
	Headers map[string]string
	Token   string
}

type Client struct {
	service    string
	baseURL    string
	envelope   Envelope
	httpClient *http.Client
	log        *logrus.Entry
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) {
		c.log = logger.Component(log, "httpclient").WithField("service", c.service)
	}
}

// New returns a client bound to one backend. The default http.Client has no
// timeout; callers bound requests through their context.
func New(service, baseURL string, envelope Envelope, opts ...Option) *Client {
	c := &Client{
		service:    service,
		baseURL:    baseURL,
		envelope:   envelope,
		httpClient: &http.Client{},
	}
	c.log = logger.Component(nil, "httpclient").WithField("service", service)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Envelope() Envelope {
	return c.envelope
}

func (c *Client) Service() string {
	return c.service
}

func (c *Client) URL(path string) string {
	base := strings.TrimRight(c.baseURL, "/")
	if path == "" {
		return base
	}
	if absoluteURL.MatchString(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (*Payload, error) {
	opts.Method = http.MethodGet
	return c.Request(ctx, path, opts)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}, opts RequestOptions) (*Payload, error) {
	opts.Method = http.MethodPost
	opts.Body = body
	return c.Request(ctx, path, opts)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}, opts RequestOptions) (*Payload, error) {
	opts.Method = http.MethodPut
	opts.Body = body
	return c.Request(ctx, path, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}, opts RequestOptions) (*Payload, error) {
	opts.Method = http.MethodPatch
	opts.Body = body
	return c.Request(ctx, path, opts)
}

func (c *Client) Delete(ctx context.Context, path string, opts RequestOptions) (*Payload, error) {
	opts.Method = http.MethodDelete
	return c.Request(ctx, path, opts)
}

// Request performs one round trip. Non-2xx responses come back as *HTTPError.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*Payload, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, isJSON, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if isJSON && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(c.service, method, 0, time.Since(start))
		c.log.WithFields(logrus.Fields{
			"method":     method,
			"path":       path,
			"request_id": requestID,
		}).WithError(err).Warn("upstream request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	metrics.RecordUpstream(c.service, method, resp.StatusCode, time.Since(start))
	c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": requestID,
	}).Debug("upstream request")

	payload, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Message: payload.errorMessage(resp.StatusCode)}
	}

	return payload, nil
}

// encodeBody passes readers, byte slices and strings through untouched and
// JSON encodes everything else.
func encodeBody(body interface{}) (io.Reader, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case io.Reader:
		return b, false, nil
	case []byte:
		return bytes.NewReader(b), false, nil
	case string:
		return strings.NewReader(b), false, nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, false, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(encoded), true, nil
	}
}

func parseResponse(resp *http.Response) (*Payload, error) {
	contentType := resp.Header.Get("Content-Type")

	switch {
	case strings.Contains(contentType, "application/json"):
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			return nullPayload, nil
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid JSON response (HTTP %d)", resp.StatusCode)
		}
		return &Payload{Kind: PayloadJSON, Raw: raw}, nil
	case strings.Contains(contentType, "text/"):
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return &Payload{Kind: PayloadText, Text: string(raw)}, nil
	default:
		return nullPayload, nil
	}
}
