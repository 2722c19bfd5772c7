package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "AskChat/internal/answer"

	historyPath = "/history"
	askPath     = "/ask"

	maxErrorBody = 512
)

// Client talks to the Answer Service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter

	duration metric.Float64Histogram
	failures metric.Int64Counter
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout; zero disables it
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTracer overrides the global tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithMeter overrides the global meter
func WithMeter(meter metric.Meter) Option {
	return func(c *Client) { c.meter = meter }
}

// NewClient creates a client for the Answer Service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		tracer:     otel.Tracer(instrumentationName),
		meter:      otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.duration, err = c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	c.failures, err = c.meter.Int64Counter(
		"askchat.request.failures",
		metric.WithDescription("Answer Service calls that failed, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	return c, nil
}

// BaseURL returns the service root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// History fetches the service's ordered list of past exchanges.
// A missing or null history field yields an empty, non-nil slice.
func (c *Client) History(ctx context.Context) ([]Entry, error) {
	ctx, span := c.tracer.Start(ctx, "answer.history")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+historyPath, nil)
	if err != nil {
		return nil, c.fail(ctx, span, "history", &TransportError{Op: "history", Err: fmt.Errorf("failed to create request: %w", err)})
	}

	body, err := c.do(ctx, span, "history", req)
	if err != nil {
		return nil, err
	}

	var resp HistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.fail(ctx, span, "history", &TransportError{Op: "history", Err: fmt.Errorf("failed to unmarshal response: %w", err)})
	}
	if resp.History == nil {
		resp.History = []Entry{}
	}

	span.SetAttributes(attribute.Int("askchat.history.length", len(resp.History)))
	return resp.History, nil
}

// Ask submits a question and returns the service's answer.
func (c *Client) Ask(ctx context.Context, question string) (AskResponse, error) {
	ctx, span := c.tracer.Start(ctx, "answer.ask")
	defer span.End()

	jsonData, err := json.Marshal(AskRequest{Question: question})
	if err != nil {
		return AskResponse{}, c.fail(ctx, span, "ask", &TransportError{Op: "ask", Err: fmt.Errorf("failed to marshal request: %w", err)})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+askPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return AskResponse{}, c.fail(ctx, span, "ask", &TransportError{Op: "ask", Err: fmt.Errorf("failed to create request: %w", err)})
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(ctx, span, "ask", req)
	if err != nil {
		return AskResponse{}, err
	}

	var resp AskResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return AskResponse{}, c.fail(ctx, span, "ask", &TransportError{Op: "ask", Err: fmt.Errorf("failed to unmarshal response: %w", err)})
	}

	span.SetAttributes(attribute.String("askchat.source", string(resp.Source)))
	return resp, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, span trace.Span, op string, req *http.Request) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	span.SetAttributes(attribute.String("askchat.request_id", requestID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.duration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("askchat.op", op)))
	if err != nil {
		return nil, c.fail(ctx, span, op, &TransportError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)})
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, span, op, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, c.fail(ctx, span, op, &ServerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       snippet,
		})
	}

	c.logger.Debug("answer service call", "op", op, "request_id", requestID,
		"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, op string, err error) error {
	kind := "transport"
	if IsServerError(err) {
		kind = "server"
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("askchat.op", op),
		attribute.String("kind", kind),
	))
	return err
}
