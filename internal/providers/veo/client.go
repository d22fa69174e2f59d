package veo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"logomotion/internal/domain"
	"logomotion/internal/infra"
	"logomotion/pkg/imagedata"
)

const (
	// videoCount is fixed: every request produces exactly one video.
	videoCount = 1
	// resolution is fixed by the product; the SPA only chooses the frame shape.
	resolution = "720p"

	defaultModel        = "veo-2.0-generate-001"
	defaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultPollInterval = 10 * time.Second
)

var (
	// ErrMissingAPIKey indicates that the client was configured without credentials.
	ErrMissingAPIKey = errors.New("veo: api key is required")
	// ErrNoDownloadLink is the terminal failure for an operation that finished
	// without a usable video reference. It is never retried.
	ErrNoDownloadLink = errors.New("veo: no download link found")
)

// Options configures the Veo video-generation client.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *infra.Logger
}

// Client performs HTTP calls against the Veo long-running generation API:
// one submit, then an unbounded fixed-interval poll of the returned
// operation until the service flags it done.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *infra.Logger
}

// GenerateRequest captures the inputs for one logo animation.
type GenerateRequest struct {
	Prompt      string
	Image       *imagedata.Image
	AspectRatio domain.AspectRatio
	RequestID   string
}

// Operation is the service's handle for an in-flight or completed generation.
// The client never mutates it locally; it is replaced wholesale on each poll.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *operationError    `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

type operationError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type operationResponse struct {
	GeneratedVideos []generatedVideo `json:"generatedVideos"`
}

type generatedVideo struct {
	Video *videoRef `json:"video"`
}

type videoRef struct {
	URI string `json:"uri"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string       `json:"prompt"`
	Image  *inlineImage `json:"image,omitempty"`
}

type inlineImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type predictParameters struct {
	NumberOfVideos int    `json:"numberOfVideos"`
	Resolution     string `json:"resolution"`
	AspectRatio    string `json:"aspectRatio"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		model:        model,
		pollInterval: interval,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Generate runs the full submit / poll / extract sequence and returns the
// video URI reported by the service. It blocks until the operation is done or
// ctx is cancelled; there is no poll cap and no overall timeout.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	op, err := c.Submit(ctx, req)
	if err != nil {
		return "", err
	}
	for !op.Done {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
		op, err = c.Poll(ctx, op)
		if err != nil {
			return "", err
		}
	}
	return ExtractVideoURI(op)
}

// Submit validates the request and starts a long-running generation,
// returning the service's operation handle.
func (c *Client) Submit(ctx context.Context, req GenerateRequest) (*Operation, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}
	if req.Image == nil || len(req.Image.Data) == 0 {
		return nil, fmt.Errorf("%w: logo image is required", domain.ErrInvalidInput)
	}
	aspect, err := domain.ParseAspectRatio(req.AspectRatio.String())
	if err != nil {
		return nil, err
	}

	payload := predictRequest{
		Instances: []predictInstance{{
			Prompt: req.Prompt,
			Image: &inlineImage{
				BytesBase64Encoded: imagedata.StripDataURI(req.Image.Base64()),
				MimeType:           req.Image.MIME,
			},
		}},
		Parameters: predictParameters{
			NumberOfVideos: videoCount,
			Resolution:     resolution,
			AspectRatio:    aspect.String(),
		},
	}

	var op Operation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.model))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &op); err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Str("operation", op.Name).
		Msg("veo: submitted generation")
	return &op, nil
}

// Poll re-fetches the operation's current state. Callers replace their handle
// with the returned one.
func (c *Client) Poll(ctx context.Context, op *Operation) (*Operation, error) {
	if op == nil || strings.TrimSpace(op.Name) == "" {
		return nil, errors.New("veo: operation name is required")
	}
	var refreshed Operation
	if err := c.invoke(ctx, http.MethodGet, "/"+strings.TrimLeft(op.Name, "/"), nil, &refreshed); err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("operation", refreshed.Name).
		Bool("done", refreshed.Done).
		Msg("veo: polled operation")
	return &refreshed, nil
}

// ExtractVideoURI reads the first generated video's URI out of a completed
// operation. Any missing segment of the nested response is ErrNoDownloadLink.
func ExtractVideoURI(op *Operation) (string, error) {
	if op == nil || !op.Done {
		return "", errors.New("veo: operation is not done")
	}
	if op.Error != nil && op.Error.Message != "" {
		return "", fmt.Errorf("veo: generation failed: %s", op.Error.Message)
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return "", ErrNoDownloadLink
	}
	first := op.Response.GeneratedVideos[0]
	if first.Video == nil || strings.TrimSpace(first.Video.URI) == "" {
		return "", ErrNoDownloadLink
	}
	return first.Video.URI, nil
}

// Download fetches the binary video behind uri, appending the API key as a
// query credential. A non-2xx status is a failure.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || parsed.Scheme == "" {
		return nil, "", fmt.Errorf("veo: invalid video uri: %s", uri)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("veo: build download request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("veo: download video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("veo: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("veo: read video: %w", err)
	}
	format := resp.Header.Get("Content-Type")
	if format == "" {
		format = "video/mp4"
	}
	return data, format, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("veo: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("veo: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("veo: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("veo: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail apiErrorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			return fmt.Errorf("veo: status %d: %s", resp.StatusCode, detail.Error.Message)
		}
		return fmt.Errorf("veo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("veo: decode response: %w", err)
	}
	return nil
}
