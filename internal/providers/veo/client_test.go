package veo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"logomotion/internal/domain"
	"logomotion/pkg/imagedata"
)

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

func testImage() *imagedata.Image {
	return &imagedata.Image{Data: pngHeader, MIME: "image/png"}
}

func newTestClient(t *testing.T, transport http.RoundTripper) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:       "test-key",
		Model:        "veo-2.0-generate-001",
		PollInterval: time.Millisecond,
		HTTPClient:   &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// stubService simulates the long-running operation endpoint: the submit POST
// returns a pending operation and each status GET pops the next canned state.
type stubService struct {
	submitBody []byte
	submitOp   map[string]any
	pollOps    []map[string]any
	binaries   map[string][]byte
	submits    int
	polls      int
	lastGetURL string
}

func (s *stubService) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPost {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		s.submits++
		s.submitBody = body
		return jsonResponse(s.submitOp), nil
	}
	s.lastGetURL = req.URL.String()
	if data, ok := s.binaries[req.URL.Scheme+"://"+req.URL.Host+req.URL.Path]; ok {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"video/mp4"}},
			Body:       io.NopCloser(bytes.NewReader(data)),
		}, nil
	}
	if s.polls >= len(s.pollOps) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("poll past end of script")),
		}, nil
	}
	op := s.pollOps[s.polls]
	s.polls++
	return jsonResponse(op), nil
}

func jsonResponse(payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func pendingOp() map[string]any {
	return map[string]any{"name": "operations/op-1", "done": false}
}

func doneOpWithURI(uri string) map[string]any {
	return map[string]any{
		"name": "operations/op-1",
		"done": true,
		"response": map[string]any{
			"generatedVideos": []any{
				map[string]any{"video": map[string]any{"uri": uri}},
			},
		},
	}
}

func TestSubmitPayloadShape(t *testing.T) {
	service := &stubService{submitOp: pendingOp()}
	client := newTestClient(t, service)

	op, err := client.Submit(context.Background(), GenerateRequest{
		Prompt:      "make the logo spin",
		Image:       testImage(),
		AspectRatio: domain.AspectPortrait,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if op.Done {
		t.Fatalf("fresh operation should not be done")
	}

	var payload map[string]any
	if err := json.Unmarshal(service.submitBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	instances := payload["instances"].([]any)
	if len(instances) != 1 {
		t.Fatalf("instances len = %d, want 1", len(instances))
	}
	instance := instances[0].(map[string]any)
	if instance["prompt"] != "make the logo spin" {
		t.Fatalf("prompt = %v", instance["prompt"])
	}
	image := instance["image"].(map[string]any)
	if image["mimeType"] != "image/png" {
		t.Fatalf("mimeType = %v", image["mimeType"])
	}
	decoded, err := base64.StdEncoding.DecodeString(image["bytesBase64Encoded"].(string))
	if err != nil {
		t.Fatalf("image bytes not base64: %v", err)
	}
	if !bytes.Equal(decoded, pngHeader) {
		t.Fatalf("image bytes mismatch")
	}
	params := payload["parameters"].(map[string]any)
	if params["numberOfVideos"] != float64(1) {
		t.Fatalf("numberOfVideos = %v, want 1", params["numberOfVideos"])
	}
	if params["resolution"] != "720p" {
		t.Fatalf("resolution = %v, want 720p", params["resolution"])
	}
	if params["aspectRatio"] != "9:16" {
		t.Fatalf("aspectRatio = %v, want 9:16", params["aspectRatio"])
	}
}

func TestGenerateSucceedsOnFirstPoll(t *testing.T) {
	service := &stubService{
		submitOp: pendingOp(),
		pollOps:  []map[string]any{doneOpWithURI("https://example/video1")},
	}
	client := newTestClient(t, service)

	uri, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:      "test",
		Image:       testImage(),
		AspectRatio: domain.AspectLandscape,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if uri != "https://example/video1" {
		t.Fatalf("uri = %q", uri)
	}
	if service.submits != 1 {
		t.Fatalf("submits = %d, want 1", service.submits)
	}
	if service.polls != 1 {
		t.Fatalf("polls = %d, want at least one poll before extraction", service.polls)
	}
	if !strings.Contains(service.lastGetURL, "operations/op-1") {
		t.Fatalf("poll hit %q, want the operation name", service.lastGetURL)
	}
	if !strings.Contains(service.lastGetURL, "key=test-key") {
		t.Fatalf("poll missing key credential: %q", service.lastGetURL)
	}
}

func TestGenerateKeepsPollingUntilDone(t *testing.T) {
	const pendingPolls = 4
	var pollOps []map[string]any
	for i := 0; i < pendingPolls; i++ {
		pollOps = append(pollOps, pendingOp())
	}
	pollOps = append(pollOps, doneOpWithURI("https://example/video1"))
	service := &stubService{submitOp: pendingOp(), pollOps: pollOps}
	client := newTestClient(t, service)

	uri, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:      "slow render",
		Image:       testImage(),
		AspectRatio: domain.AspectLandscape,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if uri != "https://example/video1" {
		t.Fatalf("uri = %q", uri)
	}
	if service.polls != pendingPolls+1 {
		t.Fatalf("polls = %d, want %d", service.polls, pendingPolls+1)
	}
}

func TestGenerateFailsWhenDoneWithoutVideos(t *testing.T) {
	service := &stubService{
		submitOp: pendingOp(),
		pollOps: []map[string]any{{
			"name":     "operations/op-1",
			"done":     true,
			"response": map[string]any{"generatedVideos": []any{}},
		}},
	}
	client := newTestClient(t, service)

	_, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:      "test",
		Image:       testImage(),
		AspectRatio: domain.AspectLandscape,
	})
	if !errors.Is(err, ErrNoDownloadLink) {
		t.Fatalf("err = %v, want ErrNoDownloadLink", err)
	}
	if service.polls != 1 {
		t.Fatalf("polls = %d; empty result must not trigger further polling", service.polls)
	}
}

func TestGenerateStopsOnContextCancel(t *testing.T) {
	service := &stubService{
		submitOp: pendingOp(),
		pollOps:  []map[string]any{pendingOp(), pendingOp(), pendingOp()},
	}
	client := newTestClient(t, service)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Generate(ctx, GenerateRequest{
		Prompt:      "never finishes",
		Image:       testImage(),
		AspectRatio: domain.AspectLandscape,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	service := &stubService{submitOp: pendingOp()}
	client := newTestClient(t, service)
	ctx := context.Background()

	if _, err := client.Submit(ctx, GenerateRequest{Prompt: " ", Image: testImage(), AspectRatio: domain.AspectLandscape}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty prompt: err = %v", err)
	}
	if _, err := client.Submit(ctx, GenerateRequest{Prompt: "x", AspectRatio: domain.AspectLandscape}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing image: err = %v", err)
	}
	if _, err := client.Submit(ctx, GenerateRequest{Prompt: "x", Image: testImage(), AspectRatio: "4:3"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("bad aspect: err = %v", err)
	}
	if service.submits != 0 {
		t.Fatalf("validation failures must not reach the network, submits = %d", service.submits)
	}

	unkeyed, err := NewClient(Options{HTTPClient: &http.Client{Transport: service}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := unkeyed.Submit(ctx, GenerateRequest{Prompt: "x", Image: testImage(), AspectRatio: domain.AspectLandscape}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("missing key: err = %v", err)
	}
}

func TestExtractVideoURI(t *testing.T) {
	if _, err := ExtractVideoURI(&Operation{Done: true}); !errors.Is(err, ErrNoDownloadLink) {
		t.Fatalf("nil response: err = %v", err)
	}
	if _, err := ExtractVideoURI(&Operation{Done: true, Response: &operationResponse{GeneratedVideos: []generatedVideo{{}}}}); !errors.Is(err, ErrNoDownloadLink) {
		t.Fatalf("nil video: err = %v", err)
	}
	if _, err := ExtractVideoURI(&Operation{Done: false}); err == nil {
		t.Fatalf("expected error for pending operation")
	}
	if _, err := ExtractVideoURI(&Operation{Done: true, Error: &operationError{Message: "quota exhausted"}}); err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("operation error: err = %v", err)
	}
	uri, err := ExtractVideoURI(&Operation{
		Done:     true,
		Response: &operationResponse{GeneratedVideos: []generatedVideo{{Video: &videoRef{URI: "https://example/v"}}}},
	})
	if err != nil || uri != "https://example/v" {
		t.Fatalf("uri = %q, err = %v", uri, err)
	}
}

func TestDownloadAppendsKey(t *testing.T) {
	service := &stubService{
		binaries: map[string][]byte{"https://files.example/video.mp4": {0x00, 0x01, 0x02}},
	}
	client := newTestClient(t, service)

	data, format, err := client.Download(context.Background(), "https://files.example/video.mp4")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if format != "video/mp4" {
		t.Fatalf("format = %q", format)
	}
	if !bytes.Equal(data, []byte{0x00, 0x01, 0x02}) {
		t.Fatalf("data mismatch: %v", data)
	}
	if !strings.Contains(service.lastGetURL, "key=test-key") {
		t.Fatalf("download missing key credential: %q", service.lastGetURL)
	}
}

func TestDownloadFailsOnHTTPError(t *testing.T) {
	service := &stubService{}
	client := newTestClient(t, service)

	if _, _, err := client.Download(context.Background(), "https://files.example/missing.mp4"); err == nil {
		t.Fatalf("expected error for non-2xx download")
	}
	if _, _, err := client.Download(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected error for invalid uri")
	}
}
