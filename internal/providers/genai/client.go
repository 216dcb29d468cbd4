package genai

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

	"mediastudio/internal/infra"
)

// ErrStaleHandle is returned by GetOperation when the supplied handle cannot
// address an operation, typically because an intermediate poll response came
// back in a shape that lost the operation name.
var ErrStaleHandle = errors.New("genai: operation handle unusable")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	VideoModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a lightweight facade over the Gemini generative language API. It
// covers the three calls this service needs: synchronous text generation,
// starting a Veo long-running video operation, and polling that operation.
type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	videoModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	textModel := opts.TextModel
	if textModel == "" {
		textModel = "gemini-2.0-flash"
	}

	videoModel := opts.VideoModel
	if videoModel == "" {
		videoModel = "veo-3.1-generate-preview"
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
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		textModel:  textModel,
		videoModel: videoModel,
		httpClient: client,
		logger:     logger,
	}, nil
}

// TextModel returns the configured text model identifier.
func (c *Client) TextModel() string {
	return c.textModel
}

// VideoModel returns the configured video model identifier.
func (c *Client) VideoModel() string {
	return c.videoModel
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// GenerateText runs a single synchronous generateContent call and returns the
// first candidate's concatenated text parts.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	payload := generateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	var response generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.textModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &response); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text candidates")
	}
	return text, nil
}

// Operation is the handle for a provider-side long-running video generation.
type Operation struct {
	Name string
}

type videoInstance struct {
	Prompt string         `json:"prompt"`
	Image  *videoImageRef `json:"image,omitempty"`
}

type videoImageRef struct {
	URI      string `json:"uri,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type startVideoRequest struct {
	Instances []videoInstance `json:"instances"`
}

type operationEnvelope struct {
	Name     string        `json:"name"`
	Done     bool          `json:"done"`
	Error    *statusDetail `json:"error,omitempty"`
	Response *videosResult `json:"response,omitempty"`
	Result   *videosResult `json:"result,omitempty"`
}

type statusDetail struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type videosResult struct {
	GeneratedVideos []generatedVideo `json:"generatedVideos,omitempty"`
	VideoResponse   *struct {
		GeneratedSamples []generatedVideo `json:"generatedSamples,omitempty"`
	} `json:"generateVideoResponse,omitempty"`
}

type generatedVideo struct {
	Video videoPayload `json:"video"`
}

type videoPayload struct {
	BytesBase64 string `json:"bytesBase64Encoded,omitempty"`
	VideoBytes  string `json:"videoBytes,omitempty"`
	URI         string `json:"uri,omitempty"`
}

// StartVideoGeneration kicks off a Veo long-running operation from a refined
// prompt and a source image reference and returns the operation handle.
func (c *Client) StartVideoGeneration(ctx context.Context, prompt, imageRef string) (*Operation, error) {
	instance := videoInstance{Prompt: prompt}
	if imageRef != "" {
		instance.Image = &videoImageRef{URI: imageRef, MimeType: "image/png"}
	}
	payload := startVideoRequest{Instances: []videoInstance{instance}}

	var envelope operationEnvelope
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.videoModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &envelope); err != nil {
		return nil, err
	}
	if envelope.Name == "" {
		return nil, fmt.Errorf("start video generation: response carried no operation name")
	}

	c.logger.Debug().
		Str("operation", envelope.Name).
		Str("model", c.videoModel).
		Msg("genai: video generation started")

	return &Operation{Name: envelope.Name}, nil
}

// GetOperation queries the current state of a long-running operation. Provider
// responses are heterogeneous across SDK surfaces: most arrive as a structured
// operation object, but bare status strings have been observed. Both shapes
// are normalized into an OperationState here so callers never branch on wire
// format.
func (c *Client) GetOperation(ctx context.Context, op *Operation) (*OperationState, error) {
	if op == nil || strings.TrimSpace(op.Name) == "" {
		return nil, ErrStaleHandle
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(op.Name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create operation request: %w", err)
	}
	c.sign(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query operation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read operation response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("operation status %d: %s", resp.StatusCode, apiErrorMessage(body))
	}

	return decodeOperationState(body), nil
}

// DownloadVideo fetches artifact bytes from a provider-served URI, appending
// the API key as a query parameter as the file endpoints require.
func (c *Client) DownloadVideo(ctx context.Context, uri string) ([]byte, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	c.sign(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download video status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}
	return blob, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.sign(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErrorMessage(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) sign(req *http.Request) {
	if c.apiKey == "" {
		return
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
}

func apiErrorMessage(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return trimmed
	}
	return "no error detail"
}
