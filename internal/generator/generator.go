// internal/generator/generator.go
//
// Artifact Generator: the adapter in front of the external generative APIs.
//
// Context
// -------
// Two upstream capabilities are consumed over HTTPS with bearer-token auth:
// a chat-completion endpoint for text, and a text-to-image endpoint for
// images.  Response shapes vary by provider (raw binary, base64 JSON, or a
// JSON-embedded URL), so this adapter normalises everything to plain bytes.
//
// Contract
// --------
//   - Width and height are clamped to the configured maximum before
//     dispatch.
//   - A missing or empty payload is a fatal fault.ErrGenerationFailed; there
//     are no automatic retries—the orchestrator owns the compensating
//     action.
//   - Seeds are echoed back: an explicit request seed is used verbatim, and
//     an absent one is drawn uniformly from [0, 2^31-1] so callers can
//     reproduce the image later.
//   - No local caching; the only side effect is the outbound call.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/metrics"
)

const maxSeed = 1<<31 - 1

// Config carries the upstream endpoints and credentials.
type Config struct {
	TextURL     string
	ImageURL    string
	APIKey      string
	TextModel   string
	MaxImageDim int
}

// Client is safe for concurrent use.
type Client struct {
	cfg   Config
	httpc *http.Client
}

// New returns a Client with a shared HTTP transport.  No per-step deadline
// is enforced beyond the transport default; callers cancel via ctx.
func New(cfg Config) *Client {
	if cfg.MaxImageDim <= 0 {
		cfg.MaxImageDim = 2048
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gpt-4"
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 120 * time.Second},
	}
}

//
// Image generation
//

// ImageOptions tunes one text-to-image call.  Zero values select defaults:
// 512×512, 20 steps, guidance 7, random seed.
type ImageOptions struct {
	Width    int
	Height   int
	Steps    int
	Seed     int64 // <0 means “draw one”
	Guidance float64
}

type imageRequest struct {
	Prompt        string  `json:"prompt"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Steps         int     `json:"num_inference_steps"`
	Seed          int64   `json:"seed"`
	GuidanceScale float64 `json:"guidance_scale"`
	Samples       int     `json:"samples"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// Image generates one image and returns its bytes plus the seed used.  A
// Hangul-script prompt is opportunistically translated first; translation
// failure falls back to the original prompt (see translate.go).
func (c *Client) Image(ctx context.Context, prompt string, opts ImageOptions) ([]byte, int64, error) {
	prompt = c.translateIfKorean(ctx, prompt)

	if opts.Width <= 0 {
		opts.Width = 512
	}
	if opts.Height <= 0 {
		opts.Height = 512
	}
	if opts.Width > c.cfg.MaxImageDim {
		opts.Width = c.cfg.MaxImageDim
	}
	if opts.Height > c.cfg.MaxImageDim {
		opts.Height = c.cfg.MaxImageDim
	}
	if opts.Steps <= 0 {
		opts.Steps = 20
	}
	if opts.Guidance <= 0 {
		opts.Guidance = 7
	}
	if opts.Seed < 0 {
		opts.Seed = rand.Int63n(maxSeed + 1)
	}

	body, err := json.Marshal(imageRequest{
		Prompt:        prompt,
		Width:         opts.Width,
		Height:        opts.Height,
		Steps:         opts.Steps,
		Seed:          opts.Seed,
		GuidanceScale: opts.Guidance,
		Samples:       1,
	})
	if err != nil {
		return nil, 0, err
	}

	data, err := c.post(ctx, c.cfg.ImageURL, body)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("image", "error").Inc()
		return nil, 0, err
	}

	img, err := normalizeImage(ctx, c.httpc, data)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("image", "error").Inc()
		return nil, 0, err
	}

	metrics.GenerationsTotal.WithLabelValues("image", "ok").Inc()
	return img, opts.Seed, nil
}

// normalizeImage turns a provider response into raw image bytes.  Binary
// responses pass through; JSON responses may embed base64 data or a URL to
// fetch.
func normalizeImage(ctx context.Context, httpc *http.Client, resp providerResponse) ([]byte, error) {
	if strings.HasPrefix(resp.contentType, "image/") {
		if len(resp.body) == 0 {
			return nil, fault.ErrGenerationFailed
		}
		return resp.body, nil
	}

	var parsed imageResponse
	if err := json.Unmarshal(resp.body, &parsed); err != nil {
		return nil, fmt.Errorf("image response decode: %w", fault.ErrGenerationFailed)
	}
	if len(parsed.Data) == 0 {
		return nil, fault.ErrGenerationFailed
	}

	first := parsed.Data[0]
	if first.B64JSON != "" {
		img, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil || len(img) == 0 {
			return nil, fault.ErrGenerationFailed
		}
		return img, nil
	}
	if first.URL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, first.URL, nil)
		if err != nil {
			return nil, err
		}
		res, err := httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("image fetch: %w", err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return nil, fault.ErrGenerationFailed
		}
		img, err := io.ReadAll(res.Body)
		if err != nil || len(img) == 0 {
			return nil, fault.ErrGenerationFailed
		}
		return img, nil
	}
	return nil, fault.ErrGenerationFailed
}

//
// Text generation
//

// TextOptions tunes one chat-completion call.
type TextOptions struct {
	MaxTokens   int
	Temperature float64
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Text runs one chat completion.  systemPrompt may be empty.  An empty
// completion is fault.ErrGenerationFailed.
func (c *Client) Text(ctx context.Context, systemPrompt, userPrompt string, opts TextOptions) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.TextModel,
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", err
	}

	data, err := c.post(ctx, c.cfg.TextURL, body)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("text", "error").Inc()
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(data.body, &parsed); err != nil {
		metrics.GenerationsTotal.WithLabelValues("text", "error").Inc()
		return "", fmt.Errorf("chat response decode: %w", fault.ErrGenerationFailed)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		metrics.GenerationsTotal.WithLabelValues("text", "error").Inc()
		return "", fault.ErrGenerationFailed
	}

	metrics.GenerationsTotal.WithLabelValues("text", "ok").Inc()
	return parsed.Choices[0].Message.Content, nil
}

//
// Transport
//

type providerResponse struct {
	body        []byte
	contentType string
}

func (c *Client) post(ctx context.Context, url string, body []byte) (providerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return providerResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.httpc.Do(req)
	if err != nil {
		return providerResponse{}, fmt.Errorf("%w: %v", fault.ErrDownstream, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return providerResponse{}, fmt.Errorf("%w: %v", fault.ErrDownstream, err)
	}
	if res.StatusCode != http.StatusOK {
		return providerResponse{}, fmt.Errorf("%w: upstream status %d: %s",
			fault.ErrDownstream, res.StatusCode, truncate(data, 200))
	}
	return providerResponse{body: data, contentType: res.Header.Get("Content-Type")}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
