// Package genai adapts the Gemini SDK to the portal's text generation needs.
package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"supplier-portal/pkg/config"

	"go.uber.org/zap"
	googleai "google.golang.org/genai"
)

const (
	apiVersion = "v1beta"
	// maxResponseBytes caps how much of a response body is read
	maxResponseBytes = 4 << 20
)

var (
	// ErrNoAPIKey is returned when the client has no key configured
	ErrNoAPIKey = errors.New("generator api key is not configured")
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("generator returned no text")
)

// Client talks to the text generation service
type Client struct {
	Model  string
	Logger *zap.Logger
	models *googleai.Models
}

// Citation is one grounding source returned with generated text
type Citation struct {
	Title string
	URI   string
}

// Result is the generated text plus its grounding sources
type Result struct {
	Text      string
	Citations []Citation
}

// NewClient creates a client from the reputation settings. The request
// deadline comes from the caller's context.
func NewClient(ctx context.Context, cfg config.ReputationConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	sdk, err := googleai.NewClient(ctx, &googleai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    googleai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: limitedTransport{next: http.DefaultTransport, limit: maxResponseBytes}},
		HTTPOptions: googleai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create generator client: %w", err)
	}

	return &Client{
		Model:  cfg.Model,
		Logger: logger,
		models: sdk.Models,
	}, nil
}

// GenerateContent sends a single prompt. With grounded set the model may run
// web searches and the result carries the pages it cited.
func (c *Client) GenerateContent(ctx context.Context, prompt string, grounded bool) (*Result, error) {
	var genConfig *googleai.GenerateContentConfig
	if grounded {
		genConfig = &googleai.GenerateContentConfig{
			Tools: []*googleai.Tool{{GoogleSearch: &googleai.GoogleSearch{}}},
		}
	}

	c.Logger.Debug("Requesting generated content",
		zap.String("model", c.Model),
		zap.Bool("grounded", grounded))

	resp, err := c.models.GenerateContent(ctx, c.Model, googleai.Text(prompt), genConfig)
	if err != nil {
		c.Logger.Error("Generate content failed", zap.String("model", c.Model), zap.Error(err))
		return nil, fmt.Errorf("error generating content: %w", err)
	}

	result := &Result{Citations: []Citation{}}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		candidate := resp.Candidates[0]
		result.Text = candidateText(candidate)
		result.Citations = citations(candidate.GroundingMetadata)
	}
	if result.Text == "" {
		return nil, ErrEmptyResponse
	}

	c.Logger.Info("Generated content",
		zap.String("model", c.Model),
		zap.Int("citations", len(result.Citations)))

	return result, nil
}

func candidateText(candidate *googleai.Candidate) string {
	if candidate.Content == nil {
		return ""
	}
	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		text.WriteString(p.Text)
	}
	return strings.TrimSpace(text.String())
}

// citations lists the web pages behind an answer, first occurrence per URI
func citations(meta *googleai.GroundingMetadata) []Citation {
	out := []Citation{}
	if meta == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		out = append(out, Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}

// limitedTransport truncates response bodies at limit bytes
type limitedTransport struct {
	next  http.RoundTripper
	limit int64
}

func (t limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = limitedBody{Reader: io.LimitReader(resp.Body, t.limit), Closer: resp.Body}
	return resp, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}
