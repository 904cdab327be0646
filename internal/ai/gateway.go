// Package ai is the boundary component for the generative-language
// API. It issues a single best-effort request per prompt and always
// answers with a string: failures come back as text, never as errors.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the generative-language API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// NoAnswer is returned when the API responds successfully but
	// produces no candidate text.
	NoAnswer = "AI did not produce an answer."
)

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type Gateway struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewGateway(endpoint, model, apiKey string, logger *zap.SugaredLogger) *Gateway {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gateway{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Respond sends prompt to the text-generation service and returns the
// reply text. Any failure (network, non-2xx status, malformed payload)
// is folded into an error string; Respond never returns an error to
// the caller. One round trip, no retry, no streaming.
func (g *Gateway) Respond(ctx context.Context, prompt string) string {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return g.failure(err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return g.failure(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return g.failure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.failure(fmt.Errorf("generative API returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return g.failure(err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return g.failure(err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 ||
		parsed.Candidates[0].Content.Parts[0].Text == "" {
		return NoAnswer
	}

	return parsed.Candidates[0].Content.Parts[0].Text
}

func (g *Gateway) failure(err error) string {
	g.logger.Warnw("AI request failed", "error", err)
	return "AI error: " + err.Error()
}
