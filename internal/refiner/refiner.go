// Package refiner turns raw transcripts into clean prompts using the
// Gemini generateContent API.
package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"

const systemPrompt = `You are a voice-to-text post-processor for a developer who dictates prompts for an AI coding assistant.

Your task:
1. Remove all filler words (um, uh, like, you know, basically, actually, so, well, etc.)
2. Extract the coding/technical intent from the speech
3. Preserve ALL technical terms, library names, function names, file paths, and code identifiers EXACTLY as spoken
4. Fix obvious speech-to-text errors for technical terms (e.g., "react" should stay "React" if referring to the library)
5. Structure the output as a clear, concise prompt that a coding assistant can act on
6. Output ONLY the cleaned prompt — no explanations, no preamble, no commentary

If the input is already clean and well-structured, return it as-is.`

// Client calls the refinement API. An empty API key disables the call
// and makes Refine a passthrough.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// New builds a refinement client.
func New(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		logger:     logger,
	}
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type request struct {
	SystemInstruction instruction      `json:"system_instruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generation_config"`
}

type instruction struct {
	Parts []part `json:"parts"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Refine cleans transcript into a prompt. Without an API key the
// transcript comes back unchanged.
func (c *Client) Refine(ctx context.Context, transcript string) (string, error) {
	if !c.Enabled() {
		c.logger.Info("no refinement credential, returning raw transcript")
		return transcript, nil
	}

	body := request{
		SystemInstruction: instruction{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Parts: []part{{Text: transcript}}}},
		GenerationConfig:  generationConfig{Temperature: 0.1, MaxOutputTokens: 2048},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode refinement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build refinement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call refinement api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("refinement api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode refinement response: %w", err)
	}

	var parts []string
	if len(decoded.Candidates) > 0 {
		for _, p := range decoded.Candidates[0].Content.Parts {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return transcript, nil
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}
