// Package oracle talks to the external answer-correctness judge, an
// Ollama-compatible chat endpoint forced into JSON mode. Calls are bounded
// by the client timeout; callers are expected to fail soft when the judge
// is unreachable or returns garbage.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const systemPrompt = `You are a correctness checker. Always respond in valid JSON ONLY, with the format:

{
  "correct": boolean,
  "explanation": "short text"
}

No additional text outside this JSON object.`

// Verdict is the judge's answer for one (prompt, answer) pair.
type Verdict struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

type Client struct {
	baseURL string
	model   string
	hc      *http.Client
}

func New(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		hc:      &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Format   string        `json:"format"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Judge asks the model whether answer is a correct response to prompt.
func (c *Client) Judge(ctx context.Context, prompt, answer string) (*Verdict, error) {
	userPrompt := fmt.Sprintf("Question: %s. User's answer: %s.\nIs this correct? Provide a JSON response only.", prompt, answer)

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode judge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("judge returned status %d: %s", resp.StatusCode, raw)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("failed to decode judge response: %w", err)
	}
	if cr.Message.Content == "" {
		return nil, fmt.Errorf("judge returned no content")
	}

	verdict := &Verdict{}
	if err := json.Unmarshal([]byte(cr.Message.Content), verdict); err != nil {
		return nil, fmt.Errorf("judge response was not valid JSON: %w", err)
	}
	return verdict, nil
}
