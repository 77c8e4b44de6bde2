// Package ai is a thin HTTP client for a chat-completion API, used by the
// content importer to fill missing translations. It is entirely optional:
// without an API key the importer simply leaves blanks.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o-mini"
)

// Translator calls a chat-completion endpoint for Spanish-to-English
// translation.
type Translator struct {
	apiKey string
	model  string
	client *http.Client
}

// NewTranslator creates a client; returns nil if no key is configured.
func NewTranslator(apiKey string) *Translator {
	if apiKey == "" {
		return nil
	}
	return &Translator{
		apiKey: apiKey,
		model:  defaultModel,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Translate returns the English translation of a Spanish text.
func (t *Translator) Translate(text string) (string, error) {
	prompt := fmt.Sprintf("Translate this Spanish text to English. Return only the translation.\n\nSpanish: %s", text)
	body, err := json.Marshal(chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode translation request: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create translation request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %v", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode translation response: %v", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("translation API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("translation API returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
