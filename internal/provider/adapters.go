package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
)

// Sampling settings shared by every provider.
const (
	Temperature = 0.1
	MaxTokens   = 500
	TopP        = 0.9

	AnthropicVersion = "2023-06-01"
)

// Params is the provider-independent input of a completion call.
type Params struct {
	BaseURL  string
	Model    string
	APIKey   string
	Messages []core.Message

	// Attribution headers, only sent to OpenRouter.
	AppURL   string
	AppTitle string
}

// Request is a fully built HTTP request envelope.
type Request struct {
	URL    string
	Header http.Header
	Body   []byte
}

// Adapter builds requests for and reads responses from one provider.
type Adapter interface {
	BuildRequest(p Params) (Request, error)
	ExtractText(raw []byte) string
}

var adapters = map[Kind]Adapter{
	OpenRouter: chatCompletions{sampling: true, attribution: true},
	OpenAI:     chatCompletions{sampling: true},
	Custom:     chatCompletions{},
	Anthropic:  anthropicMessages{},
	Google:     googleGenerate{},
}

// For returns the adapter for kind. Unknown kinds use the Custom adapter.
func For(kind Kind) Adapter {
	if a, ok := adapters[kind]; ok {
		return a
	}
	return adapters[Custom]
}

// BuildRequest is shorthand for For(kind).BuildRequest(p).
func BuildRequest(kind Kind, p Params) (Request, error) {
	return For(kind).BuildRequest(p)
}

// ExtractText is shorthand for For(kind).ExtractText(raw).
func ExtractText(kind Kind, raw []byte) string {
	return For(kind).ExtractText(raw)
}

func baseURL(p Params) string {
	return strings.TrimRight(p.BaseURL, "/")
}

func jsonHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return h
}

// =============================================================================
// OpenAI-compatible chat completions (openrouter, openai, custom)
// =============================================================================

type chatCompletions struct {
	sampling    bool
	attribution bool
}

type chatCompletionsBody struct {
	Model            string         `json:"model"`
	Messages         []core.Message `json:"messages"`
	Temperature      float64        `json:"temperature"`
	MaxTokens        int            `json:"max_tokens"`
	Stream           bool           `json:"stream"`
	TopP             *float64       `json:"top_p,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`
}

func (a chatCompletions) BuildRequest(p Params) (Request, error) {
	body := chatCompletionsBody{
		Model:       p.Model,
		Messages:    p.Messages,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		Stream:      false,
	}
	if a.sampling {
		topP, zero := TopP, 0.0
		body.TopP = &topP
		body.FrequencyPenalty = &zero
		body.PresencePenalty = &zero
	}

	data, err := json.Marshal(body)
	if err != nil {
		return Request{}, fmt.Errorf("encoding chat completions body: %w", err)
	}

	h := jsonHeader()
	h.Set("Authorization", "Bearer "+p.APIKey)
	if a.attribution {
		if p.AppURL != "" {
			h.Set("HTTP-Referer", p.AppURL)
		}
		if p.AppTitle != "" {
			h.Set("X-Title", p.AppTitle)
		}
	}

	return Request{
		URL:    baseURL(p) + "/chat/completions",
		Header: h,
		Body:   data,
	}, nil
}

func (chatCompletions) ExtractText(raw []byte) string {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

// =============================================================================
// Anthropic messages
// =============================================================================

type anthropicMessages struct{}

type anthropicBody struct {
	Model       string         `json:"model"`
	System      string         `json:"system,omitempty"`
	Messages    []core.Message `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
}

func (anthropicMessages) BuildRequest(p Params) (Request, error) {
	body := anthropicBody{
		Model:       p.Model,
		Messages:    make([]core.Message, 0, len(p.Messages)),
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	}
	for i, m := range p.Messages {
		if m.Role == core.RoleSystem {
			if i == 0 {
				body.System = m.Content
			}
			continue
		}
		body.Messages = append(body.Messages, m)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return Request{}, fmt.Errorf("encoding anthropic body: %w", err)
	}

	h := jsonHeader()
	h.Set("x-api-key", p.APIKey)
	h.Set("anthropic-version", AnthropicVersion)

	return Request{
		URL:    baseURL(p) + "/messages",
		Header: h,
		Body:   data,
	}, nil
}

func (anthropicMessages) ExtractText(raw []byte) string {
	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Content) == 0 {
		return ""
	}
	return resp.Content[0].Text
}

// =============================================================================
// Google generateContent
// =============================================================================

type googleGenerate struct{}

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Role  string       `json:"role"`
	Parts []googlePart `json:"parts"`
}

type googleBody struct {
	Contents         []googleContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func (googleGenerate) BuildRequest(p Params) (Request, error) {
	var body googleBody
	body.Contents = make([]googleContent, 0, len(p.Messages))
	for _, m := range p.Messages {
		role := "user"
		if m.Role == core.RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, googleContent{
			Role:  role,
			Parts: []googlePart{{Text: m.Content}},
		})
	}
	body.GenerationConfig.Temperature = Temperature
	body.GenerationConfig.MaxOutputTokens = MaxTokens

	data, err := json.Marshal(body)
	if err != nil {
		return Request{}, fmt.Errorf("encoding google body: %w", err)
	}

	return Request{
		URL:    fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL(p), p.Model, url.QueryEscape(p.APIKey)),
		Header: jsonHeader(),
		Body:   data,
	}, nil
}

func (googleGenerate) ExtractText(raw []byte) string {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []googlePart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Candidates) == 0 {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
