// Package provider normalizes the HTTP APIs of the supported LLM vendors
// behind a single request builder and response extractor per vendor.
package provider

import "strings"

// Kind identifies the LLM vendor an endpoint belongs to.
type Kind string

const (
	OpenRouter Kind = "openrouter"
	OpenAI     Kind = "openai"
	Anthropic  Kind = "anthropic"
	Google     Kind = "google"
	Custom     Kind = "custom"
)

// Kinds lists every known provider kind.
func Kinds() []Kind {
	return []Kind{OpenRouter, OpenAI, Anthropic, Google, Custom}
}

// hostMarkers is checked in order; the first substring hit wins.
var hostMarkers = []struct {
	marker string
	kind   Kind
}{
	{"openrouter.ai", OpenRouter},
	{"api.openai.com", OpenAI},
	{"api.anthropic.com", Anthropic},
	{"generativelanguage.googleapis.com", Google},
}

// Classify maps an API base URL to a provider kind. Unrecognized URLs are
// Custom and are spoken to with the generic chat-completions shape.
func Classify(apiURL string) Kind {
	u := strings.ToLower(apiURL)
	for _, hm := range hostMarkers {
		if strings.Contains(u, hm.marker) {
			return hm.kind
		}
	}
	return Custom
}
