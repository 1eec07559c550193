// Package command finds a command directive in model output, repairs and
// parses its parameters, fills gaps from session context and validates the
// result against the catalog.
package command

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Candidate is a directive found in model text, before parsing.
type Candidate struct {
	Name    string
	RawJSON string
	Matcher string
}

// Matcher is one extraction pattern. Pattern must capture the command name
// in group 1 and the parameter object in group 2.
type Matcher struct {
	Name    string
	Pattern *regexp.Regexp
}

// Matchers are tried in order; the first that matches wins.
var Matchers = []Matcher{
	{
		Name:    "bold",
		Pattern: regexp.MustCompile(`(?m)\*\*\[COMMAND:\s*([^\]]+)\]\*\*\s*(\{.*\})$`),
	},
	{
		Name:    "plain",
		Pattern: regexp.MustCompile(`(?m)\[COMMAND:\s*([^\]]+)\]\s*(\{.*\})$`),
	},
	{
		Name:    "unterminated",
		Pattern: regexp.MustCompile(`\[COMMAND:\s*([^\]]+)\]\s*(\{.*)`),
	},
}

// Extract returns the first directive found in text.
func Extract(text string) (Candidate, bool) {
	return ExtractWith(Matchers, text)
}

// ExtractWith runs a custom matcher chain.
func ExtractWith(matchers []Matcher, text string) (Candidate, bool) {
	for _, m := range matchers {
		groups := m.Pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		raw := "{}"
		if len(groups) > 2 && groups[2] != "" {
			raw = groups[2]
		}
		return Candidate{
			Name:    strings.TrimSpace(groups[1]),
			RawJSON: raw,
			Matcher: m.Name,
		}, true
	}
	return Candidate{}, false
}

// RepairJSON appends one closing brace for every unbalanced opening brace.
// Braces inside string literals are counted too.
func RepairJSON(raw string) string {
	open := strings.Count(raw, "{") - strings.Count(raw, "}")
	if open <= 0 {
		return raw
	}
	return raw + strings.Repeat("}", open)
}

// ParseParams decodes the parameter object, retrying once after RepairJSON.
// The error of the first attempt is returned when the repair does not help.
func ParseParams(raw string) (map[string]any, error) {
	params, err := decodeObject(raw)
	if err == nil {
		return params, nil
	}

	repaired, repairErr := decodeObject(RepairJSON(raw))
	if repairErr != nil {
		return nil, fmt.Errorf("parsing command parameters: %w", err)
	}
	return repaired, nil
}

func decodeObject(raw string) (map[string]any, error) {
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}
