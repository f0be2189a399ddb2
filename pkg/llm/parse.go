package llm

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/manocha-aman/subscribe-any/models"
)

// placeholderName stands in for product entries the model returned without a
// usable name.
const placeholderName = "Unknown item"

// ParseResponse turns raw model output into a normalized OrderAnalysis.
// The text may be wrapped in Markdown code fences, surrounded by prose, or
// outright malformed; anything unusable yields the all-default analysis.
func ParseResponse(text string) models.OrderAnalysis {
	cleaned := StripCodeFences(text)
	object := FirstJSONObject(cleaned)
	if object == "" {
		return models.EmptyAnalysis()
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(object), &raw); err != nil {
		return models.EmptyAnalysis()
	}
	return NormalizeAnalysis(raw)
}

// StripCodeFences removes a Markdown code-fence wrapper (``` or ```json) if
// the text carries one.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the info string ("json") on the opening fence line.
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// FirstJSONObject returns the first balanced {...} object in s, honoring
// string literals and escapes. Empty when no balanced object exists.
func FirstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// NormalizeAnalysis coerces an untyped document to the OrderAnalysis schema
// with per-field defaults. The rest of the pipeline never observes a
// malformed analysis.
func NormalizeAnalysis(raw map[string]any) models.OrderAnalysis {
	analysis := models.EmptyAnalysis()
	analysis.IsOrderConfirmation = asBool(raw["isOrderConfirmation"])
	analysis.Confidence = clamp01(asFloat(raw["confidence"]))
	analysis.Retailer = asString(raw["retailer"])
	analysis.OrderNumber = asString(raw["orderNumber"])

	items, _ := raw["products"].([]any)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		analysis.AddProduct(normalizeProduct(entry))
	}
	return analysis
}

func normalizeProduct(entry map[string]any) models.ExtractedProduct {
	product := models.ExtractedProduct{
		Name:        asString(entry["name"]),
		IsRecurring: asBool(entry["isRecurring"]),
		Quantity:    1,
	}
	if product.Name == "" {
		product.Name = placeholderName
	}

	if price := asFloat(entry["price"]); models.ValidPrice(price) {
		product.Price = &price
	}
	if qty := asFloat(entry["quantity"]); qty >= 1 && qty == math.Trunc(qty) {
		product.Quantity = int(qty)
	}
	if category := asString(entry["category"]); category != "" {
		product.Category = &category
	}
	if days := asFloat(entry["suggestedFrequencyDays"]); days >= 1 && days == math.Trunc(days) {
		d := int(days)
		product.SuggestedFrequencyDays = &d
	}
	return product
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func clamp01(f float64) float64 {
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
