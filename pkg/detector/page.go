package detector

import "github.com/manocha-aman/subscribe-any/models"

const (
	// MixedThreshold applies when at least one trigger came from the URL or
	// title layer.
	MixedThreshold = 0.4

	// ContentOnlyThreshold applies when only content-layer signals fired.
	// Content matches alone ("order number" on any account page) are far more
	// likely to be false positives, so they need a higher bar.
	ContentOnlyThreshold = 0.7

	// LLMInvokeThreshold is the permissive bar for handing a page to the LLM.
	LLMInvokeThreshold = 0.3
)

// PageInput is one page snapshot presented for classification.
type PageInput struct {
	URL      string
	Title    string
	BodyText string
}

// ClassifyPage combines URL, title, and content signals into a single
// confidence. Unlike the URL layer, confidence accumulates additively across
// the three layers, capped at 1.0. The decision threshold depends on signal
// provenance: URL/title-backed results clear a lower bar than content-only.
func ClassifyPage(page PageInput) models.DetectionResult {
	result := models.NegativeResult()
	strongLayer := false

	if urlResult := ClassifyURL(page.URL); urlResult.IsLikely {
		result.Confidence += urlResult.Confidence
		result.Triggers = append(result.Triggers, urlResult.Triggers...)
		strongLayer = true
	}

	for _, sig := range titlePatterns {
		if sig.Pattern.MatchString(page.Title) {
			result.Confidence += sig.Confidence
			result.Triggers = append(result.Triggers, sig.Trigger)
			strongLayer = true
		}
	}

	for _, sig := range contentPatterns {
		if sig.Pattern.MatchString(page.BodyText) {
			result.Confidence += sig.Confidence
			result.Triggers = append(result.Triggers, sig.Trigger)
		}
	}

	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}

	threshold := ContentOnlyThreshold
	if strongLayer {
		threshold = MixedThreshold
	}
	result.IsLikely = len(result.Triggers) > 0 && result.Confidence >= threshold

	return result
}

// ShouldInvokeLLM is deliberately more permissive than ClassifyPage: the LLM
// is the final arbiter, a false positive here costs one API call while a
// false negative silently loses a genuine order.
func ShouldInvokeLLM(page PageInput) bool {
	result := ClassifyPage(page)
	return result.Confidence >= LLMInvokeThreshold || len(result.Triggers) >= 1
}
