package detector

import (
	"regexp"

	"github.com/manocha-aman/subscribe-any/models"
)

const (
	// ConfirmationURLThreshold is the minimum max-confidence for a URL to be
	// considered an order confirmation on its own.
	ConfirmationURLThreshold = 0.6

	// DetailsURLThreshold is the (stricter) bar for order-details pages.
	DetailsURLThreshold = 0.7
)

// ClassifyURL scores a URL against the exclude and confirmation tables.
// Exclusion always wins: any exclude match yields the negative result
// regardless of simultaneous confirmation matches. Confidence over matched
// confirmation signals is max(), never a sum.
func ClassifyURL(url string) models.DetectionResult {
	return classifyAgainst(url, confirmationPatterns, ConfirmationURLThreshold)
}

// ClassifyOrderDetailsURL runs the same algorithm against the details table.
// Used to distinguish "just placed" pages from "viewing a past order" pages.
func ClassifyOrderDetailsURL(url string) models.DetectionResult {
	return classifyAgainst(url, detailsPatterns, DetailsURLThreshold)
}

func classifyAgainst(url string, table []models.PageSignal, threshold float64) models.DetectionResult {
	result := models.NegativeResult()
	if url == "" {
		return result
	}

	for _, sig := range excludePatterns {
		if sig.Pattern.MatchString(url) {
			return result
		}
	}

	for _, sig := range table {
		if sig.Pattern.MatchString(url) {
			result.Triggers = append(result.Triggers, sig.Trigger)
			if sig.Confidence > result.Confidence {
				result.Confidence = sig.Confidence
			}
		}
	}

	result.IsLikely = result.Confidence >= threshold
	return result
}

// orderKeywordRe is a deliberately loose match used only to decide whether a
// page is worth waiting on for client-rendered content.
var orderKeywordRe = regexp.MustCompile(`(?i)(order|purchase|receipt|confirmation|thank[-_]?you)`)

// LooksOrderRelated reports whether a URL is plausibly order related, either
// via the details table or a loose keyword match. Intentionally permissive;
// callers use it to gate a wait, not a verdict.
func LooksOrderRelated(url string) bool {
	if ClassifyOrderDetailsURL(url).Confidence > 0 {
		return true
	}
	return orderKeywordRe.MatchString(url)
}
