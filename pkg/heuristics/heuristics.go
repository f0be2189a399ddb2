// Package heuristics is the no-LLM extraction path: fixed confirmation
// phrases, a ranked retailer table, and line-oriented product scraping.
// It backs the pipeline whenever the model endpoint is unavailable, errors
// out, or returns nothing usable.
package heuristics

import (
	"regexp"
	"strings"

	"github.com/manocha-aman/subscribe-any/models"
)

// HeuristicConfidence is the fixed confidence assigned to heuristic-only
// results. Lower than typical LLM confidences to reflect lower trust.
const HeuristicConfidence = 0.6

// maxCandidateLines caps how many product lines the text path extracts.
const maxCandidateLines = 5

// confirmationPhrases gate the whole text path. No phrase, no analysis.
var confirmationPhrases = []string{
	"thank you for your order",
	"thank you for your purchase",
	"order confirmation",
	"your order has been placed",
	"your order has been confirmed",
	"your order has been received",
	"we've received your order",
	"order placed",
	"purchase confirmed",
	"your purchase was successful",
}

// retailerPatterns is a priority-ordered brand table; first match wins.
type retailerPattern struct {
	pattern *regexp.Regexp
	name    string
}

var retailerPatterns = []retailerPattern{
	{regexp.MustCompile(`(?i)\bamazon\b`), "Amazon"},
	{regexp.MustCompile(`(?i)\bwalmart\b`), "Walmart"},
	{regexp.MustCompile(`(?i)\btarget\b`), "Target"},
	{regexp.MustCompile(`(?i)\bbest\s?buy\b`), "Best Buy"},
	{regexp.MustCompile(`(?i)\bcostco\b`), "Costco"},
	{regexp.MustCompile(`(?i)\binstacart\b`), "Instacart"},
	{regexp.MustCompile(`(?i)\bchewy\b`), "Chewy"},
	{regexp.MustCompile(`(?i)\betsy\b`), "Etsy"},
	{regexp.MustCompile(`(?i)\bebay\b`), "eBay"},
	{regexp.MustCompile(`(?i)\bwhole\s?foods\b`), "Whole Foods"},
	{regexp.MustCompile(`(?i)\bflipkart\b`), "Flipkart"},
	{regexp.MustCompile(`(?i)\bblinkit\b`), "Blinkit"},
	{regexp.MustCompile(`(?i)\bzepto\b`), "Zepto"},
	{regexp.MustCompile(`(?i)\bbigbasket\b`), "BigBasket"},
}

var (
	orderNumberRe = regexp.MustCompile(`(?i)(?:order|#|:)\s*#?\s*([A-Za-z0-9][A-Za-z0-9-]{3,})`)

	currencyRe  = regexp.MustCompile(`[$€£₹]|\b(?:USD|EUR|GBP|INR)\b`)
	quantityRe  = regexp.MustCompile(`(?i)\b\d+\s*(?:x|×|qty|kg|g|lb|oz|pack|ct)\b`)
	lineSplitRe = regexp.MustCompile(`[\n\r]+`)
)

// ExtractFromText runs the content-only heuristic extraction over raw page
// text. If no confirmation phrase matches it returns the negative analysis.
func ExtractFromText(text string) models.OrderAnalysis {
	analysis := models.EmptyAnalysis()
	lower := strings.ToLower(text)

	confirmed := false
	for _, phrase := range confirmationPhrases {
		if strings.Contains(lower, phrase) {
			confirmed = true
			break
		}
	}
	if !confirmed {
		return analysis
	}

	analysis.IsOrderConfirmation = true
	analysis.Confidence = HeuristicConfidence
	analysis.Retailer = DetectRetailer(text)
	analysis.OrderNumber = ExtractOrderNumber(text)

	count := 0
	for _, line := range lineSplitRe.Split(text, -1) {
		if count >= maxCandidateLines {
			break
		}
		line = strings.TrimSpace(line)
		if len(line) < 10 || len(line) > 200 {
			continue
		}
		if !currencyRe.MatchString(line) && !quantityRe.MatchString(line) {
			continue
		}

		name := CleanProductName(line)
		if !IsLikelyProductName(name) {
			continue
		}

		if analysis.AddProduct(models.ExtractedProduct{
			Name:     name,
			Price:    ParsePrice(line),
			Quantity: 1,
		}) {
			count++
		}
	}

	return analysis
}

// DetectRetailer tests the brand table in priority order; first match wins.
func DetectRetailer(text string) string {
	for _, rp := range retailerPatterns {
		if rp.pattern.MatchString(text) {
			return rp.name
		}
	}
	return ""
}

// ExtractOrderNumber pulls a 4+ character alnum/hyphen token following an
// "order", "#" or ":" anchor. Empty when nothing plausible is found.
func ExtractOrderNumber(text string) string {
	// "Order Confirmation" style phrases anchor the regex too; a candidate
	// with no digit at all is a word, not an order number.
	for _, m := range orderNumberRe.FindAllStringSubmatch(text, 10) {
		if len(m) > 1 && strings.ContainsAny(m[1], "0123456789") {
			return m[1]
		}
	}
	return ""
}
