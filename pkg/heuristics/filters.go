package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/manocha-aman/subscribe-any/models"
)

var (
	pricePrefixRe = regexp.MustCompile(`[$€£₹]\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`)
	priceSuffixRe = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)\s*(?:€|£|₹|USD|EUR|GBP|INR|dollars)`)

	lettersRe = regexp.MustCompile(`[a-zA-Z]`)

	qtyPrefixRe = regexp.MustCompile(`^\s*\d+\s*(?:x|×)\s*`)
	qtyMarkerRe = regexp.MustCompile(`\s*(?:qty|quantity)[:\s]*\d+\s*`)

	// Labels that look like product rows on real order pages but never are.
	nonProductLabelRe = regexp.MustCompile(`(?i)^(sub\s?total|total|order\s+total|grand\s+total|shipping|delivery|tax(es)?|vat|discount|coupon|promo(tion)?|payment|quantity|qty|price|item(s)?|product(s)?|description|free\s+shipping|estimated\s+(tax|delivery|total)|order\s+(number|summary|details)|billing|refund|gift\s?card|savings?)\b[:\s]*$`)
)

// ParsePrice finds the first currency-prefixed or suffixed decimal in s and
// returns it when it falls inside the sanity bounds. Returns nil otherwise.
func ParsePrice(s string) *float64 {
	var raw string
	if m := pricePrefixRe.FindStringSubmatch(s); len(m) > 1 {
		raw = m[1]
	} else if m := priceSuffixRe.FindStringSubmatch(s); len(m) > 1 {
		raw = m[1]
	}
	if raw == "" {
		return nil
	}

	raw = strings.ReplaceAll(raw, ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || !models.ValidPrice(value) {
		return nil
	}
	return &value
}

// IsLikelyProductName rejects strings that cannot be product names: too short
// or too long, no letters at all, or a common order-page label (subtotal,
// shipping, quantity and friends).
func IsLikelyProductName(s string) bool {
	name := strings.TrimSpace(s)
	if len(name) < 3 || len(name) > models.MaxProductNameLen {
		return false
	}
	if !lettersRe.MatchString(name) {
		return false
	}
	if nonProductLabelRe.MatchString(name) {
		return false
	}
	return true
}

// CleanProductName strips prices, leading quantity markers, and excess
// whitespace from a candidate product line.
func CleanProductName(s string) string {
	name := pricePrefixRe.ReplaceAllString(s, "")
	name = priceSuffixRe.ReplaceAllString(name, "")
	name = qtyPrefixRe.ReplaceAllString(name, "")
	name = qtyMarkerRe.ReplaceAllString(name, " ")
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, " -–—:|•")
}
