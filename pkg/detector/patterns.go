// Package detector classifies URLs and page snapshots as order confirmations
// using declarative pattern tables. Tables are data, not code: each entry is
// a compiled regex with a named trigger and a confidence weight, so they can
// be tested exhaustively and extended without touching control flow.
package detector

import (
	"regexp"

	"github.com/manocha-aman/subscribe-any/models"
)

func signal(pattern, trigger string, confidence float64) models.PageSignal {
	return models.PageSignal{
		Pattern:    regexp.MustCompile(pattern),
		Trigger:    trigger,
		Confidence: confidence,
	}
}

// excludePatterns short-circuit URL classification. Cart, bare checkout,
// product-detail and account pages generate heavy false positives and are
// rejected before any confirmation signal is considered.
var excludePatterns = []models.PageSignal{
	signal(`(?i)/cart(/|$|\?)`, "cart-page", 1.0),
	signal(`(?i)/basket(/|$|\?)`, "basket-page", 1.0),
	signal(`(?i)/checkout/?(\?|$)`, "bare-checkout", 1.0),
	signal(`(?i)/dp/[A-Z0-9]{8,}`, "product-detail", 1.0),
	signal(`(?i)/gp/product/`, "product-detail", 1.0),
	signal(`(?i)/products?/[^/]+/?(\?|$)`, "product-detail", 1.0),
	signal(`(?i)/(login|log-in|signin|sign-in|register|signup|sign-up)(/|$|\?)`, "auth-page", 1.0),
	signal(`(?i)/(password|forgot-password|reset-password)(/|$|\?)`, "auth-page", 1.0),
}

// confirmationPatterns is the ranked table for just-placed order pages.
// Confidence is combined with max(), not sum(): several weak matches never
// outrank one strong match.
var confirmationPatterns = []models.PageSignal{
	signal(`(?i)/gp/buy/thankyou`, "amazon-thank-you", 0.95),
	signal(`(?i)order[-_]?confirmation`, "order-confirmation-url", 0.9),
	signal(`(?i)/checkout/(complete|success|done|finished)`, "checkout-complete-url", 0.85),
	signal(`(?i)order[-_]?(placed|complete|success)`, "order-complete-url", 0.85),
	signal(`(?i)purchase[-_]?(complete|confirmation|success)`, "purchase-complete-url", 0.8),
	signal(`(?i)thank[-_]?you`, "thank-you-url", 0.8),
	signal(`(?i)/confirmation(/|$|\?)`, "confirmation-url", 0.7),
	signal(`(?i)/orders?/[A-Z0-9-]*\d{4,}`, "order-id-path", 0.65),
	signal(`(?i)[?&]order(number|no|id)?=[\w-]{4,}`, "order-id-query", 0.6),
}

// detailsPatterns covers viewing a previously placed order (history, status,
// tracking). Surfacing these is gated by a user setting.
var detailsPatterns = []models.PageSignal{
	signal(`(?i)order[-_]?(history|details?|view|status|summary)`, "order-details-url", 0.85),
	signal(`(?i)/account/orders?`, "account-orders-url", 0.8),
	signal(`(?i)/my[-_]?orders?`, "my-orders-url", 0.8),
	signal(`(?i)/purchases(/|$|\?)`, "purchases-url", 0.75),
	signal(`(?i)[?&](orderid|order_id|orderno|order-no)=`, "order-id-param", 0.75),
	signal(`(?i)/css/order-(history|details)`, "amazon-order-details", 0.85),
}

// titlePatterns runs against the document title.
var titlePatterns = []models.PageSignal{
	signal(`(?i)order\s+confirm(ed|ation)`, "title-order-confirmation", 0.4),
	signal(`(?i)(thank\s+you.*order|order.*thank\s+you)`, "title-thank-you-order", 0.4),
	signal(`(?i)order\s+placed`, "title-order-placed", 0.4),
	signal(`(?i)order\s+complete`, "title-order-complete", 0.4),
	signal(`(?i)purchase\s+confirm(ed|ation)`, "title-purchase-confirmation", 0.35),
	signal(`(?i)receipt\s+for\s+your\s+order`, "title-order-receipt", 0.35),
}

// contentPatterns runs against the sanitized body text. These are the weakest
// signals ("order number" shows up on plenty of non-confirmation pages), so
// content-only matches need a higher decision threshold.
var contentPatterns = []models.PageSignal{
	signal(`(?i)order\s*(number|#)\s*:?\s*\S`, "content-order-number", 0.2),
	signal(`(?i)confirmation\s+number`, "content-confirmation-number", 0.25),
	signal(`(?i)your\s+order\s+(has\s+been|is|was)\s+(confirmed|placed|received)`, "content-order-confirmed", 0.3),
	signal(`(?i)thank\s+you\s+for\s+your\s+(order|purchase)`, "content-thank-you", 0.3),
	signal(`(?i)(a\s+)?confirmation\s+email\s+(has\s+been\s+|was\s+)?sent`, "content-confirmation-email", 0.25),
	signal(`(?i)we('|’)?ve\s+received\s+your\s+order`, "content-order-received", 0.3),
}
