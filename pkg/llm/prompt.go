package llm

import (
	"fmt"
	"strings"

	"github.com/manocha-aman/subscribe-any/models"
)

// MaxPromptContentLen bounds how much page text goes into the prompt.
const MaxPromptContentLen = 50000

const systemPrompt = `You are analyzing a web page to determine whether it is an e-commerce order confirmation page, and if so, which products were purchased.

Respond with a single JSON object, no prose, using exactly this shape:
{
  "isOrderConfirmation": boolean,
  "confidence": number between 0 and 1,
  "retailer": string or null,
  "orderNumber": string or null,
  "products": [
    {
      "name": string,
      "price": number or null,
      "quantity": integer (default 1),
      "isRecurring": boolean (true for consumables likely to be repurchased),
      "category": string or null,
      "suggestedFrequencyDays": integer or null (reorder interval for consumables)
    }
  ]
}

Rules:
- Only purchased products belong in "products"; ignore recommendations, ads, and related items.
- At most 10 products.
- Prices are per line item; omit (null) when unclear. Never invent prices.
- Mark groceries, supplements, pet food, toiletries and similar consumables as recurring with a sensible reorder interval in days.`

// BuildPrompt assembles the extraction prompt from sanitized page content and
// the metadata the sanitizer recovered.
func BuildPrompt(content models.PageContent, meta models.PageMeta) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")

	if meta.Title != "" {
		fmt.Fprintf(&b, "Page title: %s\n", meta.Title)
	}
	if meta.SiteName != "" {
		fmt.Fprintf(&b, "Site name: %s\n", meta.SiteName)
	}
	if meta.Language != "" && meta.Language != "en" {
		fmt.Fprintf(&b, "Page language: %s (translate product names to the page's own language, do not anglicize)\n", meta.Language)
	}

	text := content.Text
	if len(text) > MaxPromptContentLen {
		text = text[:MaxPromptContentLen]
	}
	b.WriteString("\nPage content:\n")
	b.WriteString(text)

	return b.String()
}
