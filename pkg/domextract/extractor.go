// Package domextract is the last line of extraction: when the LLM path
// yields no products, a cascade of structural strategies runs directly over
// the parsed document. Strategies are tried in order and the first non-empty
// result wins.
package domextract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/manocha-aman/subscribe-any/models"
	"github.com/manocha-aman/subscribe-any/pkg/heuristics"
)

// Strategy is one extraction attempt over a parsed document.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) []models.ExtractedProduct
}

// strategies is the cascade, ordered from most to least specific.
var strategies = []Strategy{
	orderSectionStrategy{},
	dataAttrStrategy{},
	classNameStrategy{},
	itemContainerStrategy{},
	tableRowStrategy{},
	listItemStrategy{},
}

// Extract runs the cascade and returns the first non-empty product list,
// capped and deduplicated. The name of the winning strategy is returned for
// diagnostics; empty when nothing matched.
func Extract(doc *goquery.Document) ([]models.ExtractedProduct, string) {
	if doc == nil {
		return nil, ""
	}
	for _, s := range strategies {
		if products := s.Extract(doc); len(products) > 0 {
			return products, s.Name()
		}
	}
	return nil, ""
}

// collector accumulates products with the shared name filter, the product
// cap, and exact-name deduplication.
type collector struct {
	products []models.ExtractedProduct
	seen     map[string]struct{}
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) full() bool {
	return len(c.products) >= models.MaxProductsPerOrder
}

func (c *collector) add(name string, price *float64, quantity int) {
	if c.full() {
		return
	}
	name = heuristics.CleanProductName(name)
	if !heuristics.IsLikelyProductName(name) {
		return
	}
	if _, dup := c.seen[name]; dup {
		return
	}
	if quantity <= 0 {
		quantity = 1
	}
	if price != nil && !models.ValidPrice(*price) {
		price = nil
	}
	c.seen[name] = struct{}{}
	c.products = append(c.products, models.ExtractedProduct{
		Name:     name,
		Price:    price,
		Quantity: quantity,
	})
}
