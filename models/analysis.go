// Package models defines the value objects shared across the detection pipeline.
package models

import "strings"

const (
	// MaxProductNameLen bounds product names after trimming.
	MaxProductNameLen = 200

	// MaxProductsPerOrder caps how many products a single analysis may carry.
	MaxProductsPerOrder = 10

	// Price sanity bounds. Anything outside (0, 10000) is treated as a
	// misparsed number and dropped.
	MinPrice = 0.0
	MaxPrice = 10000.0
)

// ExtractedProduct is a single product pulled from an order page.
type ExtractedProduct struct {
	Name                   string   `json:"name" yaml:"name"`
	Price                  *float64 `json:"price" yaml:"price"`
	Quantity               int      `json:"quantity" yaml:"quantity"`
	IsRecurring            bool     `json:"is_recurring" yaml:"is_recurring"`
	Category               *string  `json:"category,omitempty" yaml:"category,omitempty"`
	SuggestedFrequencyDays *int     `json:"suggested_frequency_days,omitempty" yaml:"suggested_frequency_days,omitempty"`
}

// ValidPrice reports whether a price value is inside the sanity bounds.
func ValidPrice(p float64) bool {
	return p > MinPrice && p < MaxPrice
}

// OrderAnalysis is the unit of output of both the LLM path and the heuristic
// fallback path. Consumers treat the two identically.
type OrderAnalysis struct {
	IsOrderConfirmation bool               `json:"is_order_confirmation" yaml:"is_order_confirmation"`
	Confidence          float64            `json:"confidence" yaml:"confidence"`
	Products            []ExtractedProduct `json:"products" yaml:"products"`
	Retailer            string             `json:"retailer,omitempty" yaml:"retailer,omitempty"`
	OrderNumber         string             `json:"order_number,omitempty" yaml:"order_number,omitempty"`
}

// EmptyAnalysis is the negative terminal result used by every recovery path.
func EmptyAnalysis() OrderAnalysis {
	return OrderAnalysis{Products: []ExtractedProduct{}}
}

// AddProduct appends p if the analysis is under the product cap and no
// product with the same name (case-insensitive) is already present.
// It reports whether the product was added.
func (a *OrderAnalysis) AddProduct(p ExtractedProduct) bool {
	if len(a.Products) >= MaxProductsPerOrder {
		return false
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return false
	}
	if len(name) > MaxProductNameLen {
		name = name[:MaxProductNameLen]
	}
	for _, existing := range a.Products {
		if strings.EqualFold(existing.Name, name) {
			return false
		}
	}
	p.Name = name
	if p.Quantity <= 0 {
		p.Quantity = 1
	}
	if p.Price != nil && !ValidPrice(*p.Price) {
		p.Price = nil
	}
	a.Products = append(a.Products, p)
	return true
}
