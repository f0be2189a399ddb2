package heuristics

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractFromText_ConfirmationPage(t *testing.T) {
	text := "Order Confirmation\nThank you for your order!\nOrder #12345"

	analysis := ExtractFromText(text)

	if !analysis.IsOrderConfirmation {
		t.Fatal("expected order confirmation")
	}
	if analysis.Confidence != HeuristicConfidence {
		t.Errorf("Confidence = %v, want %v", analysis.Confidence, HeuristicConfidence)
	}
	if analysis.OrderNumber != "12345" {
		t.Errorf("OrderNumber = %q, want %q", analysis.OrderNumber, "12345")
	}
	if len(analysis.Products) != 0 {
		t.Errorf("Products = %v, want none", analysis.Products)
	}
}

func TestExtractFromText_NoPhraseNoAnalysis(t *testing.T) {
	analysis := ExtractFromText("Your cart\n2 x Dog Food $24.99\nCheckout now")

	if analysis.IsOrderConfirmation {
		t.Error("cart page treated as confirmation")
	}
	if analysis.Confidence != 0 || len(analysis.Products) != 0 {
		t.Errorf("expected empty analysis, got %+v", analysis)
	}
}

func TestExtractFromText_ProductLines(t *testing.T) {
	text := strings.Join([]string{
		"Thank you for your order from Chewy",
		"2 x Dog Food Premium Mix $24.99",
		"Subtotal: $24.99",
		"Total: $26.50",
	}, "\n")

	analysis := ExtractFromText(text)

	if analysis.Retailer != "Chewy" {
		t.Errorf("Retailer = %q, want Chewy", analysis.Retailer)
	}
	if len(analysis.Products) != 1 {
		t.Fatalf("Products = %+v, want exactly one", analysis.Products)
	}
	p := analysis.Products[0]
	if p.Name != "Dog Food Premium Mix" {
		t.Errorf("Name = %q, want %q", p.Name, "Dog Food Premium Mix")
	}
	if p.Price == nil || *p.Price != 24.99 {
		t.Errorf("Price = %v, want 24.99", p.Price)
	}
	if p.Quantity != 1 {
		t.Errorf("Quantity = %d, want 1", p.Quantity)
	}
}

func TestExtractFromText_CandidateLineCap(t *testing.T) {
	lines := []string{"Thank you for your purchase"}
	for i := 0; i < 8; i++ {
		lines = append(lines, fmt.Sprintf("1 x Household Item Number %c $5.00", 'A'+i))
	}

	analysis := ExtractFromText(strings.Join(lines, "\n"))

	if len(analysis.Products) != maxCandidateLines {
		t.Errorf("len(Products) = %d, want %d", len(analysis.Products), maxCandidateLines)
	}
}

func TestDetectRetailer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single brand", "Thanks for shopping at Chewy!", "Chewy"},
		{"priority order wins", "Sold on ebay, fulfilled by Amazon", "Amazon"},
		{"word boundary", "amazonia rainforest tour", ""},
		{"no brand", "Thank you for your order", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectRetailer(tt.text); got != tt.want {
				t.Errorf("DetectRetailer(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractOrderNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"hash anchor", "Order #12345 placed", "12345"},
		{"colon anchor", "Order Confirmation. Reference: ABC-9921", "ABC-9921"},
		{"word without digits is skipped", "Order Confirmation", ""},
		{"skips words then finds number", "Order Confirmation\nThank you for your order!\nOrder #12345", "12345"},
		{"amazon style", "Order# 112-8374655-1234567", "112-8374655-1234567"},
		{"nothing plausible", "thanks for stopping by", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractOrderNumber(tt.text); got != tt.want {
				t.Errorf("ExtractOrderNumber(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"dollar prefix", "$19.99", ptr(19.99)},
		{"thousands separator", "Total: $1,299.00", ptr(1299.00)},
		{"suffix currency", "9.99 USD", ptr(9.99)},
		{"rupee no decimals", "₹450", ptr(450)},
		{"zero is invalid", "$0.00", nil},
		{"over upper bound", "$12,345.67", nil},
		{"bare number", "Qty: 3", nil},
		{"no price", "Organic Bananas", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.in)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
			case *got != *tt.want:
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestIsLikelyProductName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Organic Whole Milk 2L", true},
		{"USB-C Cable", true},
		{"ab", false},
		{"12345", false},
		{"Subtotal", false},
		{"Shipping:", false},
		{"Estimated Tax", false},
		{"Free Shipping", false},
		{"Order Summary", false},
		{strings.Repeat("a", 201), false},
	}
	for _, tt := range tests {
		t.Run(tt.in[:min(len(tt.in), 20)], func(t *testing.T) {
			if got := IsLikelyProductName(tt.in); got != tt.want {
				t.Errorf("IsLikelyProductName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanProductName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2 x Dog Food $24.99", "Dog Food"},
		{"Greek Yogurt Qty: 3", "Greek Yogurt"},
		{"  Bananas - $1.29  ", "Bananas"},
		{"Moisturizing Lotion 9.99 USD", "Moisturizing Lotion"},
		{"Plain Name", "Plain Name"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := CleanProductName(tt.in); got != tt.want {
				t.Errorf("CleanProductName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
