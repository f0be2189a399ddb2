package models

import (
	"fmt"
	"strings"
	"testing"
)

func TestAddProduct(t *testing.T) {
	t.Run("caps name length", func(t *testing.T) {
		a := EmptyAnalysis()
		if !a.AddProduct(ExtractedProduct{Name: strings.Repeat("n", 500)}) {
			t.Fatal("long-named product rejected")
		}
		if len(a.Products[0].Name) != MaxProductNameLen {
			t.Errorf("len(Name) = %d, want %d", len(a.Products[0].Name), MaxProductNameLen)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		a := EmptyAnalysis()
		if a.AddProduct(ExtractedProduct{Name: "   "}) {
			t.Error("blank name accepted")
		}
	})

	t.Run("case-insensitive dedupe", func(t *testing.T) {
		a := EmptyAnalysis()
		a.AddProduct(ExtractedProduct{Name: "Dog Food"})
		if a.AddProduct(ExtractedProduct{Name: "DOG FOOD"}) {
			t.Error("case-folded duplicate accepted")
		}
		if len(a.Products) != 1 {
			t.Errorf("Products = %+v", a.Products)
		}
	})

	t.Run("enforces product cap", func(t *testing.T) {
		a := EmptyAnalysis()
		for i := 0; i < MaxProductsPerOrder+3; i++ {
			a.AddProduct(ExtractedProduct{Name: fmt.Sprintf("Product %d", i)})
		}
		if len(a.Products) != MaxProductsPerOrder {
			t.Errorf("len(Products) = %d, want %d", len(a.Products), MaxProductsPerOrder)
		}
	})

	t.Run("defaults quantity and drops bad prices", func(t *testing.T) {
		a := EmptyAnalysis()
		bad := -5.0
		a.AddProduct(ExtractedProduct{Name: "Thing", Quantity: 0, Price: &bad})
		if a.Products[0].Quantity != 1 {
			t.Errorf("Quantity = %d, want 1", a.Products[0].Quantity)
		}
		if a.Products[0].Price != nil {
			t.Errorf("Price = %v, want nil", *a.Products[0].Price)
		}
	})
}

func TestValidPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  bool
	}{
		{0.01, true},
		{9999.99, true},
		{0, false},
		{-1, false},
		{10000, false},
	}
	for _, tt := range tests {
		if got := ValidPrice(tt.price); got != tt.want {
			t.Errorf("ValidPrice(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}
