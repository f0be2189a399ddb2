package detector

import (
	"strings"
	"testing"
)

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		wantLikely     bool
		wantMinConf    float64
		wantTrigger    string
		wantNoTriggers bool
	}{
		{
			name:        "amazon thank-you page",
			url:         "https://www.amazon.com/gp/buy/thankyou/handlers/display.html",
			wantLikely:  true,
			wantMinConf: 0.9,
			wantTrigger: "amazon-thank-you",
		},
		{
			name:        "generic order confirmation",
			url:         "https://shop.example.com/order-confirmation?id=9",
			wantLikely:  true,
			wantMinConf: 0.9,
			wantTrigger: "order-confirmation-url",
		},
		{
			name:        "checkout complete",
			url:         "https://store.example.com/checkout/complete",
			wantLikely:  true,
			wantMinConf: 0.85,
			wantTrigger: "checkout-complete-url",
		},
		{
			name:        "thank you page",
			url:         "https://shop.example.com/thank-you",
			wantLikely:  true,
			wantMinConf: 0.8,
			wantTrigger: "thank-you-url",
		},
		{
			name:           "amazon product page is excluded",
			url:            "https://www.amazon.com/dp/B08N5WRWNW",
			wantLikely:     false,
			wantNoTriggers: true,
		},
		{
			name:           "cart page is excluded",
			url:            "https://shop.example.com/cart",
			wantLikely:     false,
			wantNoTriggers: true,
		},
		{
			name:           "bare checkout is excluded",
			url:            "https://shop.example.com/checkout",
			wantLikely:     false,
			wantNoTriggers: true,
		},
		{
			name:           "login page is excluded",
			url:            "https://shop.example.com/login?next=/orders/12345",
			wantLikely:     false,
			wantNoTriggers: true,
		},
		{
			name:           "plain homepage",
			url:            "https://example.com/",
			wantLikely:     false,
			wantNoTriggers: true,
		},
		{
			name:        "order id in path clears the url bar",
			url:         "https://shop.example.com/orders/123456789",
			wantLikely:  true,
			wantMinConf: 0.65,
			wantTrigger: "order-id-path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyURL(tt.url)
			if result.IsLikely != tt.wantLikely {
				t.Errorf("IsLikely = %v, want %v (conf=%v triggers=%v)",
					result.IsLikely, tt.wantLikely, result.Confidence, result.Triggers)
			}
			if tt.wantNoTriggers {
				if result.Confidence != 0 || len(result.Triggers) != 0 {
					t.Errorf("excluded/unmatched URL got conf=%v triggers=%v", result.Confidence, result.Triggers)
				}
				return
			}
			if result.Confidence < tt.wantMinConf {
				t.Errorf("Confidence = %v, want >= %v", result.Confidence, tt.wantMinConf)
			}
			if tt.wantTrigger != "" && !hasTrigger(result.Triggers, tt.wantTrigger) {
				t.Errorf("Triggers = %v, want to include %q", result.Triggers, tt.wantTrigger)
			}
		})
	}
}

func TestClassifyURL_OrderIDPathThreshold(t *testing.T) {
	// 0.65 is above the 0.6 confirmation bar but must stay below details'.
	result := ClassifyURL("https://shop.example.com/orders/123456789")
	if result.Confidence >= 0.7 {
		t.Errorf("order-id-path confidence = %v, want < 0.7", result.Confidence)
	}
}

func TestClassifyURL_MaxNotSum(t *testing.T) {
	// Two confirmation signals fire; confidence must be the strongest one,
	// never the sum.
	result := ClassifyURL("https://shop.example.com/order-confirmation/thank-you")
	if len(result.Triggers) < 2 {
		t.Fatalf("expected both signals to fire, got %v", result.Triggers)
	}
	if result.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want max match 0.9", result.Confidence)
	}
}

func TestClassifyURL_ExclusionWins(t *testing.T) {
	// A confirmation keyword inside an excluded area never rescues the URL.
	urls := []string{
		"https://shop.example.com/cart/thank-you",
		"https://shop.example.com/login?from=order-confirmation",
	}
	for _, u := range urls {
		result := ClassifyURL(u)
		if result.IsLikely || result.Confidence != 0 || len(result.Triggers) != 0 {
			t.Errorf("ClassifyURL(%q) = %+v, want negative result", u, result)
		}
	}
}

func TestClassifyOrderDetailsURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantLikely bool
	}{
		{"order history", "https://shop.example.com/account/order-history", true},
		{"order details param", "https://shop.example.com/track?orderId=AB-1234", true},
		{"my orders", "https://shop.example.com/my-orders", true},
		{"amazon order details", "https://www.amazon.com/css/order-details?orderID=123-456", true},
		{"plain product listing", "https://shop.example.com/category/shoes", false},
		{"cart stays excluded", "https://shop.example.com/cart?orderId=999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyOrderDetailsURL(tt.url)
			if result.IsLikely != tt.wantLikely {
				t.Errorf("IsLikely = %v, want %v (conf=%v triggers=%v)",
					result.IsLikely, tt.wantLikely, result.Confidence, result.Triggers)
			}
		})
	}
}

func TestClassifyPage_ContentOnlyNeedsHigherBar(t *testing.T) {
	// Two content signals, 0.55 total: plenty for the mixed threshold but
	// below the content-only one.
	bodyText := "Thank you for your order. Your confirmation number is 8675309."

	contentOnly := ClassifyPage(PageInput{
		URL:      "https://example.com/message",
		BodyText: bodyText,
	})
	if contentOnly.IsLikely {
		t.Errorf("content-only signals at %v should not clear the %v threshold",
			contentOnly.Confidence, ContentOnlyThreshold)
	}
	if contentOnly.Confidence < 0.4 || contentOnly.Confidence >= ContentOnlyThreshold {
		t.Fatalf("test fixture drifted: confidence = %v, want in [0.4, 0.7)", contentOnly.Confidence)
	}

	withURL := ClassifyPage(PageInput{
		URL:      "https://shop.example.com/order-confirmation",
		BodyText: bodyText,
	})
	if !withURL.IsLikely {
		t.Errorf("same content with a URL trigger should be likely, got conf=%v triggers=%v",
			withURL.Confidence, withURL.Triggers)
	}
}

func TestClassifyPage_TitleLayerLowersThreshold(t *testing.T) {
	result := ClassifyPage(PageInput{
		URL:      "https://example.com/xyz",
		Title:    "Order Confirmation - Acme Store",
		BodyText: "Thanks! A confirmation email was sent to you.",
	})
	if !result.IsLikely {
		t.Errorf("title + content signals should be likely, got %+v", result)
	}
}

func TestClassifyPage_AdditiveAndCapped(t *testing.T) {
	weak := ClassifyPage(PageInput{
		URL:      "https://example.com/a",
		BodyText: "Order number: 555-1234",
	})

	stronger := ClassifyPage(PageInput{
		URL:      "https://example.com/a",
		BodyText: "Order number: 555-1234. Thank you for your purchase. We've received your order.",
	})
	if stronger.Confidence < weak.Confidence {
		t.Errorf("adding triggers lowered confidence: %v -> %v", weak.Confidence, stronger.Confidence)
	}
	if len(stronger.Triggers) <= len(weak.Triggers) {
		t.Errorf("adding matching text did not add triggers: %v", stronger.Triggers)
	}

	everything := ClassifyPage(PageInput{
		URL:   "https://shop.example.com/order-confirmation/thank-you",
		Title: "Order Confirmation - Order Placed - Thank you for your order",
		BodyText: "Thank you for your order. Your order has been confirmed. " +
			"Order number: 12345. Confirmation number: 67890. " +
			"A confirmation email has been sent. We've received your order.",
	})
	if everything.Confidence != 1.0 {
		t.Errorf("confidence = %v, want capped at 1.0", everything.Confidence)
	}
	if !everything.IsLikely {
		t.Error("maximal page should be likely")
	}
}

func TestClassifyPage_NoTriggersNeverLikely(t *testing.T) {
	result := ClassifyPage(PageInput{
		URL:      "https://example.com/about",
		Title:    "About us",
		BodyText: "We are a company that does things.",
	})
	if result.IsLikely || result.Confidence != 0 || len(result.Triggers) != 0 {
		t.Errorf("neutral page classified as %+v", result)
	}
}

func TestShouldInvokeLLM(t *testing.T) {
	tests := []struct {
		name string
		page PageInput
		want bool
	}{
		{
			name: "single weak content trigger is enough",
			page: PageInput{URL: "https://example.com/x", BodyText: "Your order number: ABCD1234"},
			want: true,
		},
		{
			name: "no signal at all",
			page: PageInput{URL: "https://example.com/blog", BodyText: "holiday gift guide"},
			want: false,
		},
		{
			name: "url trigger alone",
			page: PageInput{URL: "https://shop.example.com/thank-you", BodyText: "..."},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldInvokeLLM(tt.page); got != tt.want {
				t.Errorf("ShouldInvokeLLM() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLooksOrderRelated(t *testing.T) {
	if !LooksOrderRelated("https://shop.example.com/purchase/receipt") {
		t.Error("receipt URL should look order related")
	}
	if LooksOrderRelated("https://example.com/blog/cooking") {
		t.Error("blog URL should not look order related")
	}
}

func hasTrigger(triggers []string, want string) bool {
	for _, tr := range triggers {
		if strings.Contains(tr, want) {
			return true
		}
	}
	return false
}
