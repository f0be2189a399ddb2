package sanitizer

import (
	"strings"
	"testing"

	"github.com/manocha-aman/subscribe-any/models"
)

func TestExtractPageContent_RemovesNoise(t *testing.T) {
	raw := `<html><head>
		<title>Order Confirmation</title>
		<meta charset="utf-8">
		<link rel="stylesheet" href="app.css">
		<style>.hidden { display: none }</style>
	</head><body>
		<script>alert("tracking")</script>
		<noscript>Please enable JavaScript</noscript>
		<svg viewBox="0 0 10 10"><path d="M0 0"/></svg>
		<!-- build 4521 -->
		<p>Thank you for your order</p>
	</body></html>`

	content := ExtractPageContent(raw)

	for _, banned := range []string{"alert", "display: none", "enable JavaScript", "viewBox", "build 4521"} {
		if strings.Contains(content.HTML, banned) {
			t.Errorf("HTML still contains %q:\n%s", banned, content.HTML)
		}
		if strings.Contains(content.Text, banned) {
			t.Errorf("Text still contains %q:\n%s", banned, content.Text)
		}
	}
	if !strings.Contains(content.Text, "Thank you for your order") {
		t.Errorf("Text lost real content: %q", content.Text)
	}
}

func TestExtractPageContent_PrunesAttributes(t *testing.T) {
	raw := `<html><body>
		<div class="order-item" style="color:red" data-sku="A1" onclick="buy()">
			<a href="/p/1" target="_blank" rel="noopener">Organic Almond Butter</a>
			<img src="jar.png" alt="jar" width="80" loading="lazy">
		</div>
	</body></html>`

	content := ExtractPageContent(raw)

	wantKept := []string{`class="order-item"`, `data-sku="A1"`, `href="/p/1"`, `src="jar.png"`, `alt="jar"`}
	for _, want := range wantKept {
		if !strings.Contains(content.HTML, want) {
			t.Errorf("HTML dropped %q:\n%s", want, content.HTML)
		}
	}

	wantDropped := []string{"style=", "onclick", "target=", "rel=", "width=", "loading="}
	for _, banned := range wantDropped {
		if strings.Contains(content.HTML, banned) {
			t.Errorf("HTML kept %q:\n%s", banned, content.HTML)
		}
	}
}

func TestExtractPageContent_ChromeRemovalIsClassGated(t *testing.T) {
	raw := `<html><body>
		<header class="site-header">Departments Deals Sign in</header>
		<header class="order-header">Order placed today</header>
		<nav class="main-nav">Home Shop Help</nav>
		<div>Thank you for your order</div>
		<footer class="global-footer">Privacy Terms</footer>
	</body></html>`

	content := ExtractPageContent(raw)

	for _, banned := range []string{"Departments", "Home Shop Help", "Privacy Terms"} {
		if strings.Contains(content.Text, banned) {
			t.Errorf("chrome text %q survived: %q", banned, content.Text)
		}
	}
	if !strings.Contains(content.Text, "Order placed today") {
		t.Errorf("non-chrome header was removed: %q", content.Text)
	}
	if !strings.Contains(content.Text, "Thank you for your order") {
		t.Errorf("main content was removed: %q", content.Text)
	}
}

func TestExtractPageContent_DecodesCommonEntities(t *testing.T) {
	raw := `<html><body><p>Tom &amp; Jerry&#39;s deal &lt;limited&gt;</p></body></html>`

	content := ExtractPageContent(raw)

	if !strings.Contains(content.Text, "Tom & Jerry's deal") {
		t.Errorf("entities not decoded: %q", content.Text)
	}
}

func TestExtractPageContent_RemovesEmptyPairs(t *testing.T) {
	raw := `<html><body><div><span>  </span></div><p>Content</p></body></html>`

	content := ExtractPageContent(raw)

	if content.HTML != "<p>Content</p>" {
		t.Errorf("HTML = %q, want %q", content.HTML, "<p>Content</p>")
	}
}

func TestExtractPageContent_TruncatesBothProjections(t *testing.T) {
	raw := "<html><body>" + strings.Repeat("word ", 30000) + "</body></html>"

	content := ExtractPageContent(raw)

	if len(content.HTML) > models.MaxContentHTMLLen {
		t.Errorf("len(HTML) = %d, want <= %d", len(content.HTML), models.MaxContentHTMLLen)
	}
	if len(content.Text) > models.MaxContentTextLen {
		t.Errorf("len(Text) = %d, want <= %d", len(content.Text), models.MaxContentTextLen)
	}
	if !strings.HasSuffix(content.HTML, models.TruncationMarker) {
		t.Error("truncated HTML missing marker")
	}
	if !strings.HasSuffix(content.Text, models.TruncationMarker) {
		t.Error("truncated Text missing marker")
	}
}

func TestExtractPageContent_NoMarkerUnderLimit(t *testing.T) {
	content := ExtractPageContent(`<html><body><p>small page</p></body></html>`)

	if strings.Contains(content.HTML, models.TruncationMarker) {
		t.Errorf("unexpected marker in HTML: %q", content.HTML)
	}
	if strings.Contains(content.Text, models.TruncationMarker) {
		t.Errorf("unexpected marker in Text: %q", content.Text)
	}
}

func TestExtractPageContent_Idempotent(t *testing.T) {
	raw := `<html><body>
		<div class="order">
			<p>Thank you for your order</p>
			<p>Order #12345</p>
		</div>
	</body></html>`

	first := ExtractPageContent(raw)
	second := ExtractPageContent(first.HTML)

	if second.HTML != first.HTML {
		t.Errorf("HTML not stable:\nfirst:  %q\nsecond: %q", first.HTML, second.HTML)
	}
	if second.Text != first.Text {
		t.Errorf("Text not stable:\nfirst:  %q\nsecond: %q", first.Text, second.Text)
	}
}

func TestExtractPageContent_DegradedInput(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantText string
	}{
		{"empty input", "", ""},
		{"bare text", "just plain text", "just plain text"},
		{"unclosed tag", "<div>half open", "half open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := ExtractPageContent(tt.raw)
			if content.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", content.Text, tt.wantText)
			}
		})
	}
}
