// Package sanitizer turns raw page HTML into the bounded projections the
// classifiers and the LLM prompt builder consume: a pruned structural HTML
// view and a flattened plain-text view.
package sanitizer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/manocha-aman/subscribe-any/models"
)

var (
	scriptRe   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	noscriptRe = regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript>`)
	svgRe      = regexp.MustCompile(`(?is)<svg\b[^>]*>.*?</svg>`)
	voidTagRe  = regexp.MustCompile(`(?i)<(?:link|meta)\b[^>]*/?>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)

	tagRe        = regexp.MustCompile(`<[^>]+>`)
	wsRe         = regexp.MustCompile(`\s+`)
	interTagRe   = regexp.MustCompile(`>\s+<`)
	emptyPairRe  = regexp.MustCompile(`<(\w+)(?:\s[^>]*)?>\s*</(\w+)>`)
	noiseClassRe = regexp.MustCompile(`(?i)\b(?:main|site|global)\b`)
)

// entityDecoder covers the six entities that dominate real order pages.
// Full entity decoding is left to the text projection's tag stripping.
var entityDecoder = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// keptAttrs is the semantic attribute allowlist applied during pruning.
// class/id and data-* are handled separately.
var keptAttrs = map[string]struct{}{
	"role":             {},
	"aria-label":       {},
	"aria-labelledby":  {},
	"aria-describedby": {},
	"itemprop":         {},
	"itemscope":        {},
	"itemtype":         {},
}

// ExtractPageContent sanitizes raw HTML into bounded html/text projections.
// It never fails: malformed input degrades to a smaller, noisier extraction.
func ExtractPageContent(rawHTML string) models.PageContent {
	cleaned := removeNoiseTags(rawHTML)

	// Attribute pruning and structural-noise removal need a parsed document.
	// If parsing is impossible we fall through with the regex-cleaned string.
	if pruned, ok := pruneDocument(cleaned); ok {
		cleaned = pruned
	}

	cleaned = entityDecoder.Replace(cleaned)

	text := deriveText(cleaned)
	htmlOut := deriveHTML(cleaned)

	return models.PageContent{
		HTML: truncate(htmlOut, models.MaxContentHTMLLen),
		Text: truncate(text, models.MaxContentTextLen),
	}
}

// removeNoiseTags strips script/style/noscript/svg blocks, link/meta tags and
// HTML comments with non-greedy matching.
func removeNoiseTags(s string) string {
	s = scriptRe.ReplaceAllString(s, "")
	s = styleRe.ReplaceAllString(s, "")
	s = noscriptRe.ReplaceAllString(s, "")
	s = svgRe.ReplaceAllString(s, "")
	s = voidTagRe.ReplaceAllString(s, "")
	s = commentRe.ReplaceAllString(s, "")
	return s
}

// pruneDocument drops class-gated structural chrome and prunes attributes
// down to the signal-bearing set. Returns ok=false when the document could
// not be parsed or rendered, in which case the caller keeps the input as-is.
func pruneDocument(cleaned string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return "", false
	}

	// Conservative chrome removal: only containers whose class names it as
	// page-level chrome. Order content lives outside these on real pages.
	doc.Find("header,footer,nav,aside").Each(func(_ int, s *goquery.Selection) {
		if class, exists := s.Attr("class"); exists && noiseClassRe.MatchString(class) {
			s.Remove()
		}
	})

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		pruneAttrs(s)
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", false
	}
	out, err := body.Html()
	if err != nil {
		return "", false
	}
	return out, true
}

// pruneAttrs keeps class, id, data-*, the semantic allowlist, href on
// anchors, and src/alt on images. Everything else is dropped.
func pruneAttrs(s *goquery.Selection) {
	if len(s.Nodes) == 0 {
		return
	}
	node := s.Nodes[0]
	if node.Type != html.ElementNode {
		return
	}

	kept := node.Attr[:0]
	for _, attr := range node.Attr {
		key := strings.ToLower(attr.Key)
		switch {
		case key == "class" || key == "id":
		case strings.HasPrefix(key, "data-"):
		case key == "href" && node.Data == "a":
		case (key == "src" || key == "alt") && node.Data == "img":
		default:
			if _, ok := keptAttrs[key]; !ok {
				continue
			}
		}
		kept = append(kept, attr)
	}
	node.Attr = kept
}

// deriveText strips all remaining tags and collapses whitespace.
func deriveText(s string) string {
	text := tagRe.ReplaceAllString(s, " ")
	text = wsRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// deriveHTML removes now-empty tag pairs and collapses inter-tag whitespace.
func deriveHTML(s string) string {
	// Removing an empty pair can empty its parent, so iterate. The bound
	// guards against pathological nesting.
	for i := 0; i < 10; i++ {
		next := emptyPairRe.ReplaceAllStringFunc(s, func(match string) string {
			groups := emptyPairRe.FindStringSubmatch(match)
			if len(groups) == 3 && strings.EqualFold(groups[1], groups[2]) {
				return ""
			}
			return match
		})
		if next == s {
			break
		}
		s = next
	}
	s = interTagRe.ReplaceAllString(s, "> <")
	return strings.TrimSpace(s)
}

// truncate caps s at max total characters, ending with the truncation marker
// when a cut was made.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-len(models.TruncationMarker)] + models.TruncationMarker
}
