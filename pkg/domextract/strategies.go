package domextract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/manocha-aman/subscribe-any/models"
	"github.com/manocha-aman/subscribe-any/pkg/heuristics"
)

var (
	orderSectionRe = regexp.MustCompile(`(?i)what'?s\s+in\s+(your\s+|the\s+|this\s+)?order|items?\s+in\s+(your\s+|this\s+)?order|order\s+items`)
	qtyLineRe      = regexp.MustCompile(`(?i)^(\d{1,3})\s*(?:x|×|kg|g\b|lb|pcs?|pack)\s+(.{3,200})$`)
)

// orderSectionStrategy handles the "N x Product Name" text layout anchored to
// a "What's in order" section, common on grocery and quick-commerce sites.
type orderSectionStrategy struct{}

func (orderSectionStrategy) Name() string { return "order-section-text" }

func (orderSectionStrategy) Extract(doc *goquery.Document) []models.ExtractedProduct {
	var anchor *goquery.Selection
	doc.Find("h1,h2,h3,h4,h5,div,span,p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if orderSectionRe.MatchString(strings.TrimSpace(s.Text())) && len(s.Text()) < 120 {
			anchor = s
			return false
		}
		return true
	})
	if anchor == nil {
		return nil
	}

	// Scan the anchor's enclosing container line by line.
	container := anchor.Parent()
	if container.Length() == 0 {
		container = anchor
	}

	c := newCollector()
	container.Find("*").Each(func(_ int, s *goquery.Selection) {
		if c.full() || s.Children().Length() > 0 {
			return
		}
		line := strings.TrimSpace(s.Text())
		if m := qtyLineRe.FindStringSubmatch(line); len(m) == 3 {
			qty, _ := strconv.Atoi(m[1])
			c.add(m[2], heuristics.ParsePrice(line), qty)
		}
	})
	return c.products
}

// dataAttrStrategy reads product-oriented data-* attributes.
type dataAttrStrategy struct{}

func (dataAttrStrategy) Name() string { return "data-attributes" }

var productDataAttrs = []string{
	"data-product-name",
	"data-product-title",
	"data-item-name",
	"data-line-item-name",
}

func (dataAttrStrategy) Extract(doc *goquery.Document) []models.ExtractedProduct {
	c := newCollector()
	for _, attr := range productDataAttrs {
		doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			if c.full() {
				return
			}
			name, _ := s.Attr(attr)
			if strings.TrimSpace(name) == "" {
				name = s.Text()
			}
			c.add(name, heuristics.ParsePrice(closestText(s)), 1)
		})
	}
	return c.products
}

// classNameStrategy matches the common product/item CSS class conventions.
type classNameStrategy struct{}

func (classNameStrategy) Name() string { return "class-names" }

var productClassSelectors = []string{
	".product-name", ".product-title", ".product_name",
	".item-name", ".item-title", ".item_name",
	".line-item-name", ".order-item-name", ".cart-item-name",
	".productName", ".itemName", ".itemTitle",
}

func (classNameStrategy) Extract(doc *goquery.Document) []models.ExtractedProduct {
	c := newCollector()
	doc.Find(strings.Join(productClassSelectors, ",")).Each(func(_ int, s *goquery.Selection) {
		if c.full() {
			return
		}
		c.add(s.Text(), heuristics.ParsePrice(closestText(s)), 1)
	})
	return c.products
}

// itemContainerStrategy targets known order/cart/line item containers and
// takes the first plausible text node inside each.
type itemContainerStrategy struct{}

func (itemContainerStrategy) Name() string { return "item-containers" }

var itemContainerSelectors = []string{
	"[class*='order-item']", "[class*='cart-item']", "[class*='line-item']",
	"[class*='orderItem']", "[class*='cartItem']", "[class*='lineItem']",
}

func (itemContainerStrategy) Extract(doc *goquery.Document) []models.ExtractedProduct {
	c := newCollector()
	doc.Find(strings.Join(itemContainerSelectors, ",")).Each(func(_ int, container *goquery.Selection) {
		if c.full() {
			return
		}
		name := firstPlausibleText(container)
		if name == "" {
			return
		}
		c.add(name, heuristics.ParsePrice(container.Text()), 1)
	})
	return c.products
}

// tableRowStrategy scans generic table rows: first cell that reads like a
// product name, price parsed from the whole row.
type tableRowStrategy struct{}

func (tableRowStrategy) Name() string { return "table-rows" }

func (tableRowStrategy) Extract(doc *goquery.Document) []models.ExtractedProduct {
	c := newCollector()
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		if c.full() {
			return
		}
		var name string
		row.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			text := heuristics.CleanProductName(cell.Text())
			if heuristics.IsLikelyProductName(text) {
				name = text
				return false
			}
			return true
		})
		if name == "" {
			return
		}
		c.add(name, heuristics.ParsePrice(row.Text()), 1)
	})
	return c.products
}

// listItemStrategy is the loosest pass: list items (and leaf divs) whose text
// carries a price; the longest plausible text node becomes the name.
type listItemStrategy struct{}

func (listItemStrategy) Name() string { return "list-items" }

func (listItemStrategy) Extract(doc *goquery.Document) []models.ExtractedProduct {
	c := newCollector()
	doc.Find("li,div").Each(func(_ int, item *goquery.Selection) {
		if c.full() {
			return
		}
		// Leaf-ish items only; big wrappers repeat everything inside them.
		if item.Find("li,div").Length() > 0 {
			return
		}
		text := item.Text()
		price := heuristics.ParsePrice(text)
		if price == nil {
			return
		}
		name := longestPlausibleText(item)
		if name == "" {
			return
		}
		c.add(name, price, 1)
	})
	return c.products
}

// closestText returns the text of the element's parent, which usually holds
// the in-line price for name-bearing nodes.
func closestText(s *goquery.Selection) string {
	parent := s.Parent()
	if parent.Length() > 0 {
		return parent.Text()
	}
	return s.Text()
}

// firstPlausibleText walks an element's descendants in document order and
// returns the first text that passes the product-name filter.
func firstPlausibleText(container *goquery.Selection) string {
	var found string
	container.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		text := heuristics.CleanProductName(s.Text())
		if heuristics.IsLikelyProductName(text) {
			found = text
			return false
		}
		return true
	})
	if found == "" {
		text := heuristics.CleanProductName(container.Text())
		if heuristics.IsLikelyProductName(text) {
			found = text
		}
	}
	return found
}

// longestPlausibleText returns the longest leaf text in an item passing the
// product-name filter, falling back to the item's own cleaned text.
func longestPlausibleText(item *goquery.Selection) string {
	var best string
	item.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		text := heuristics.CleanProductName(s.Text())
		if heuristics.IsLikelyProductName(text) && len(text) > len(best) {
			best = text
		}
	})
	if best == "" {
		text := heuristics.CleanProductName(item.Text())
		if heuristics.IsLikelyProductName(text) {
			best = text
		}
	}
	return best
}
