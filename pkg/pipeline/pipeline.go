// Package pipeline sequences one detection pass over a page snapshot:
// URL classification, optional settle wait for client-rendered content,
// sanitation, page classification, LLM extraction, and the DOM fallback.
// One Pipeline instance serves one page context; the debounce fields are
// instance state, never process-global.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/manocha-aman/subscribe-any/internal/common"
	"github.com/manocha-aman/subscribe-any/models"
	"github.com/manocha-aman/subscribe-any/pkg/detector"
	"github.com/manocha-aman/subscribe-any/pkg/domextract"
	"github.com/manocha-aman/subscribe-any/pkg/heuristics"
	"github.com/manocha-aman/subscribe-any/pkg/llm"
	"github.com/manocha-aman/subscribe-any/pkg/sanitizer"
)

// Snapshot is one observed state of a page.
type Snapshot struct {
	URL     string
	Title   string
	RawHTML string
}

// Source produces snapshots of the current page. A live host re-reads the
// document on every call; a static fetch returns the same snapshot each time.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	// CurrentURL reports where the page context is now, so a stale analysis
	// finishing after a navigation is discarded instead of presented.
	CurrentURL() string
}

// Presenter receives a finalized analysis for user interaction. Subscription
// creation happens behind it and is no concern of the pipeline.
type Presenter interface {
	Present(url, title string, analysis models.OrderAnalysis)
}

// SubscriptionLister exposes the current subscription list so products the
// user already subscribed to are filtered before presentation.
type SubscriptionLister interface {
	ListProductNames() ([]string, error)
}

// Options tune the per-page-context behavior. Zero values take defaults.
type Options struct {
	DebounceWindow  time.Duration // skip re-runs of the same URL inside this window
	SettleMinDelay  time.Duration // always wait at least this long before trusting content
	SettleStability time.Duration // content unchanged this long counts as settled
	SettleMaxWait   time.Duration // hard bound on the settle wait
	SettlePoll      time.Duration

	// ShowOrderDetails surfaces order-details/history pages in addition to
	// just-placed confirmations.
	ShowOrderDetails bool
}

func (o *Options) applyDefaults() {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 2000 * time.Millisecond
	}
	if o.SettleMinDelay == 0 {
		o.SettleMinDelay = time.Second
	}
	if o.SettleStability == 0 {
		o.SettleStability = 500 * time.Millisecond
	}
	if o.SettleMaxWait == 0 {
		o.SettleMaxWait = 8 * time.Second
	}
	if o.SettlePoll == 0 {
		o.SettlePoll = 250 * time.Millisecond
	}
}

// Outcome is the terminal state of one pipeline run. A skip is a normal
// outcome, not an error.
type Outcome struct {
	URL        string                 `json:"url" yaml:"url"`
	Skipped    bool                   `json:"skipped" yaml:"skipped"`
	SkipReason string                 `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	Detection  models.DetectionResult `json:"detection" yaml:"detection"`
	Details    models.DetectionResult `json:"details" yaml:"details"`
	Meta       models.PageMeta        `json:"meta" yaml:"meta"`
	Analysis   *models.OrderAnalysis  `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	// Strategy names the DOM fallback strategy that produced the products,
	// when the LLM path came back empty.
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// Pipeline drives detection for a single page context.
type Pipeline struct {
	llm       *llm.Client
	subs      SubscriptionLister
	presenter Presenter
	logger    *slog.Logger
	opts      Options

	lastProcessedURL string
	lastProcessedAt  time.Time
}

// New creates a pipeline. subs and presenter may be nil; logger nil means
// silent.
func New(client *llm.Client, subs SubscriptionLister, presenter Presenter, logger *slog.Logger, opts Options) *Pipeline {
	opts.applyDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		llm:       client,
		subs:      subs,
		presenter: presenter,
		logger:    logger,
		opts:      opts,
	}
}

// Run executes one detection pass. Unexpected extraction panics are caught
// here; the worst case for a page view is a silent skip, never a crash of
// the host.
func (p *Pipeline) Run(ctx context.Context, source Source) (outcome *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline aborted", "panic", r)
			outcome = &Outcome{Skipped: true, SkipReason: "internal error"}
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	snap, err := source.Snapshot(ctx)
	if err != nil {
		return &Outcome{Skipped: true, SkipReason: "snapshot failed"}, err
	}

	outcome = &Outcome{URL: snap.URL}

	if p.debounced(snap.URL) {
		outcome.Skipped = true
		outcome.SkipReason = "debounced"
		return outcome, nil
	}
	p.lastProcessedURL = snap.URL
	p.lastProcessedAt = time.Now()

	outcome.Details = detector.ClassifyOrderDetailsURL(snap.URL)
	if outcome.Details.IsLikely && !p.opts.ShowOrderDetails {
		outcome.Skipped = true
		outcome.SkipReason = "order-details page suppressed by setting"
		return outcome, nil
	}

	// Client-rendered order pages hydrate late; wait for quiescence when the
	// URL is plausibly order related.
	if detector.LooksOrderRelated(snap.URL) {
		snap = p.waitForSettle(ctx, source, snap)
	}

	content := sanitizer.ExtractPageContent(snap.RawHTML)
	meta := sanitizer.ExtractMeta(snap.RawHTML, snap.URL, content.Text)
	title := snap.Title
	if title == "" {
		title = meta.Title
	}
	outcome.Meta = meta

	page := detector.PageInput{URL: snap.URL, Title: title, BodyText: content.Text}
	outcome.Detection = detector.ClassifyPage(page)

	if !detector.ShouldInvokeLLM(page) {
		outcome.Skipped = true
		outcome.SkipReason = "no signal"
		return outcome, nil
	}

	analysis, llmErr := p.llm.AnalyzeContent(ctx, content, meta, outcome.Detection.Confidence)
	if llmErr != nil {
		p.logger.Warn("model call failed, heuristic fallback used", "url", snap.URL, "error", llmErr)
	}

	analysis, strategy := p.resolve(analysis, content, outcome.Detection)
	outcome.Strategy = strategy

	if !analysis.IsOrderConfirmation {
		outcome.Skipped = true
		outcome.SkipReason = "not an order confirmation"
		return outcome, nil
	}

	p.filterSubscribed(&analysis)
	outcome.Analysis = &analysis

	// A navigation may have happened during the model call; a stale result
	// must not be presented against the new page.
	if current := source.CurrentURL(); current != "" && current != snap.URL {
		outcome.Skipped = true
		outcome.SkipReason = "stale result after navigation"
		return outcome, nil
	}

	if p.presenter != nil {
		p.presenter.Present(snap.URL, title, analysis)
	}
	return outcome, nil
}

// debounced reports whether this URL was processed within the debounce
// window. Coarse, time-based reentrancy guard.
func (p *Pipeline) debounced(url string) bool {
	return url == p.lastProcessedURL && time.Since(p.lastProcessedAt) < p.opts.DebounceWindow
}

// resolve applies the trust policy between the LLM result and the heuristic
// layers. Preference order: LLM-confirmed with products; LLM-confirmed with
// the DOM cascade filling in products; heuristics when the model is silent
// but the independent signals are strong.
func (p *Pipeline) resolve(analysis models.OrderAnalysis, content models.PageContent, detection models.DetectionResult) (models.OrderAnalysis, string) {
	if analysis.IsOrderConfirmation && len(analysis.Products) > 0 {
		return analysis, ""
	}

	if analysis.IsOrderConfirmation {
		products, strategy := extractFromDocument(content.HTML)
		for _, product := range products {
			analysis.AddProduct(product)
		}
		return analysis, strategy
	}

	if !detection.IsLikely {
		return analysis, ""
	}
	fallback := heuristics.ExtractFromText(content.Text)
	if !fallback.IsOrderConfirmation {
		return analysis, ""
	}
	strategy := ""
	if len(fallback.Products) == 0 {
		var products []models.ExtractedProduct
		products, strategy = extractFromDocument(content.HTML)
		for _, product := range products {
			fallback.AddProduct(product)
		}
	}
	return fallback, strategy
}

// extractFromDocument runs the DOM cascade over the sanitized HTML.
func extractFromDocument(sanitizedHTML string) ([]models.ExtractedProduct, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizedHTML))
	if err != nil {
		return nil, ""
	}
	return domextract.Extract(doc)
}

// filterSubscribed drops products the user already has a subscription for.
func (p *Pipeline) filterSubscribed(analysis *models.OrderAnalysis) {
	if p.subs == nil || len(analysis.Products) == 0 {
		return
	}
	names, err := p.subs.ListProductNames()
	if err != nil {
		p.logger.Warn("subscription lookup failed", "error", err)
		return
	}
	subscribed := make(map[string]struct{}, len(names))
	for _, name := range names {
		subscribed[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	kept := analysis.Products[:0]
	for _, product := range analysis.Products {
		if _, ok := subscribed[strings.ToLower(product.Name)]; !ok {
			kept = append(kept, product)
		}
	}
	analysis.Products = kept
}

// waitForSettle waits a minimum delay, then watches for content quiescence
// (hash unchanged for the stability window), bounded by the max wait. It
// returns the freshest snapshot it observed.
func (p *Pipeline) waitForSettle(ctx context.Context, source Source, latest Snapshot) Snapshot {
	if !sleepCtx(ctx, p.opts.SettleMinDelay) {
		return latest
	}

	deadline := time.Now().Add(p.opts.SettleMaxWait)
	lastHash := common.ContentHash([]byte(latest.RawHTML))
	stableSince := time.Now()

	for time.Now().Before(deadline) {
		snap, err := source.Snapshot(ctx)
		if err != nil {
			return latest
		}
		hash := common.ContentHash([]byte(snap.RawHTML))
		if hash == lastHash {
			if time.Since(stableSince) >= p.opts.SettleStability {
				return snap
			}
		} else {
			latest = snap
			lastHash = hash
			stableSince = time.Now()
		}
		if !sleepCtx(ctx, p.opts.SettlePoll) {
			return latest
		}
	}
	return latest
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
