// Package scan implements the CLI actions: fetching pages, running the
// detection pipeline over them, and managing local subscriptions.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/manocha-aman/subscribe-any/internal/common"
	"github.com/manocha-aman/subscribe-any/models"
	"github.com/manocha-aman/subscribe-any/pkg/caching"
	"github.com/manocha-aman/subscribe-any/pkg/detector"
	"github.com/manocha-aman/subscribe-any/pkg/fetcher"
	"github.com/manocha-aman/subscribe-any/pkg/llm"
	"github.com/manocha-aman/subscribe-any/pkg/pipeline"
	"github.com/manocha-aman/subscribe-any/pkg/store"
)

// job is one URL to analyze; result pairs it with its pipeline outcome.
type job struct {
	URL string
}

type result struct {
	URL      string
	FilePath string
	Outcome  *pipeline.Outcome
	Error    error
}

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func loadConfig(c *cli.Context) (models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("urls") {
		cfg.URLs = strings.Split(c.String("urls"), ",")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("api-key") {
		cfg.LLM.APIKey = c.String("api-key")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("SUBSCRIBE_ANY_API_KEY")
	}
	if c.IsSet("show-order-details") {
		cfg.ShowOrderDetails = c.Bool("show-order-details")
	}
	return cfg, nil
}

func openStore(c *cli.Context) (*store.Store, error) {
	if dbPath := c.String("db"); dbPath != "" {
		return store.OpenAt(dbPath)
	}
	return store.Open()
}

// ScanAction fetches the given URLs and runs the full detection pipeline
// over each with a worker pool.
func ScanAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := loadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	if len(cfg.URLs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No URLs provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  subscribe-any scan --urls "https://shop.example/checkout/complete,https://shop.example/orders/1234"`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: subscribe-any scan --help")
		os.Exit(1)
	}

	sanitizedURLs, invalidURLs := common.SanitizeAndValidateURLs(cfg.URLs)
	if len(invalidURLs) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalidURLs))
		for _, badURL := range invalidURLs {
			fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
		}
		os.Exit(1)
	}
	cfg.URLs = sanitizedURLs

	database, err := openStore(c)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()
	logger.Info("database ready", "path", database.Path())

	cacheTTL := cfg.CacheTTLDuration()
	if c.Bool("force-fetch") {
		cacheTTL = 0
	}
	cache, err := caching.NewCache(cfg.CacheDir, cacheTTL)
	if err != nil {
		logger.Error("failed to initialize cache", "error", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(2)
	}

	client := llm.NewClient(cfg.LLM)
	if !client.Available() {
		logger.Warn("no API key configured, using heuristic extraction only")
	}

	results := runScan(c.Context, logger, cfg, client, database, cache)

	confirmed := 0
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			continue
		}
		if r.Outcome != nil && r.Outcome.Analysis != nil && r.Outcome.Analysis.IsOrderConfirmation {
			confirmed++
		}
	}

	fmt.Printf("Scanned %d URL(s): %d order confirmation(s), %d failure(s)\n",
		len(results), confirmed, failed)
	for _, r := range results {
		if r.FilePath != "" {
			fmt.Printf("  %s -> %s\n", r.URL, r.FilePath)
		}
	}
	return nil
}

func runScan(ctx context.Context, logger *slog.Logger, cfg models.Config, client *llm.Client, database *store.Store, cache *caching.Cache) []result {
	f := fetcher.NewFetcher()

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 4
	}

	var wg sync.WaitGroup
	jobs := make(chan job, len(cfg.URLs))
	resultsCh := make(chan result, len(cfg.URLs))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for jb := range jobs {
				resultsCh <- processURL(ctx, id, logger, cfg, client, database, cache, f, jb.URL)
			}
		}(w)
	}

	for _, rawURL := range cfg.URLs {
		jobs <- job{URL: rawURL}
	}
	close(jobs)

	wg.Wait()
	close(resultsCh)

	var results []result
	for r := range resultsCh {
		results = append(results, r)
	}
	return results
}

func processURL(ctx context.Context, workerID int, logger *slog.Logger, cfg models.Config, client *llm.Client, database *store.Store, cache *caching.Cache, f *fetcher.Fetcher, rawURL string) result {
	logger.Info("worker started job", "worker", workerID, "url", rawURL)
	res := result{URL: rawURL}

	html, finalURL := "", rawURL
	if entry, hit := cache.Get(rawURL); hit {
		html, finalURL = entry.HTML, entry.FinalURL
		logger.Info("cache hit", "worker", workerID, "url", rawURL)
	} else {
		var err error
		html, finalURL, err = f.FetchHTML(ctx, rawURL)
		if err != nil {
			logger.Error("fetch failed", "worker", workerID, "url", rawURL, "error", err)
			res.Error = err
			return res
		}
		if err := cache.Set(caching.Entry{URL: rawURL, FinalURL: finalURL, HTML: html, FetchedAt: time.Now()}); err != nil {
			logger.Warn("cache write failed", "url", rawURL, "error", err)
		}
	}

	// One pipeline per page context; a fetched snapshot never mutates, so
	// the settle wait is skipped entirely.
	p := pipeline.New(client, database, nil, logger, pipeline.Options{
		SettleMinDelay:   -1,
		SettleStability:  -1,
		ShowOrderDetails: cfg.ShowOrderDetails,
	})
	source := pipeline.NewStaticSource(pipeline.Snapshot{URL: finalURL, RawHTML: html})

	outcome, err := p.Run(ctx, source)
	if err != nil {
		logger.Error("pipeline failed", "worker", workerID, "url", rawURL, "error", err)
		res.Error = err
		return res
	}
	res.Outcome = outcome

	recordOutcome(logger, database, outcome)

	filePath, err := saveOutcome(cfg.OutputDir, rawURL, outcome)
	if err != nil {
		logger.Warn("failed to save outcome", "url", rawURL, "error", err)
	} else {
		res.FilePath = filePath
	}

	logger.Info("worker finished job", "worker", workerID, "url", rawURL,
		"skipped", outcome.Skipped, "confidence", outcome.Detection.Confidence)
	return res
}

func recordOutcome(logger *slog.Logger, database *store.Store, outcome *pipeline.Outcome) {
	d := store.Detection{
		URL:        outcome.URL,
		Confidence: outcome.Detection.Confidence,
		Triggers:   outcome.Detection.Triggers,
		SkipReason: outcome.SkipReason,
	}
	if outcome.Analysis != nil {
		d.IsOrderConfirmation = outcome.Analysis.IsOrderConfirmation
		d.Confidence = outcome.Analysis.Confidence
		d.ProductCount = len(outcome.Analysis.Products)
		d.Retailer = outcome.Analysis.Retailer
		d.OrderNumber = outcome.Analysis.OrderNumber
	}
	if _, err := database.RecordDetection(d); err != nil {
		logger.Warn("failed to record detection", "url", outcome.URL, "error", err)
	}
}

// saveOutcome writes one outcome as indented JSON under the output dir.
func saveOutcome(outputDir, rawURL string, outcome *pipeline.Outcome) (string, error) {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal outcome: %w", err)
	}
	filePath := filepath.Join(outputDir, savePathFor(rawURL))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save outcome: %w", err)
	}
	return filePath, nil
}

// savePathFor generates a filesystem-friendly filename from a URL.
func savePathFor(rawURL string) string {
	today := time.Now().Format("2006-01-02")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		safe := strings.NewReplacer("https://", "", "http://", "", "/", "_").Replace(rawURL)
		return fmt.Sprintf("%s-%s.json", safe, today)
	}

	host := strings.ReplaceAll(parsedURL.Host, ".", "_")
	path := strings.Trim(parsedURL.Path, "/")
	path = strings.ReplaceAll(path, "/", "-")
	path = strings.ReplaceAll(path, ".", "_")

	base := host
	if path != "" {
		base = fmt.Sprintf("%s-%s", host, path)
	}
	return fmt.Sprintf("%s-%s.json", base, today)
}

// ClassifyAction runs the URL-layer classifiers only; no fetching.
func ClassifyAction(c *cli.Context) error {
	if !c.IsSet("urls") {
		fmt.Fprintln(os.Stderr, "Error: No URLs provided")
		fmt.Fprintln(os.Stderr, `Usage: subscribe-any classify --urls "https://shop.example/checkout/complete"`)
		os.Exit(1)
	}

	urls := strings.Split(c.String("urls"), ",")
	sanitizedURLs, invalidURLs := common.SanitizeAndValidateURLs(urls)
	if len(invalidURLs) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed\n", len(invalidURLs))
		os.Exit(1)
	}

	type classification struct {
		URL          string                 `json:"url" yaml:"url"`
		Confirmation models.DetectionResult `json:"confirmation" yaml:"confirmation"`
		Details      models.DetectionResult `json:"details" yaml:"details"`
	}

	var out []map[string]interface{}
	for _, u := range sanitizedURLs {
		entry := classification{
			URL:          u,
			Confirmation: detector.ClassifyURL(u),
			Details:      detector.ClassifyOrderDetailsURL(u),
		}
		out = append(out, common.FilterResultFields(entry, c.String("fields")))
	}

	return printFormatted(out, c.String("format"))
}

// HistoryAction prints recent detection runs from the local store, or the
// most recent run for one URL when --url is given.
func HistoryAction(c *cli.Context) error {
	database, err := openStore(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if c.IsSet("url") {
		detection, err := database.LastDetectionFor(common.SanitizeURL(c.String("url")))
		if err != nil {
			return err
		}
		if detection == nil {
			fmt.Println("No detections recorded for that URL")
			return nil
		}
		return printFormatted(detection, c.String("format"))
	}

	detections, err := database.RecentDetections(c.Int("limit"))
	if err != nil {
		return err
	}
	return printFormatted(detections, c.String("format"))
}

func printFormatted(v interface{}, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		fmt.Print(string(data))
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}
