package sanitizer

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/manocha-aman/subscribe-any/models"
)

// Languages the detector distinguishes. Order pages in other languages still
// flow through the pipeline, just without a language hint.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Swedish,
	lingua.Polish,
	lingua.Japanese,
}

var (
	languageDetectorOnce sync.Once
	languageDetector     lingua.LanguageDetector
)

func getLanguageDetector() lingua.LanguageDetector {
	languageDetectorOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			Build()
	})
	return languageDetector
}

// ExtractMeta recovers document metadata (title, site name, excerpt) from the
// raw HTML and guesses the page language from the sanitized text. Failures
// leave the corresponding fields empty; this is enrichment, not a gate.
func ExtractMeta(rawHTML, rawURL, text string) models.PageMeta {
	meta := models.PageMeta{}

	if parsedURL, err := url.Parse(rawURL); err == nil {
		parser := readability.NewParser()
		if article, err := parser.Parse(strings.NewReader(rawHTML), parsedURL); err == nil {
			meta.Title = article.Title
			meta.SiteName = article.SiteName
			meta.Excerpt = article.Excerpt
		}
	}

	meta.Language, meta.LanguageConfidence = DetectLanguage(text)
	return meta
}

// DetectLanguage returns the ISO-639-1 code and confidence of the most likely
// page language, or empty when the sample is too small to call.
func DetectLanguage(text string) (string, float64) {
	sample := strings.TrimSpace(text)
	if len(sample) < 40 {
		return "", 0
	}
	// A few hundred words is plenty for a reliable call.
	if len(sample) > 2000 {
		sample = sample[:2000]
	}

	detector := getLanguageDetector()
	lang, ok := detector.DetectLanguageOf(sample)
	if !ok {
		return "", 0
	}
	confidence := detector.ComputeLanguageConfidence(sample, lang)
	return strings.ToLower(lang.IsoCode639_1().String()), confidence
}
