package models

const (
	// MaxContentHTMLLen and MaxContentTextLen cap the two projections of a
	// sanitized page snapshot before they are handed to the classifiers and
	// the LLM prompt builder.
	MaxContentHTMLLen = 60000
	MaxContentTextLen = 30000

	// TruncationMarker is appended whenever a projection was cut.
	TruncationMarker = "...[truncated]"
)

// PageContent holds the sanitized projections of one page snapshot.
// Derived once per snapshot and immutable afterward.
type PageContent struct {
	HTML string `json:"html" yaml:"html"`
	Text string `json:"text" yaml:"text"`
}

// PageMeta carries cheap enrichment recovered from the raw HTML alongside the
// sanitized content: document metadata and a language guess.
type PageMeta struct {
	Title              string  `json:"title,omitempty" yaml:"title,omitempty"`
	SiteName           string  `json:"site_name,omitempty" yaml:"site_name,omitempty"`
	Excerpt            string  `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Language           string  `json:"language,omitempty" yaml:"language,omitempty"`
	LanguageConfidence float64 `json:"language_confidence,omitempty" yaml:"language_confidence,omitempty"`
}
