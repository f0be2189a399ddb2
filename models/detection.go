package models

import "regexp"

// PageSignal is one entry of a declarative pattern table. Signals are compiled
// once at process start and never mutated.
type PageSignal struct {
	Pattern    *regexp.Regexp
	Trigger    string
	Confidence float64
}

// DetectionResult is the outcome of classifying a URL or a whole page.
// Confidence is max() over matched signals at the URL layer and a capped
// sum() at the page layer.
type DetectionResult struct {
	IsLikely   bool     `json:"is_likely" yaml:"is_likely"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Triggers   []string `json:"triggers" yaml:"triggers"`
}

// NegativeResult is the short-circuit outcome for excluded or unmatched URLs.
func NegativeResult() DetectionResult {
	return DetectionResult{Triggers: []string{}}
}
