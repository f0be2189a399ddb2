package pipeline

import "context"

// StaticSource serves a single fetched snapshot. The settle wait stabilizes
// immediately since the content never changes, which makes it the right
// Source for CLI scans over already-fetched HTML.
type StaticSource struct {
	snap Snapshot
}

// NewStaticSource wraps one snapshot as a Source.
func NewStaticSource(snap Snapshot) *StaticSource {
	return &StaticSource{snap: snap}
}

func (s *StaticSource) Snapshot(context.Context) (Snapshot, error) {
	return s.snap, nil
}

func (s *StaticSource) CurrentURL() string {
	return s.snap.URL
}
