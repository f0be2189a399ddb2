package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Detection is one logged pipeline run.
type Detection struct {
	ID                  int64
	URL                 string
	Domain              string
	IsOrderConfirmation bool
	Confidence          float64
	ProductCount        int
	Retailer            string
	OrderNumber         string
	Triggers            []string
	SkipReason          string
	DetectedAt          time.Time
}

// RecordDetection logs one pipeline run.
func (s *Store) RecordDetection(d Detection) (int64, error) {
	domain := d.Domain
	if domain == "" {
		if parsed, err := url.Parse(d.URL); err == nil {
			domain = parsed.Host
		}
	}

	triggersJSON, err := json.Marshal(d.Triggers)
	if err != nil {
		triggersJSON = []byte("[]")
	}

	result, err := s.Exec(`
		INSERT INTO detections (url, domain, is_order_confirmation, confidence,
		                        product_count, retailer, order_number, triggers, skip_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.URL, nullString(domain), d.IsOrderConfirmation, d.Confidence,
		d.ProductCount, nullString(d.Retailer), nullString(d.OrderNumber),
		string(triggersJSON), nullString(d.SkipReason))
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get detection ID: %w", err)
	}
	return id, nil
}

// RecentDetections returns the latest runs, newest first.
func (s *Store) RecentDetections(limit int) ([]Detection, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Query(`
		SELECT detection_id, url, COALESCE(domain, ''), is_order_confirmation,
		       confidence, product_count, COALESCE(retailer, ''),
		       COALESCE(order_number, ''), COALESCE(triggers, '[]'),
		       COALESCE(skip_reason, ''), detected_at
		FROM detections
		ORDER BY detected_at DESC, detection_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var detections []Detection
	for rows.Next() {
		var d Detection
		var triggersJSON string
		if err := rows.Scan(&d.ID, &d.URL, &d.Domain, &d.IsOrderConfirmation,
			&d.Confidence, &d.ProductCount, &d.Retailer, &d.OrderNumber,
			&triggersJSON, &d.SkipReason, &d.DetectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		_ = json.Unmarshal([]byte(triggersJSON), &d.Triggers)
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

// LastDetectionFor returns the most recent run for a URL, or nil.
func (s *Store) LastDetectionFor(pageURL string) (*Detection, error) {
	rows, err := s.Query(`
		SELECT detection_id, url, COALESCE(domain, ''), is_order_confirmation,
		       confidence, product_count, COALESCE(retailer, ''),
		       COALESCE(order_number, ''), COALESCE(triggers, '[]'),
		       COALESCE(skip_reason, ''), detected_at
		FROM detections
		WHERE url = ?
		ORDER BY detected_at DESC, detection_id DESC
		LIMIT 1
	`, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil && err != sql.ErrNoRows {
			return nil, err
		}
		return nil, nil
	}

	var d Detection
	var triggersJSON string
	if err := rows.Scan(&d.ID, &d.URL, &d.Domain, &d.IsOrderConfirmation,
		&d.Confidence, &d.ProductCount, &d.Retailer, &d.OrderNumber,
		&triggersJSON, &d.SkipReason, &d.DetectedAt); err != nil {
		return nil, fmt.Errorf("failed to scan detection: %w", err)
	}
	_ = json.Unmarshal([]byte(triggersJSON), &d.Triggers)
	return &d, nil
}
