package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Subscription is one recurring-reminder entry.
type Subscription struct {
	ID             int64
	ProductName    string
	Retailer       string
	Price          *float64
	FrequencyDays  int
	Active         bool
	CreatedAt      time.Time
	LastRemindedAt *time.Time
}

// AddSubscription inserts a subscription, reactivating and updating an
// existing row for the same product name.
func (s *Store) AddSubscription(productName, retailer string, price *float64, frequencyDays int) (int64, error) {
	if frequencyDays <= 0 {
		frequencyDays = 30
	}
	result, err := s.Exec(`
		INSERT INTO subscriptions (product_name, retailer, price, frequency_days, active)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(product_name) DO UPDATE SET
			retailer = excluded.retailer,
			price = excluded.price,
			frequency_days = excluded.frequency_days,
			active = 1
	`, productName, nullString(retailer), price, frequencyDays)
	if err != nil {
		return 0, fmt.Errorf("failed to insert subscription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get subscription ID: %w", err)
	}
	return id, nil
}

// ListSubscriptions returns all active subscriptions, newest first.
func (s *Store) ListSubscriptions() ([]Subscription, error) {
	rows, err := s.Query(`
		SELECT subscription_id, product_name, COALESCE(retailer, ''), price,
		       frequency_days, active, created_at, last_reminded_at
		FROM subscriptions
		WHERE active = 1
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var price sql.NullFloat64
		var reminded sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.ProductName, &sub.Retailer, &price,
			&sub.FrequencyDays, &sub.Active, &sub.CreatedAt, &reminded); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		if price.Valid {
			sub.Price = &price.Float64
		}
		if reminded.Valid {
			sub.LastRemindedAt = &reminded.Time
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListProductNames returns the active subscription product names. This is
// the read-only lookup the pipeline uses to filter already-subscribed
// products before presenting results.
func (s *Store) ListProductNames() ([]string, error) {
	rows, err := s.Query(`SELECT product_name FROM subscriptions WHERE active = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan subscription name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeactivateSubscription soft-deletes a subscription by product name.
func (s *Store) DeactivateSubscription(productName string) error {
	result, err := s.Exec(`UPDATE subscriptions SET active = 0 WHERE product_name = ?`, productName)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no subscription named %q", productName)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
