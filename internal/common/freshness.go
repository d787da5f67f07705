// Package common provides shared utilities for Tally
package common

import "time"

// Freshness TTLs for cached provider data
const (
	FreshnessStatements = 7 * 24 * time.Hour // fundamentals change with filings
	FreshnessPrices     = 1 * time.Hour      // daily bars plus today's partial bar
	FreshnessReport     = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
