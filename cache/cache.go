// Package cache holds each player's last known coordinate under a TTL, so
// stale or disconnected players silently stop being nearby to anyone.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Coordinate is the cached GPS fix. Field names match the wire payload.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationCache is a key-value store with per-key expiry. No durability is
// guaranteed or needed.
type LocationCache interface {
	SetLocation(ctx context.Context, playerID uint, coord Coordinate, ttl time.Duration) error
	// GetLocation returns the cached coordinate and whether one exists.
	// A missing or expired entry is (zero, false, nil), not an error.
	GetLocation(ctx context.Context, playerID uint) (Coordinate, bool, error)
}

func locationKey(playerID uint) string {
	return fmt.Sprintf("player:%d:loc", playerID)
}
