package cache

import (
	"context"
	"fmt"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ForecastKey identifies a next-hour forecast by the series tail it was
// computed from and the target hour. Any append moves the tail and so
// produces a new key.
func ForecastKey(tail, target time.Time) string {
	return fmt.Sprintf("forecast:%d:%s", tail.Unix(), target.Format("2006010215"))
}
