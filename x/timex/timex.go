// Package timex holds the millisecond conventions used on the bus.
package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Ms converts a millisecond count from config into a Duration. Non-positive
// values map to zero.
func Ms[T ~int | ~int32 | ~int64 | ~uint16 | ~uint32](ms T) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
