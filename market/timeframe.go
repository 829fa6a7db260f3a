package market

import (
	"fmt"
	"time"
)

// Timeframes used by the engine, shortest first. The short and mid
// timeframes gate entries and exits; the long one is advisory only.
const (
	TimeframeShort = "1m"
	TimeframeMid   = "5m"
	TimeframeLong  = "15m"
)

// Timeframes returns the configured timeframes in polling order.
func Timeframes() []string {
	return []string{TimeframeShort, TimeframeMid, TimeframeLong}
}

// ParseTimeframe converts a timeframe label to its duration.
func ParseTimeframe(tf string) (time.Duration, error) {
	switch tf {
	case "1m":
		return time.Minute, nil
	case "3m":
		return 3 * time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "30m":
		return 30 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe %q", tf)
	}
}

// ValidTimeframe reports whether tf is a supported timeframe label.
func ValidTimeframe(tf string) bool {
	_, err := ParseTimeframe(tf)
	return err == nil
}
